package config

const (
	defaultDataDir              = "~/.local/share/voxmemo"
	defaultRecordingsDir        = "~/.local/share/voxmemo/recordings"
	defaultExportDir            = "~/voxmemo-exports"
	defaultLogDir               = "~/.local/share/voxmemo/logs"
	defaultCatalogBackend       = "file"
	defaultCatalogKey           = "recordings"
	defaultCaption              = "My Recording"
	defaultCaptureBinary        = "ffmpeg"
	defaultCaptureInputFormat   = "pulse"
	defaultCaptureInputDevice   = "default"
	defaultCaptureFormat        = "m4a"
	defaultCaptureSampleRate    = 44100
	defaultCaptureChannels      = 1
	defaultCaptureMinFreeMB     = 64
	defaultPlayerBinary         = "ffplay"
	defaultProbeBinary          = "ffprobe"
	defaultStatusIntervalMS     = 250
	defaultProbeCacheSize       = 128
	defaultPollIntervalMS       = 1000
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogMaxSizeMB         = 10
	defaultLogMaxBackups        = 3
	defaultLogRetentionDays     = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			RecordingsDir: defaultRecordingsDir,
			ExportDir:     defaultExportDir,
			LogDir:        defaultLogDir,
		},
		Catalog: Catalog{
			Backend:        defaultCatalogBackend,
			Key:            defaultCatalogKey,
			DefaultCaption: defaultCaption,
		},
		Capture: Capture{
			Binary:      defaultCaptureBinary,
			InputFormat: defaultCaptureInputFormat,
			InputDevice: defaultCaptureInputDevice,
			Format:      defaultCaptureFormat,
			SampleRate:  defaultCaptureSampleRate,
			Channels:    defaultCaptureChannels,
			MinFreeMB:   defaultCaptureMinFreeMB,
		},
		Playback: Playback{
			PlayerBinary:     defaultPlayerBinary,
			ProbeBinary:      defaultProbeBinary,
			StatusIntervalMS: defaultStatusIntervalMS,
			ProbeCacheSize:   defaultProbeCacheSize,
		},
		Browse: Browse{
			PollIntervalMS: defaultPollIntervalMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			RecordingSaved: true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
