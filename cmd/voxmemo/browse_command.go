package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"voxmemo/internal/browse"
	"voxmemo/internal/playback"
	"voxmemo/internal/services"
)

const browseHelp = `Commands:
  play <n>          play or pause row n
  stop              pause playback
  mv <n> <caption>  rename row n
  rm <n>            remove row n from the catalog
  share <n>         export row n
  refresh           reload the list
  quit              leave`

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse recordings interactively",
		Long:  "Show the catalog and playback state, redrawn as either changes, and act on rows with short commands read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				out := cmd.OutOrStdout()
				view := &browseView{out: out, colorize: shouldColorize(out)}
				browser := a.newBrowser(view.render)

				events, cancelEvents := a.catalog.Subscribe()
				defer cancelEvents()
				go a.coordinator.WatchCatalog(runCtx, events)

				browser.Refresh(runCtx)
				view.println(browseHelp)

				done := make(chan error, 1)
				go func() { done <- browser.Run(runCtx) }()

				err := runBrowseLoop(runCtx, cmd.InOrStdin(), view, browser, a.coordinator)
				stop()
				<-done
				return err
			})
		},
	}
}

// browseView serializes output from the refresh loop and the command loop.
type browseView struct {
	out      io.Writer
	colorize bool

	mu   sync.Mutex
	last string
}

func (v *browseView) render(s browse.Snapshot) {
	key := snapshotKey(s)
	v.mu.Lock()
	defer v.mu.Unlock()
	if key == v.last {
		return
	}
	v.last = key

	fmt.Fprintln(v.out)
	if len(s.Entries) == 0 {
		fmt.Fprintln(v.out, "No recordings")
	} else {
		fmt.Fprintln(v.out, renderTable(entryColumns, entryRows(s.Entries)))
	}
	fmt.Fprintln(v.out, renderStatusLine("Playback", playbackKind(s.Playback), playbackDetail(s.Playback), v.colorize))
	if s.Err != nil {
		fmt.Fprintln(v.out, renderStatusLine("Catalog", statusError, services.UserMessage(s.Err), v.colorize))
	}
}

func (v *browseView) println(a ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, a...)
}

// snapshotKey ignores playback position so ticks alone do not redraw.
func snapshotKey(s browse.Snapshot) string {
	var b strings.Builder
	for _, e := range s.Entries {
		fmt.Fprintf(&b, "%s\x1f%s\x1e", e.ID, e.Caption)
	}
	fmt.Fprintf(&b, "|%s|%s", s.Playback.State, s.Playback.ActiveID())
	if s.Err != nil {
		b.WriteString("|" + s.Err.Error())
	}
	return b.String()
}

func playbackKind(st playback.Status) statusKind {
	switch st.State {
	case playback.StatePlaying:
		return statusOK
	case playback.StatePaused:
		return statusWarn
	default:
		return statusInfo
	}
}

func playbackDetail(st playback.Status) string {
	if !st.Loaded() {
		return "Idle"
	}
	return fmt.Sprintf("%s %q (%s / %s)", st.State, st.ActiveEntry.Caption,
		formatClock(st.PositionMillis), formatClock(st.DurationMillis))
}

func runBrowseLoop(ctx context.Context, in io.Reader, view *browseView, browser *browse.Browser, coordinator *playback.Coordinator) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := runBrowseCommand(ctx, line, view, browser, coordinator)
			if err != nil {
				view.println("error:", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func runBrowseCommand(ctx context.Context, line string, view *browseView, browser *browse.Browser, coordinator *playback.Coordinator) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	verb, rest := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "q", "quit", "exit":
		return true, nil
	case "h", "help", "?":
		view.println(browseHelp)
		return false, nil
	case "r", "refresh":
		browser.Refresh(ctx)
		return false, nil
	case "s", "stop":
		return false, coordinator.Stop(ctx)
	}

	if len(rest) == 0 {
		return false, fmt.Errorf("%s needs a row number", verb)
	}
	entry, err := matchEntry(browser.Snapshot().Entries, rest[0])
	if err != nil {
		return false, err
	}

	switch verb {
	case "p", "play":
		return false, browser.Play(ctx, entry.ID)
	case "mv", "rename":
		if len(rest) < 2 {
			return false, fmt.Errorf("%s needs a caption", verb)
		}
		if err := browser.Rename(ctx, entry.ID, strings.Join(rest[1:], " ")); err != nil {
			return false, err
		}
		view.println("Renamed", shortID(entry.ID))
		return false, nil
	case "rm", "delete":
		if err := browser.Delete(ctx, entry.ID); err != nil {
			return false, err
		}
		view.println("Removed", shortID(entry.ID))
		return false, nil
	case "share":
		dest, err := browser.Share(ctx, entry.ID)
		if err != nil {
			return false, err
		}
		view.println("Exported to", dest)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", verb)
	}
}
