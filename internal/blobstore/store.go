package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voxmemo/internal/config"
)

// Store is the external key-value blob persistence consumed by the catalog.
type Store interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// ErrInvalidKey is returned for empty keys or keys that cannot be mapped to storage.
var ErrInvalidKey = errors.New("invalid blob key")

// Open builds the blob store selected by cfg.Catalog.Backend.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, errors.New("blobstore: config is nil")
	}
	switch cfg.Catalog.Backend {
	case "sqlite":
		return OpenSQLite(cfg.CatalogDBPath())
	case "file", "":
		return NewFileStore(cfg.Paths.DataDir)
	default:
		return nil, fmt.Errorf("blobstore: unsupported backend %q", cfg.Catalog.Backend)
	}
}

func validateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
