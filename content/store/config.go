package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultWriteBufferSize is the write buffer handed to disk engines.
	DefaultWriteBufferSize = 64 * 1024

	// LowEndWriteBufferSize replaces DefaultWriteBufferSize on
	// memory-constrained hosts.
	LowEndWriteBufferSize = 32 * 1024
)

// Config carries the backend-independent tuning knobs for disk engines.
// A zero Config is valid; engines substitute defaults for zero fields.
type Config struct {
	// Path is the on-disk location of the database (a file for bolt, a
	// directory for badger and pebble).
	Path string

	// WriteBufferSize caps the engine's in-memory write buffer, in bytes.
	// Zero selects DefaultWriteBufferSize.
	WriteBufferSize uint64

	// NoSync disables fsync on commit. Faster, but a crash may lose the
	// most recent writes.
	NoSync bool
}

// writeBufferSize returns the configured write buffer, or the default.
func (c Config) writeBufferSize() uint64 {
	if c.WriteBufferSize == 0 {
		return DefaultWriteBufferSize
	}

	return c.WriteBufferSize
}

// ResolveDiskPath normalizes a user-provided database path.
// Empty strings resolve to fallback; existing directories are rejected when
// the engine expects a plain file.
func ResolveDiskPath(dbPath, fallback string) (string, error) {
	trimmedPath := strings.TrimSpace(dbPath)
	if trimmedPath == "" {
		defaultPath, err := filepath.Abs(fallback)
		if err != nil {
			return "", fmt.Errorf("%w: default path %q: %w", ErrDiskPathResolveFailed, fallback, err)
		}

		return defaultPath, nil
	}

	cleanedPath := filepath.Clean(trimmedPath)

	absPath, err := filepath.Abs(cleanedPath)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %w", ErrDiskPathResolveFailed, cleanedPath, err)
	}

	info, err := os.Stat(absPath)
	switch {
	case err == nil:
		if info.IsDir() {
			return absPath, fmt.Errorf("%w: %q", ErrDiskPathIsDirectory, absPath)
		}

		return absPath, nil
	case errors.Is(err, os.ErrNotExist):
		return absPath, nil
	default:
		return absPath, fmt.Errorf("%w: %q: %w", ErrDiskPathResolveFailed, absPath, err)
	}
}
