// Package mirror keeps an on-disk outline rendering of the board in sync
// both ways: the server rewrites the file after every committed mutation,
// and an fsnotify watcher re-imports the file when something else edits it.
// A checksum of the last server write keeps the two directions from feeding
// each other.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/youhengzhou/bibo-notes/internal/checksum"
)

// debounce coalesces editor write bursts (most editors write, truncate,
// and rename in quick succession).
const debounce = 200 * time.Millisecond

// Mirror manages one outline file.
type Mirror struct {
	path string

	mu      sync.Mutex
	lastSum string
}

// New creates a mirror for the given file path, creating its directory if
// needed.
func New(path string) (*Mirror, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("mirror: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("mirror: create dir: %w", err)
	}
	return &Mirror{path: abs}, nil
}

// Path returns the absolute path of the mirror file.
func (m *Mirror) Path() string {
	return m.path
}

// Write atomically replaces the mirror file: tmp file, fsync, rename. The
// content checksum is recorded so the watcher can tell the server's own
// writes from external edits.
func (m *Mirror) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	tmp, err := os.CreateTemp(dir, ".bibo-mirror-*")
	if err != nil {
		return fmt.Errorf("mirror: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return fmt.Errorf("mirror: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("mirror: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("mirror: close temp: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return fmt.Errorf("mirror: rename: %w", err)
	}
	success = true
	m.lastSum = checksum.Sum([]byte(text))
	return nil
}

// Read returns the current mirror file content, or "" when the file does
// not exist yet.
func (m *Mirror) Read() (string, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("mirror: read: %w", err)
	}
	return string(data), nil
}

// external reports whether data differs from the server's last write.
func (m *Mirror) external(data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := checksum.Sum(data)
	if sum == m.lastSum {
		return false
	}
	m.lastSum = sum
	return true
}

// Watch runs an fsnotify loop until ctx is cancelled, calling onChange with
// the file's content after each debounced external edit. The directory is
// watched rather than the file itself, since atomic editor saves replace
// the inode.
func (m *Mirror) Watch(ctx context.Context, logger *slog.Logger, onChange func(text string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("mirror: watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("mirror: watch dir: %w", err)
	}

	logger.Info("mirror: watching", slog.String("path", m.path))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("mirror: stopped")
			return nil

		case <-fire:
			data, err := os.ReadFile(m.path)
			if err != nil {
				logger.Warn("mirror: read failed", slog.String("error", err.Error()))
				continue
			}
			if !m.external(data) {
				continue
			}
			logger.Info("mirror: external edit, re-importing", slog.String("path", m.path))
			onChange(string(data))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != m.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("mirror: watch error", slog.String("error", werr.Error()))
		}
	}
}
