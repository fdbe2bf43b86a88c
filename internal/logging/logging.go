package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/decred/slog"
)

// Manager hands out per-subsystem loggers backed by a single slog backend,
// so every subsystem shares one writer and one level policy.
type Manager struct {
	mu      sync.Mutex
	backend *slog.Backend
	loggers map[string]slog.Logger
	level   slog.Level
}

// NewManager creates a logging manager writing to w. If w is nil, os.Stderr
// is used.
func NewManager(w io.Writer) *Manager {
	if w == nil {
		w = os.Stderr
	}
	return &Manager{
		backend: slog.NewBackend(w),
		loggers: make(map[string]slog.Logger),
		level:   slog.LevelInfo,
	}
}

// Logger returns the logger for the given subsystem tag, creating it at the
// manager's current level if it does not exist yet.
func (m *Manager) Logger(tag string) slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[tag]; ok {
		return l
	}
	l := m.backend.Logger(tag)
	l.SetLevel(m.level)
	m.loggers[tag] = l
	return l
}

// SetLevel parses a level string ("trace", "debug", "info", "warn", "error",
// "critical") and applies it to all existing and future loggers.
func (m *Manager) SetLevel(level string) error {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = lvl
	for _, l := range m.loggers {
		l.SetLevel(lvl)
	}
	return nil
}
