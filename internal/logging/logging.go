package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls where records go and how the file rolls over.
type Config struct {
	Level         string // debug, info, warn or error
	FilePath      string
	MaxSizeMB     int
	MaxFiles      int
	WriteToStderr bool
}

// DefaultConfig logs info and above to <dir>/.efl/logs/efl.log, keeping
// three 5 MB files.
func DefaultConfig(dir string) Config {
	return Config{
		Level:     "info",
		FilePath:  LogPath(dir),
		MaxSizeMB: 5,
		MaxFiles:  3,
	}
}

// Debug returns c at debug level, mirrored to stderr.
func (c Config) Debug() Config {
	c.Level = "debug"
	c.WriteToStderr = true
	return c
}

// Setup opens the log file and returns a JSON logger writing to it. The
// returned func flushes and closes the file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	file, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var sink io.Writer = file
	if cfg.WriteToStderr {
		sink = io.MultiWriter(file, os.Stderr)
	}
	level, _ := ParseLevel(cfg.Level)
	logger := slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level}))

	return logger, func() {
		_ = file.Sync()
		_ = file.Close()
	}, nil
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel maps a level name, case-insensitively, to a slog level.
// Unknown names yield info and false.
func ParseLevel(name string) (slog.Level, bool) {
	l, ok := levels[strings.ToLower(name)]
	if !ok {
		return slog.LevelInfo, false
	}
	return l, true
}

// ValidLevel reports whether ParseLevel knows name.
func ValidLevel(name string) bool {
	_, ok := ParseLevel(name)
	return ok
}
