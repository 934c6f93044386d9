// Package logging builds the slog logger used by all commands.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/clickup"
)

// Formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configure New.
type Options struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// Format is FormatText or FormatJSON. Empty means text.
	Format string
	// File, when set, receives log output instead of stderr. It is rotated
	// once it grows past MaxSizeMB.
	File string

	MaxSizeMB  int
	MaxBackups int
}

// New returns a logger for opts and a function releasing its output.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create log directory", goerr.V("file", opts.File))
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		w = rotator
		closeFn = rotator.Close
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		handler = slog.NewTextHandler(w, handlerOpts)
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, nil, goerr.New("unknown log format", goerr.V("format", opts.Format))
	}

	return slog.New(handler), closeFn, nil
}

// ParseLevel maps a level name to its slog level. Matching is
// case-insensitive; an empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, goerr.New("unknown log level", goerr.V("level", name))
}

// ErrorAttrs returns err as log attributes, including the values attached
// with goerr and the truncated payload of a response that failed to decode.
func ErrorAttrs(err error) []any {
	attrs := []any{"error", err.Error()}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values())
	}
	var de *clickup.DecodeError
	if errors.As(err, &de) {
		attrs = append(attrs, "path", de.Path, "payload", de.Payload)
	}
	return attrs
}
