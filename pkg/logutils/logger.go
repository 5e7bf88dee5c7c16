// Package logutils builds the process-wide zerolog logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON to file, appending to it across runs.
// If file is empty, logs are written to stderr; "-" selects a human readable
// console writer on stderr instead.
//
// The level parameter can be one of: debug, info, warn, error, fatal.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("parse log level: %w", err)
	}

	var writer io.Writer
	switch file {
	case "":
		writer = os.Stderr
	case "-":
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	default:
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("open log file: %w", err)
		}
		closer = func() { _ = f.Close() }
		writer = f
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}
