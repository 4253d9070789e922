// Package logger builds the *slog.Logger handed to every ragnotes component.
//
// Three handlers are available: slog's text handler (the default), slog's
// JSON handler for service logs and log files, and the charmbracelet/log
// handler for colorized terminal output.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Attribute keys shared across packages so log lines can be correlated.
const (
	KeyNoteID = "note_id"
	KeyError  = "error"
	KeyPath   = "path"
)

type config struct {
	level  slog.Level
	format format
	prefix string
	writer io.Writer
}

type format int

const (
	formatText format = iota
	formatJSON
	formatPretty
)

// New creates a *slog.Logger. Without options it writes Info and above as
// text to stderr.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:  slog.LevelInfo,
		writer: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return slog.New(c.handler())
}

func (c *config) handler() slog.Handler {
	hopts := &slog.HandlerOptions{Level: c.level}

	switch c.format {
	case formatJSON:
		return slog.NewJSONHandler(c.writer, hopts)

	case formatPretty:
		level := charmlog.InfoLevel
		if c.level <= slog.LevelDebug {
			level = charmlog.DebugLevel
		}
		return charmlog.NewWithOptions(c.writer, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          c.prefix,
			Level:           level,
		})

	default:
		return slog.NewTextHandler(c.writer, hopts)
	}
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

// Err logs err under KeyError.
func Err(err error) slog.Attr {
	return slog.Any(KeyError, err)
}

// NoteID logs a note id under KeyNoteID.
func NoteID(id int64) slog.Attr {
	return slog.Int64(KeyNoteID, id)
}

// Path logs a file path under KeyPath.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}
