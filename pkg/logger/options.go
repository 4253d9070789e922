package logger

import (
	"io"
	"log/slog"
)

// Option configures a logger created with New.
type Option func(*config)

// WithDebug lowers the level to Debug when debug is true.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithPretty selects the colorized charmbracelet/log handler. WithJSON wins
// when both are set.
func WithPretty(pretty bool) Option {
	return func(c *config) {
		if pretty && c.format != formatJSON {
			c.format = formatPretty
		} else if !pretty && c.format == formatPretty {
			c.format = formatText
		}
	}
}

// WithJSON selects slog's JSON handler.
func WithJSON(json bool) Option {
	return func(c *config) {
		if json {
			c.format = formatJSON
		} else if c.format == formatJSON {
			c.format = formatText
		}
	}
}

// WithPrefix labels pretty output, e.g. with the command name.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// WithWriter sets the output. A nil writer keeps the default.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.writer = w
		}
	}
}
