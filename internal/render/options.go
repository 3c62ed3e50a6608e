// Package render turns bot replies into styled terminal output.
package render

import "github.com/diogo/concierge/internal/config"

// Options configures the markdown renderer.
type Options struct {
	// Width is the word wrap column; values below 1 fall back to 80
	Width int

	// Style is a glamour standard style ("dark", "light", "dracula",
	// "tokyo-night", "notty", "ascii") or a path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// FromConfig builds Options from the markdown section of the user config.
func FromConfig(cfg config.MarkdownConfig) Options {
	opts := DefaultOptions()
	if cfg.Style != "" {
		opts.Style = cfg.Style
	}
	opts.EnableEmoji = cfg.EnableEmoji
	opts.PreserveNewLines = cfg.PreserveNewLines
	return opts
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

func (o Options) normalized() Options {
	if o.Width < 1 {
		o.Width = 80
	}
	if o.Style == "" {
		o.Style = "dark"
	}
	return o
}
