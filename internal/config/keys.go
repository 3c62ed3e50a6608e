package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type setter func(cfg *Config, value string) error

func stringSetter(field func(*Config) *string) setter {
	return func(cfg *Config, value string) error {
		*field(cfg) = value
		return nil
	}
}

func intSetter(field func(*Config) *int) setter {
	return func(cfg *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", value)
		}
		*field(cfg) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) setter {
	return func(cfg *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", value)
		}
		*field(cfg) = b
		return nil
	}
}

var setters = map[string]setter{
	"endpoint":                   stringSetter(func(c *Config) *string { return &c.Endpoint }),
	"typing_delay_ms":            intSetter(func(c *Config) *int { return &c.TypingDelayMS }),
	"request_timeout_seconds":    intSetter(func(c *Config) *int { return &c.RequestTimeoutSeconds }),
	"greeting":                   stringSetter(func(c *Config) *string { return &c.Greeting }),
	"verbose":                    boolSetter(func(c *Config) *bool { return &c.Verbose }),
	"copy_to_clipboard":          boolSetter(func(c *Config) *bool { return &c.CopyToClipboard }),
	"tui_theme":                  stringSetter(func(c *Config) *string { return &c.TUITheme }),
	"log_file":                   stringSetter(func(c *Config) *string { return &c.LogFile }),
	"markdown.style":             stringSetter(func(c *Config) *string { return &c.Markdown.Style }),
	"markdown.enable_emoji":      boolSetter(func(c *Config) *bool { return &c.Markdown.EnableEmoji }),
	"markdown.preserve_newlines": boolSetter(func(c *Config) *bool { return &c.Markdown.PreserveNewLines }),
	"gateway.addr":               stringSetter(func(c *Config) *string { return &c.Gateway.Addr }),
	"gateway.integration":        stringSetter(func(c *Config) *string { return &c.Gateway.Integration }),
	"gateway.bot":                stringSetter(func(c *Config) *string { return &c.Gateway.Bot }),
	"gateway.lex_bot_name":       stringSetter(func(c *Config) *string { return &c.Gateway.LexBotName }),
	"gateway.lex_bot_alias":      stringSetter(func(c *Config) *string { return &c.Gateway.LexBotAlias }),
	"gateway.lex_region":         stringSetter(func(c *Config) *string { return &c.Gateway.LexRegion }),
}

// Keys returns the settable configuration keys in sorted order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns value to the configuration key and validates the result.
// cfg is left unchanged when an error is returned.
func Set(cfg *Config, key, value string) error {
	set, ok := setters[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(Keys(), ", "))
	}

	next := *cfg
	if err := set(&next, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*cfg = next
	return nil
}
