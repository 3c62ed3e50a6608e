// Package config handles configuration for the concierge chat client and gateway.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/diogo/concierge/internal/models"
)

// Gateway integration modes
const (
	IntegrationLambda = "lambda"
	IntegrationProxy  = "proxy"
)

// Gateway bot backends
const (
	BotEcho = "echo"
	BotLex  = "lex"
)

// MarkdownConfig configures markdown rendering of bot replies
type MarkdownConfig struct {
	Style            string `json:"style" env:"CONCIERGE_MARKDOWN_STYLE"`
	EnableEmoji      bool   `json:"enable_emoji" env:"CONCIERGE_MARKDOWN_EMOJI"`
	PreserveNewLines bool   `json:"preserve_newlines" env:"CONCIERGE_MARKDOWN_PRESERVE_NEWLINES"`
}

// GatewayConfig configures the gateway served by `concierge serve` and the Lambda binary
type GatewayConfig struct {
	Addr        string `json:"addr" env:"CONCIERGE_GATEWAY_ADDR"`
	Integration string `json:"integration" env:"CONCIERGE_GATEWAY_INTEGRATION"` // "lambda" or "proxy"
	Bot         string `json:"bot" env:"CONCIERGE_GATEWAY_BOT"`                 // "echo" or "lex"
	LexBotName  string `json:"lex_bot_name" env:"CONCIERGE_LEX_BOT_NAME"`
	LexBotAlias string `json:"lex_bot_alias" env:"CONCIERGE_LEX_BOT_ALIAS"`
	LexRegion   string `json:"lex_region,omitempty" env:"CONCIERGE_LEX_REGION"`
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the chatbot URL messages are POSTed to.
	Endpoint string `json:"endpoint" env:"CONCIERGE_ENDPOINT"`
	// TypingDelayMS is how long the typing placeholder shows before a reply appears.
	TypingDelayMS int `json:"typing_delay_ms" env:"CONCIERGE_TYPING_DELAY_MS"`
	// RequestTimeoutSeconds caps a single request at the transport level.
	RequestTimeoutSeconds int `json:"request_timeout_seconds" env:"CONCIERGE_REQUEST_TIMEOUT_SECONDS"`
	// Greeting is shown as the first bot message. Empty disables it.
	Greeting        string         `json:"greeting" env:"CONCIERGE_GREETING"`
	Verbose         bool           `json:"verbose" env:"CONCIERGE_VERBOSE"`
	CopyToClipboard bool           `json:"copy_to_clipboard" env:"CONCIERGE_COPY_TO_CLIPBOARD"`
	TUITheme        string         `json:"tui_theme,omitempty" env:"CONCIERGE_TUI_THEME"`
	LogFile         string         `json:"log_file,omitempty" env:"CONCIERGE_LOG_FILE"`
	Markdown        MarkdownConfig `json:"markdown"`
	Gateway         GatewayConfig  `json:"gateway"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:              models.DefaultEndpoint,
		TypingDelayMS:         int(models.DefaultTypingDelay / time.Millisecond),
		RequestTimeoutSeconds: 300,
		Greeting:              models.DefaultGreeting,
		TUITheme:              "tokyonight",
		Markdown: MarkdownConfig{
			Style:            "dark",
			EnableEmoji:      true,
			PreserveNewLines: true,
		},
		Gateway: GatewayConfig{
			Addr:        "127.0.0.1:8787",
			Integration: IntegrationLambda,
			Bot:         BotEcho,
			LexBotName:  "DiningConceirgeBot",
			LexBotAlias: "prod",
			LexRegion:   "us-east-1",
		},
	}
}

// TypingDelay returns the configured typing delay
func (c Config) TypingDelay() time.Duration {
	return time.Duration(c.TypingDelayMS) * time.Millisecond
}

// RequestTimeout returns the configured transport timeout
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks the configuration for values the client cannot work with
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	if c.TypingDelayMS < 0 {
		return fmt.Errorf("typing_delay_ms must not be negative, got %d", c.TypingDelayMS)
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative, got %d", c.RequestTimeoutSeconds)
	}
	switch c.Gateway.Integration {
	case IntegrationLambda, IntegrationProxy:
	default:
		return fmt.Errorf("gateway.integration must be %q or %q, got %q", IntegrationLambda, IntegrationProxy, c.Gateway.Integration)
	}
	switch c.Gateway.Bot {
	case BotEcho, BotLex:
	default:
		return fmt.Errorf("gateway.bot must be %q or %q, got %q", BotEcho, BotLex, c.Gateway.Bot)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".concierge"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path, honouring an explicit LogFile setting
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "concierge.log"), nil
}

// LoadDotEnv loads KEY=VALUE pairs from .env files into the process
// environment. Missing files are skipped and variables that are already
// set are left alone.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads the configuration from disk and applies environment overrides.
// A .env file in the working directory and in the config directory is read first.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	if err := LoadDotEnv(".env", filepath.Join(filepath.Dir(configPath), ".env")); err != nil {
		return cfg, err
	}

	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads the configuration from path and applies environment overrides
func LoadConfigFrom(path string) (Config, error) {
	cfg, err := ReadConfigFile(path)
	if err != nil {
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// FromEnv returns the deployed gateway's configuration: the defaults with
// the Lex bot selected, then environment overrides. It reads no files, as a
// Lambda function has no home directory.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Gateway.Bot = BotLex
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return cfg, nil
}

// ReadConfigFile reads path over the defaults without environment
// overrides. A missing file yields the defaults.
func ReadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}
	return SaveConfigTo(filepath.Join(configDir, "config.json"), cfg)
}

// SaveConfigTo writes the configuration to path
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
