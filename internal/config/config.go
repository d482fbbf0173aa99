// Package config provides configuration loading and validation for the
// intake service and CLI.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonathan/skincare-intake/internal/intake"
	"github.com/jonathan/skincare-intake/internal/schemas"
	"github.com/jonathan/skincare-intake/internal/webhook"
)

//go:embed config.schema.json
var configSchema string

// Config represents the service configuration that can be loaded from a JSON
// file or the environment. Zero values mean "use the default".
type Config struct {
	Port int `json:"port,omitempty"`

	// Webhook
	WebhookURL            string `json:"webhook_url,omitempty"`
	WebhookTimeoutSeconds int    `json:"webhook_timeout_seconds,omitempty"`

	// Upload limits
	MaxImages     int   `json:"max_images,omitempty"`
	MaxImageBytes int64 `json:"max_image_bytes,omitempty"`

	// Output
	LogFile     string `json:"log_file,omitempty"`
	RenderStyle string `json:"render_style,omitempty"` // glamour style for terminal output
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	limits := intake.DefaultLimits()
	return Config{
		Port:                  8080,
		WebhookTimeoutSeconds: int(webhook.DefaultTimeout / time.Second),
		MaxImages:             limits.MaxImages,
		MaxImageBytes:         limits.MaxImageBytes,
		RenderStyle:           "dark",
	}
}

// LoadConfig loads configuration from a JSON file, validating it against
// the embedded schema first.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("failed to parse config JSON: invalid syntax in %s", path)
	}

	if err := schemas.ValidateJSONString(configSchema, string(data)); err != nil {
		return nil, fmt.Errorf("config file %s is invalid: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Unset or
// unparsable values are left at zero.
func FromEnv() Config {
	return Config{
		Port:                  envInt("PORT"),
		WebhookURL:            os.Getenv("WEBHOOK_URL"),
		WebhookTimeoutSeconds: envSeconds("WEBHOOK_TIMEOUT"),
		MaxImages:             envInt("MAX_IMAGES"),
		MaxImageBytes:         int64(envInt("MAX_IMAGE_BYTES")),
		LogFile:               os.Getenv("LOG_FILE"),
		RenderStyle:           os.Getenv("RENDER_STYLE"),
	}
}

func envInt(key string) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return 0
}

// envSeconds accepts either a Go duration ("90s") or a plain number of seconds.
func envSeconds(key string) int {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	if d, err := time.ParseDuration(value); err == nil {
		return int(d / time.Second)
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return 0
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.WebhookTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'webhook_timeout_seconds' must be non-negative")
	}
	if c.MaxImages < 0 {
		return fmt.Errorf("config error: 'max_images' must be non-negative")
	}
	if c.MaxImageBytes < 0 {
		return fmt.Errorf("config error: 'max_image_bytes' must be non-negative")
	}

	// An empty webhook URL is allowed; it can be set later via the admin endpoint.
	if c.WebhookURL != "" {
		if err := webhook.ValidateURL(c.WebhookURL); err != nil {
			return fmt.Errorf("config error: 'webhook_url': %w", err)
		}
	}

	if c.LogFile != "" {
		dir := filepath.Dir(c.LogFile)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("config error: log directory not found: %s", dir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.WebhookURL == "" {
		result.WebhookURL = defaults.WebhookURL
	}
	if result.WebhookTimeoutSeconds == 0 {
		result.WebhookTimeoutSeconds = defaults.WebhookTimeoutSeconds
	}
	if result.MaxImages == 0 {
		result.MaxImages = defaults.MaxImages
	}
	if result.MaxImageBytes == 0 {
		result.MaxImageBytes = defaults.MaxImageBytes
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if result.RenderStyle == "" {
		result.RenderStyle = defaults.RenderStyle
	}

	return result
}

// Load resolves the effective configuration: environment first, then the
// optional config file, then built-in defaults.
func Load(path string) (Config, error) {
	env := FromEnv()
	cfg := env

	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = env.MergeWithDefaults(*fileCfg)
	}

	cfg = cfg.MergeWithDefaults(Defaults())
	if err := schemas.ValidateValue(configSchema, cfg); err != nil {
		return Config{}, fmt.Errorf("effective configuration is invalid: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WebhookTimeout returns the webhook timeout as a duration.
func (c *Config) WebhookTimeout() time.Duration {
	if c.WebhookTimeoutSeconds <= 0 {
		return webhook.DefaultTimeout
	}
	return time.Duration(c.WebhookTimeoutSeconds) * time.Second
}

// Limits returns the upload limits.
func (c *Config) Limits() intake.Limits {
	return intake.Limits{
		MaxImages:     c.MaxImages,
		MaxImageBytes: c.MaxImageBytes,
	}
}
