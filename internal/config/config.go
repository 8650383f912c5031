// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the root application configuration, populated from defaults,
// an optional YAML file, and SCALPEL_DOM_* environment overrides.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SessionConfig carries the wait policy every element handle inherits.
type SessionConfig struct {
	// WaitTimeout bounds the total retry budget for one operation.
	WaitTimeout time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	// PollInterval paces retries within the budget.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// VisibleTextOnly makes text extraction default to rendered text.
	VisibleTextOnly bool `mapstructure:"visible_text_only" yaml:"visible_text_only"`
	// Reloadable controls whether handles created by the session recover
	// from stale references by re-resolving their locator.
	Reloadable bool `mapstructure:"reloadable" yaml:"reloadable"`
}

// BrowserConfig configures the chromedp-backed driver.
type BrowserConfig struct {
	Headless           bool          `mapstructure:"headless" yaml:"headless"`
	ExecPath           string        `mapstructure:"exec_path" yaml:"exec_path"`
	UserAgent          string        `mapstructure:"user_agent" yaml:"user_agent"`
	WindowWidth        int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight       int           `mapstructure:"window_height" yaml:"window_height"`
	IgnoreTLSErrors    bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	NavigationTimeout  time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	ActionTimeout      time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
}

// SetDefaults registers every default value on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "scalpel-dom")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("session.wait_timeout", 2*time.Second)
	v.SetDefault("session.poll_interval", 50*time.Millisecond)
	v.SetDefault("session.visible_text_only", true)
	v.SetDefault("session.reloadable", true)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.window_width", 1280)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.navigation_timeout", 30*time.Second)
	v.SetDefault("browser.action_timeout", 10*time.Second)
}

// Load unmarshals the given viper instance into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the retry machinery cannot work with.
func (c Config) Validate() error {
	if c.Session.WaitTimeout <= 0 {
		return fmt.Errorf("config: session.wait_timeout must be positive, got %v", c.Session.WaitTimeout)
	}
	if c.Session.PollInterval <= 0 {
		return fmt.Errorf("config: session.poll_interval must be positive, got %v", c.Session.PollInterval)
	}
	if c.Session.PollInterval > c.Session.WaitTimeout {
		return fmt.Errorf("config: session.poll_interval (%v) exceeds session.wait_timeout (%v)",
			c.Session.PollInterval, c.Session.WaitTimeout)
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("config: browser window dimensions must be positive")
	}
	if c.Browser.NavigationTimeout <= 0 || c.Browser.ActionTimeout <= 0 {
		return fmt.Errorf("config: browser timeouts must be positive")
	}
	return nil
}
