package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API           APIConfig          `toml:"api"`
	Session       SessionConfig      `toml:"session"`
	Feed          FeedConfig         `toml:"feed"`
	Notifications NotificationConfig `toml:"notifications"`
	Quality       QualityConfig      `toml:"quality"`
	Database      DatabaseConfig     `toml:"database"`
}

// APIConfig contains the video service endpoint and credentials.
type APIConfig struct {
	BaseURL string        `toml:"base_url" env:"BASE_URL"`
	Token   string        `toml:"token" env:"TOKEN"`
	Timeout time.Duration `toml:"timeout" env:"TIMEOUT"`
}

// SessionConfig describes the signed-in user.
type SessionConfig struct {
	UserID  string `toml:"user_id" env:"USER_ID"`
	Premium bool   `toml:"premium" env:"PREMIUM"`
}

// FeedConfig tunes activation and gesture handling in feeds.
type FeedConfig struct {
	ActivationThreshold float64       `toml:"activation_threshold"`
	DoubleTapWindow     time.Duration `toml:"double_tap_window"`
	DebounceWindow      time.Duration `toml:"debounce_window"`
}

// NotificationConfig contains poller cadence and display durations.
type NotificationConfig struct {
	PollInterval       time.Duration `toml:"poll_interval" env:"POLL_INTERVAL"`
	CelebrationTimeout time.Duration `toml:"celebration_timeout"`
	ToastDuration      time.Duration `toml:"toast_duration"`
}

// QualityConfig bounds the wait for a new source to become playable.
type QualityConfig struct {
	ReadyTimeout time.Duration `toml:"ready_timeout"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// envOverrides mirrors the subset of [Config] that may be set from REEL_* variables.
type envOverrides struct {
	API      APIConfig      `envPrefix:"API_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Poll     time.Duration  `env:"POLL_INTERVAL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads dotenv files (missing files are ignored) and then overrides config values
// from REEL_* environment variables.
//
// Only non-zero environment values replace what the TOML file provided.
func (c *Config) ApplyEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "REEL_"}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if o.API.BaseURL != "" {
		c.API.BaseURL = o.API.BaseURL
	}
	if o.API.Token != "" {
		c.API.Token = o.API.Token
	}
	if o.API.Timeout > 0 {
		c.API.Timeout = o.API.Timeout
	}
	if o.Session.UserID != "" {
		c.Session.UserID = o.Session.UserID
	}
	if o.Session.Premium {
		c.Session.Premium = true
	}
	if o.Database.Path != "" {
		c.Database.Path = o.Database.Path
	}
	if o.Poll > 0 {
		c.Notifications.PollInterval = o.Poll
	}
	return nil
}

// Validate reports configuration values the engine cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	if c.Feed.ActivationThreshold <= 0 || c.Feed.ActivationThreshold > 1 {
		return fmt.Errorf("%w: feed.activation_threshold must be in (0, 1], got %v", ErrInvalidConfig, c.Feed.ActivationThreshold)
	}
	if c.Notifications.PollInterval <= 0 {
		return fmt.Errorf("%w: notifications.poll_interval must be positive", ErrInvalidConfig)
	}
	if c.Feed.DebounceWindow < 0 || c.Feed.DoubleTapWindow < 0 {
		return fmt.Errorf("%w: feed windows cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// CurrentSession returns the explicit session value handed to engine components.
func (c *Config) CurrentSession() Session {
	return Session{
		UserID:  c.Session.UserID,
		Token:   c.API.Token,
		Premium: c.Session.Premium,
	}
}
