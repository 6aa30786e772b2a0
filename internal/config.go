package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Pins  PinsConfig        `yaml:"pins"`
	Cache CacheConfig       `yaml:"cache"`
	Order OrderConfig       `yaml:"order"`
	Index IndexConfig       `yaml:"index"`
	Auth  AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Pins.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// PinsConfig holds the scan pipeline settings. Roots may be empty at start;
// they can be supplied later over the API, which triggers the first scan.
type PinsConfig struct {
	Roots         []string      `yaml:"roots"`
	MaxFileSizeMB int           `yaml:"max_file_size_mb"`
	ScanInterval  time.Duration `yaml:"scan_interval"` // 0 disables periodic scans
	Watch         bool          `yaml:"watch"`
}

// Validate validates the pins configuration.
func (c *PinsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxFileSizeMB, validation.Required, validation.Min(1), validation.Max(1024)),
		validation.Field(&c.ScanInterval, validation.Min(time.Duration(0))),
	)
}

// CacheConfig holds the path of the persisted parse cache.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// OrderConfig holds the path of the pin order settings file. Empty disables
// order persistence; pins then keep their recency order.
type OrderConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig holds the SQLite search index location. Empty disables the
// search endpoints.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8090,
			},
		},
		Pins: PinsConfig{
			MaxFileSizeMB: 10,
			ScanInterval:  5 * time.Minute,
			Watch:         true,
		},
		Cache: CacheConfig{
			Path: "./raido-cache.json",
		},
		Order: OrderConfig{
			Path: "./raido-order.json",
		},
		Index: IndexConfig{
			Path: "./raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
