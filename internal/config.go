package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/katha/internal/broadcast"
	"github.com/starford/katha/internal/deck"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Deck   DeckConfig        `yaml:"deck"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Render RenderConfig      `yaml:"render"`
	Sync   SyncConfig        `yaml:"sync"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Deck.Validate(); err != nil {
		return fmt.Errorf("deck: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Sync.Validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
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

// DeckConfig points at the markdown deck and controls reload on save.
type DeckConfig struct {
	// Path is the deck file. Its directory is the root for assets and
	// the watcher.
	Path          string        `yaml:"path"`
	Watch         bool          `yaml:"watch"`
	WatchPatterns []string      `yaml:"watch_patterns"`
	Debounce      time.Duration `yaml:"debounce"`
}

// Dir returns the directory holding the deck file.
func (c *DeckConfig) Dir() string {
	return filepath.Dir(c.Path)
}

// File returns the deck file name relative to Dir.
func (c *DeckConfig) File() string {
	return filepath.Base(c.Path)
}

// Validate validates the deck configuration.
func (c *DeckConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for navigation control.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): anyone who can reach the server may drive the deck.
//   - "token": POST /api/navigate and /ws need the token; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// RenderConfig controls markdown rendering of slide slots.
type RenderConfig struct {
	Sanitize  bool `yaml:"sanitize"`
	HardWraps bool `yaml:"hard_wraps"`
}

// SyncConfig holds cross-surface sync configuration.
type SyncConfig struct {
	// Buffer is the per-subscriber queue length. A subscriber that falls
	// this far behind starts losing messages.
	Buffer int `yaml:"buffer"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Buffer, validation.Required, validation.Min(1), validation.Max(4096)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 3030,
			},
		},
		Deck: DeckConfig{
			Path:          deck.DefaultFile,
			Watch:         true,
			WatchPatterns: []string{"*.md"},
			Debounce:      deck.DefaultDebounce,
		},
		SQLite: SQLiteConfig{
			Path: ":memory:",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Sync: SyncConfig{
			Buffer: broadcast.DefaultBuffer,
		},
	}
}
