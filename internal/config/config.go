// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Widget acquisition modes
const (
	ModeServer   = "server"
	ModeEmbed    = "embed"
	ModeElfsight = "elfsight"
)

// Config holds all application configuration
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"` // 0 keeps the client default

	Feed      FeedConfig
	Instagram InstagramConfig
	Widget    WidgetConfig
}

// FeedConfig holds the proxy and cache settings
type FeedConfig struct {
	CacheTTL     time.Duration `env:"FEED_CACHE_TTL" envDefault:"24h"`
	DefaultLimit int           `env:"FEED_DEFAULT_LIMIT" envDefault:"6"`
	FetchLimit   int           `env:"FEED_FETCH_LIMIT" envDefault:"20"`
	Coalesce     bool          `env:"FEED_COALESCE" envDefault:"false"`
	ServeStale   bool          `env:"FEED_SERVE_STALE" envDefault:"false"`
	AltText      string        `env:"FEED_ALT_TEXT" envDefault:"Instagram post from our association"`
}

// InstagramConfig holds the non-secret Instagram settings.
// Credentials are read separately on every remote call, see LoadCredentials.
type InstagramConfig struct {
	GraphURL   string `env:"INSTAGRAM_GRAPH_URL" envDefault:"https://graph.instagram.com"`
	ProfileURL string `env:"INSTAGRAM_PROFILE_URL" envDefault:"https://www.instagram.com/"`
}

// WidgetConfig selects how the feed widget gets its posts
type WidgetConfig struct {
	Mode          string `env:"WIDGET_MODE" envDefault:"server"`
	ElfsightAppID string `env:"ELFSIGHT_APP_ID"`
	PageSize      int    `env:"WIDGET_PAGE_SIZE" envDefault:"6"`
	APIBaseURL    string `env:"WIDGET_API_URL"` // server mode; defaults to this process
}

// Credentials identify the Instagram account whose media is proxied
type Credentials struct {
	UserID      string `env:"INSTAGRAM_USER_ID"`
	AccessToken string `env:"INSTAGRAM_ACCESS_TOKEN"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadCredentials reads the Instagram credentials. Missing values are left
// empty; the caller decides what an incomplete pair means.
func LoadCredentials() (Credentials, error) {
	creds, err := env.ParseAs[Credentials]()
	if err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	return creds, nil
}

// HasCredentials returns true if both credentials are set
func (c Credentials) HasCredentials() bool {
	return c.UserID != "" && c.AccessToken != ""
}

// Level returns the zerolog level for LogLevel, info when unparsable
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate ensures the configuration is consistent
func (c *Config) Validate() error {
	switch c.Widget.Mode {
	case ModeServer, ModeEmbed:
	case ModeElfsight:
		if c.Widget.ElfsightAppID == "" {
			return fmt.Errorf("WIDGET_MODE=elfsight requires ELFSIGHT_APP_ID")
		}
	default:
		return fmt.Errorf("unknown WIDGET_MODE %q, expected server, embed or elfsight", c.Widget.Mode)
	}
	if c.Feed.CacheTTL <= 0 {
		return fmt.Errorf("FEED_CACHE_TTL must be positive, got %s", c.Feed.CacheTTL)
	}
	if c.Feed.DefaultLimit <= 0 {
		return fmt.Errorf("FEED_DEFAULT_LIMIT must be positive, got %d", c.Feed.DefaultLimit)
	}
	if c.Feed.FetchLimit <= 0 {
		return fmt.Errorf("FEED_FETCH_LIMIT must be positive, got %d", c.Feed.FetchLimit)
	}
	if c.Widget.PageSize <= 0 {
		return fmt.Errorf("WIDGET_PAGE_SIZE must be positive, got %d", c.Widget.PageSize)
	}
	return nil
}
