// cmd/api/main.go
package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/socialfeed/cache"
	"github.com/briangreenhill/socialfeed/feed"
	"github.com/briangreenhill/socialfeed/instagram"
	"github.com/briangreenhill/socialfeed/internal/config"
	"github.com/briangreenhill/socialfeed/internal/http/routes"
	"github.com/briangreenhill/socialfeed/plugins"
	"github.com/briangreenhill/socialfeed/widget"
)

func main() {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	logger = logger.Level(cfg.Level())

	// Instagram client; credentials are re-read from the environment per call
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	client := instagram.New(
		instagram.WithHTTPClient(httpClient),
		instagram.WithBaseURL(cfg.Instagram.GraphURL),
		instagram.WithFetchLimit(cfg.Feed.FetchLimit),
		instagram.WithCredentials(func() instagram.Credentials {
			c, err := config.LoadCredentials()
			if err != nil {
				logger.Error().Err(err).Msg("read instagram credentials")
				return instagram.Credentials{}
			}
			return instagram.Credentials{UserID: c.UserID, AccessToken: c.AccessToken}
		}),
	)
	if c, err := config.LoadCredentials(); err != nil || !c.HasCredentials() {
		logger.Warn().Msg("INSTAGRAM_USER_ID or INSTAGRAM_ACCESS_TOKEN not set, feed requests will fail until they are")
	}

	// Feed proxy
	slot := cache.NewSlot[feed.Post](cache.WithTTL[feed.Post](cfg.Feed.CacheTTL))
	proxy := feed.NewInstagramProxy(client, slot,
		feed.WithAltText(cfg.Feed.AltText),
		feed.WithCoalescing(cfg.Feed.Coalesce),
		feed.WithServeStale(cfg.Feed.ServeStale),
	)
	registry := plugins.NewRegistry()
	registry.Register(proxy)

	// Widget
	mode, err := widget.ParseMode(cfg.Widget.Mode)
	if err != nil {
		logger.Fatal().Err(err).Msg("widget mode")
	}
	var acq widget.Acquirer
	switch mode {
	case widget.ModeServer:
		pc, err := widget.NewProxyClient(apiBaseURL(cfg), widget.WithHTTPClient(httpClient))
		if err != nil {
			logger.Fatal().Err(err).Msg("widget proxy client")
		}
		acq = pc
	case widget.ModeEmbed:
		acq = widget.FromGetter(proxy)
	}
	w, err := widget.New(widget.Config{
		Mode:          mode,
		ProfileURL:    cfg.Instagram.ProfileURL,
		LoadMoreURL:   "/feed/more",
		ElfsightAppID: cfg.Widget.ElfsightAppID,
	}, acq)
	if err != nil {
		logger.Fatal().Err(err).Msg("widget")
	}

	// Sessions (in memory) keep the widget page state per visitor
	sess := scs.New()
	sess.Lifetime = 12 * time.Hour
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = false

	s := routes.New(routes.ServerOptions{
		Logger:       logger,
		Sess:         sess,
		Sources:      registry,
		Widget:       w,
		DefaultLimit: cfg.Feed.DefaultLimit,
		PageSize:     cfg.Widget.PageSize,
	})

	logger.Info().
		Str("port", cfg.Port).
		Str("widget_mode", mode.String()).
		Dur("cache_ttl", cfg.Feed.CacheTTL).
		Bool("coalesce", cfg.Feed.Coalesce).
		Bool("serve_stale", cfg.Feed.ServeStale).
		Msg("starting app")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// apiBaseURL is where the server-mode widget reaches the proxy endpoint
func apiBaseURL(cfg *config.Config) string {
	if u := strings.TrimSpace(cfg.Widget.APIBaseURL); u != "" {
		return u
	}
	return "http://127.0.0.1:" + cfg.Port
}
