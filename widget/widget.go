// Package widget renders the social feed section of the website: a grid of
// posts with a preview modal, fed by one of three acquisition modes.
package widget

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/briangreenhill/socialfeed/feed"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ErrPostNotFound is returned by RenderPreview for an unknown post id
var ErrPostNotFound = errors.New("post not found")

// Config describes one widget
type Config struct {
	Mode        Mode
	Network     string
	DisplayName string
	ProfileURL  string

	// LoadMoreURL receives the "load more" action. When empty the widget
	// links to ProfileURL instead.
	LoadMoreURL string

	GridURL    string
	PreviewURL string // post id is appended
	CloseURL   string

	ElfsightAppID string
}

func (c *Config) setDefaults() {
	if c.Network == "" {
		c.Network = feed.NetworkInstagram
	}
	if c.DisplayName == "" {
		c.DisplayName = "Instagram"
	}
	if c.ProfileURL == "" {
		c.ProfileURL = "https://www.instagram.com/"
	}
	if c.GridURL == "" {
		c.GridURL = "/feed/grid"
	}
	if c.PreviewURL == "" {
		c.PreviewURL = "/feed/posts/"
	}
	if c.CloseURL == "" {
		c.CloseURL = "/feed/close"
	}
}

// Widget renders the feed section
type Widget struct {
	cfg      Config
	acquirer Acquirer
	tmpl     *template.Template
	policy   *bluemonday.Policy
}

// New creates a widget. Server and embed modes need an Acquirer; the
// third-party mode needs an Elfsight app id and ignores acq.
func New(cfg Config, acq Acquirer) (*Widget, error) {
	cfg.setDefaults()
	switch cfg.Mode {
	case ModeServer, ModeEmbed:
		if acq == nil {
			return nil, fmt.Errorf("%s mode requires a post source", cfg.Mode)
		}
	case ModeThirdParty:
		if cfg.ElfsightAppID == "" {
			return nil, fmt.Errorf("%s mode requires an app id", cfg.Mode)
		}
	default:
		return nil, fmt.Errorf("unsupported mode %s", cfg.Mode)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Widget{
		cfg:      cfg,
		acquirer: acq,
		tmpl:     tmpl,
		policy:   bluemonday.StrictPolicy(),
	}, nil
}

// Mode returns the acquisition mode
func (w *Widget) Mode() Mode {
	return w.cfg.Mode
}

type shellView struct {
	ID      string
	Mode    string
	GridURL string
}

// RenderShell writes the loading placeholder that fetches the grid once the
// page runs in the browser
func (w *Widget) RenderShell(out io.Writer) error {
	return w.tmpl.ExecuteTemplate(out, "shell", shellView{
		ID:      "social-feed-" + uuid.NewString(),
		Mode:    w.cfg.Mode.String(),
		GridURL: w.cfg.GridURL,
	})
}

type gridView struct {
	ID            string
	ModalID       string
	Mode          string
	Deferred      bool
	Empty         bool
	Posts         []feed.Post
	HasMore       bool
	LoadMoreURL   string
	ProfileURL    string
	DisplayName   string
	PreviewURL    string
	ElfsightAppID string
	AwaitPlatform string
	Scripts       []string
}

// RenderGrid writes the post grid for up to limit posts. Acquisition
// failures are logged and rendered as the empty state, never returned.
// In third-party mode nothing is written until doc is client side.
func (w *Widget) RenderGrid(ctx context.Context, out io.Writer, doc *Document, limit int) error {
	id := uuid.NewString()
	v := gridView{
		ID:          "social-feed-" + id,
		ModalID:     "social-feed-modal-" + id,
		Mode:        w.cfg.Mode.String(),
		ProfileURL:  w.cfg.ProfileURL,
		DisplayName: w.cfg.DisplayName,
		PreviewURL:  w.cfg.PreviewURL,
	}
	mark := len(doc.Added())

	switch w.cfg.Mode {
	case ModeThirdParty:
		if !doc.ClientSide() {
			v.Deferred = true
			break
		}
		awaiting := EnsureElfsightPlatform(doc, func() {
			zerolog.Ctx(ctx).Debug().Msg("elfsight platform initialized")
		})
		if awaiting {
			v.AwaitPlatform = ElfsightPlatformSrc
		}
		v.ElfsightAppID = w.cfg.ElfsightAppID
	default:
		page, err := w.acquire(ctx, limit)
		v.Posts = page.Posts
		v.HasMore = page.HasMore
		v.Empty = err != nil || len(page.Posts) == 0
		if v.HasMore {
			v.LoadMoreURL = w.cfg.LoadMoreURL
		}
	}

	v.Scripts = doc.Added()[mark:]
	return w.tmpl.ExecuteTemplate(out, "grid", v)
}

type previewView struct {
	Post        feed.Post
	Caption     template.HTML
	DisplayName string
	CloseURL    string
	Embed       bool
	Scripts     []string
	Reprocess   bool
}

// RenderPreview writes the modal for the post with id among the first limit
// posts. In embed mode the network embed script is injected on first use.
func (w *Widget) RenderPreview(ctx context.Context, out io.Writer, doc *Document, id string, limit int) error {
	if w.cfg.Mode == ModeThirdParty {
		return ErrPostNotFound
	}
	page, err := w.acquire(ctx, limit)
	if err != nil {
		return ErrPostNotFound
	}
	post, ok := lo.Find(page.Posts, func(p feed.Post) bool { return p.ID == id })
	if !ok {
		return ErrPostNotFound
	}

	v := previewView{
		Post: post,
		// strict policy output carries no markup, only escaped text
		Caption:     template.HTML(w.policy.Sanitize(post.Caption)),
		DisplayName: w.cfg.DisplayName,
		CloseURL:    w.cfg.CloseURL,
	}
	mark := len(doc.Added())
	if w.cfg.Mode == ModeEmbed {
		v.Embed = true
		injected, err := NewScriptRegistry(doc).Load(post.Network)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("network", post.Network).Msg("no embed script")
			v.Embed = false
		} else {
			v.Reprocess = !injected
		}
	}
	v.Scripts = doc.Added()[mark:]
	return w.tmpl.ExecuteTemplate(out, "preview", v)
}

func (w *Widget) acquire(ctx context.Context, limit int) (feed.Page, error) {
	page, err := w.acquirer.Acquire(ctx, limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("mode", w.cfg.Mode.String()).Msg("feed acquisition failed")
		return feed.Page{}, err
	}
	return page, nil
}
