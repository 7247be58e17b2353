package feed

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/briangreenhill/socialfeed/cache"
	"github.com/briangreenhill/socialfeed/instagram"
)

// Fetcher is the remote side of the proxy
type Fetcher interface {
	FetchMedia(ctx context.Context) ([]instagram.Media, error)
}

// Result is what GetFeed hands back to the HTTP layer
type Result struct {
	Page
	Cached bool // served from the cache without contacting the network
	Stale  bool // served from an expired entry after a failed refresh
}

// Proxy serves the feed of one account from a single-slot cache, refreshing
// it from the network when the entry is missing or older than the TTL.
type Proxy struct {
	network     string
	displayName string
	altText     string

	fetcher Fetcher
	cache   cache.Cache[Post]

	coalesce   bool
	serveStale bool
	group      singleflight.Group
}

type ProxyOption func(*Proxy)

func WithAltText(alt string) ProxyOption {
	return func(p *Proxy) {
		if alt != "" {
			p.altText = alt
		}
	}
}

// WithCoalescing makes concurrent cache misses share one remote call
func WithCoalescing(on bool) ProxyOption {
	return func(p *Proxy) { p.coalesce = on }
}

// WithServeStale serves the previous entry when a refresh fails upstream.
// Configuration errors are never masked.
func WithServeStale(on bool) ProxyOption {
	return func(p *Proxy) { p.serveStale = on }
}

// NewInstagramProxy creates the proxy for the Instagram feed
func NewInstagramProxy(f Fetcher, c cache.Cache[Post], opts ...ProxyOption) *Proxy {
	p := &Proxy{
		network:     NetworkInstagram,
		displayName: "Instagram",
		altText:     DefaultAltText,
		fetcher:     f,
		cache:       c,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name returns the network tag, used as the route segment
func (p *Proxy) Name() string {
	return p.network
}

// DisplayName returns the human readable network name
func (p *Proxy) DisplayName() string {
	return p.displayName
}

// GetFeed returns at most limit posts. A fresh cache entry is served as is;
// otherwise the network is contacted and, on success, the cache is replaced.
// Errors are instagram.ErrMissingConfig or an *instagram.UpstreamError.
func (p *Proxy) GetFeed(ctx context.Context, limit int) (*Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	log := zerolog.Ctx(ctx)

	if p.cache.IsFresh() {
		e := p.cache.Get()
		log.Debug().Str("network", p.network).Int("limit", limit).Msg("feed cache hit")
		return &Result{Page: Paginate(e.Items, limit), Cached: true}, nil
	}

	posts, err := p.refresh(ctx)
	if err != nil {
		if p.serveStale && instagram.IsUpstream(err) {
			if e := p.cache.Get(); e != nil {
				log.Warn().Err(err).Str("network", p.network).
					Dur("age", e.Age(p.cache.Now())).Msg("refresh failed, serving stale feed")
				return &Result{Page: Paginate(e.Items, limit), Cached: true, Stale: true}, nil
			}
		}
		return nil, err
	}
	return &Result{Page: Paginate(posts, limit)}, nil
}

func (p *Proxy) refresh(ctx context.Context) ([]Post, error) {
	if !p.coalesce {
		return p.fetch(ctx)
	}
	// the shared fetch outlives the request that started it
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := p.group.Do(p.network, func() (any, error) {
		return p.fetch(fetchCtx)
	})
	if shared {
		zerolog.Ctx(ctx).Debug().Str("network", p.network).Msg("joined in-flight feed refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.([]Post), nil
}

func (p *Proxy) fetch(ctx context.Context) ([]Post, error) {
	media, err := p.fetcher.FetchMedia(ctx)
	if err != nil {
		return nil, err
	}
	posts := Normalize(media, p.network, p.altText)
	p.cache.Set(posts, p.cache.Now())
	zerolog.Ctx(ctx).Info().Str("network", p.network).Int("posts", len(posts)).Msg("feed refreshed")
	return posts, nil
}
