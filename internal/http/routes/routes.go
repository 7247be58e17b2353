package routes

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/socialfeed/feed"
	"github.com/briangreenhill/socialfeed/instagram"
	"github.com/briangreenhill/socialfeed/plugins"
	"github.com/briangreenhill/socialfeed/widget"
)

// session keys
const (
	sessLimit   = "feed_limit"
	sessScripts = "feed_scripts"
)

// Error payloads of the proxy endpoint
const (
	msgMissingConfig = "Missing env vars"
	msgFetchFailed   = " fetch failed"
)

type Server struct {
	Router       *chi.Mux
	Sess         *scs.SessionManager
	Sources      *plugins.Registry
	Widget       *widget.Widget
	DefaultLimit int
	PageSize     int
	page         *template.Template
}

type ServerOptions struct {
	Logger       zerolog.Logger
	Sess         *scs.SessionManager
	Sources      *plugins.Registry
	Widget       *widget.Widget
	DefaultLimit int
	PageSize     int
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Str("request_id", chimw.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)

	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = feed.DefaultLimit
	}
	if opts.PageSize <= 0 {
		opts.PageSize = feed.DefaultLimit
	}
	if opts.Sess == nil {
		opts.Sess = scs.New()
	}

	s := &Server{
		Router:       r,
		Sess:         opts.Sess,
		Sources:      opts.Sources,
		Widget:       opts.Widget,
		DefaultLimit: opts.DefaultLimit,
		PageSize:     opts.PageSize,
		page:         template.Must(template.New("page").Parse(pageTmpl)),
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})

	r.Get("/api/{network}", s.handleFeed)

	if s.Widget != nil {
		r.Group(func(wr chi.Router) {
			wr.Use(s.Sess.LoadAndSave)
			wr.Get("/", s.handleWidgetPage)
			wr.Get("/feed", s.handleWidgetPage)
			wr.Get("/feed/grid", s.handleWidgetGrid)
			wr.Post("/feed/more", s.handleWidgetMore)
			wr.Get("/feed/posts/{postID}", s.handleWidgetPreview)
			wr.Get("/feed/close", s.handleWidgetClose)
		})
	}

	return s
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}

// handleFeed serves GET /api/{network}?limit=N
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	network := chi.URLParam(r, "network")
	src, ok := s.Sources.Get(network)
	if !ok {
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: feed.ErrUnknownNetwork.Error()})
		return
	}

	limit := feed.ParseLimit(r.URL.Query().Get("limit"), s.DefaultLimit)
	res, err := src.GetFeed(r.Context(), limit)
	if err != nil {
		log := hlog.FromRequest(r)
		if errors.Is(err, instagram.ErrMissingConfig) {
			log.Error().Err(err).Str("network", network).Msg("feed source is not configured")
			writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: msgMissingConfig})
			return
		}
		var ue *instagram.UpstreamError
		if errors.As(err, &ue) {
			log.Error().Err(err).Str("network", network).Int("upstream_status", ue.StatusCode).Msg("feed fetch failed")
		} else {
			log.Error().Err(err).Str("network", network).Msg("feed fetch failed")
		}
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: src.DisplayName() + msgFetchFailed})
		return
	}

	switch {
	case res.Stale:
		w.Header().Set("X-Cache", "STALE")
	case res.Cached:
		w.Header().Set("X-Cache", "HIT")
	default:
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, r, http.StatusOK, res.Page)
}
