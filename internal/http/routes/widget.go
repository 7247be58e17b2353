package routes

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/socialfeed/widget"
)

const pageTmpl = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Follow us</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
</head>
<body>
<main>
<h2>Follow us on Instagram</h2>
{{.}}
</main>
</body>
</html>`

// isClientSide is true for requests issued by the running page (htmx)
func isClientSide(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (s *Server) limit(r *http.Request) int {
	if n := s.Sess.GetInt(r.Context(), sessLimit); n > 0 {
		return n
	}
	return s.PageSize
}

func (s *Server) document(r *http.Request) *widget.Document {
	scripts, _ := s.Sess.Get(r.Context(), sessScripts).([]string)
	return widget.NewDocument(isClientSide(r), scripts...)
}

func (s *Server) saveDocument(r *http.Request, doc *widget.Document) {
	if scripts := doc.Scripts(); len(scripts) > 0 {
		s.Sess.Put(r.Context(), sessScripts, scripts)
	}
}

func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("write widget response")
	}
}

// handleWidgetPage renders a fresh page with the loading shell. A new page
// carries no scripts yet and starts from the first page of posts.
func (s *Server) handleWidgetPage(w http.ResponseWriter, r *http.Request) {
	s.Sess.Put(r.Context(), sessLimit, s.PageSize)
	s.Sess.Remove(r.Context(), sessScripts)

	var shell bytes.Buffer
	if err := s.Widget.RenderShell(&shell); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render widget shell")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, template.HTML(shell.String())); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.renderHTML(w, r, &buf)
}

func (s *Server) handleWidgetGrid(w http.ResponseWriter, r *http.Request) {
	s.renderGrid(w, r, s.limit(r))
}

// handleWidgetMore grows the visitor's limit by one page and re-renders the grid
func (s *Server) handleWidgetMore(w http.ResponseWriter, r *http.Request) {
	limit := s.limit(r) + s.PageSize
	s.Sess.Put(r.Context(), sessLimit, limit)
	s.renderGrid(w, r, limit)
}

func (s *Server) renderGrid(w http.ResponseWriter, r *http.Request, limit int) {
	doc := s.document(r)
	var buf bytes.Buffer
	if err := s.Widget.RenderGrid(r.Context(), &buf, doc, limit); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render widget grid")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.saveDocument(r, doc)
	s.renderHTML(w, r, &buf)
}

func (s *Server) handleWidgetPreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")
	doc := s.document(r)
	var buf bytes.Buffer
	if err := s.Widget.RenderPreview(r.Context(), &buf, doc, id, s.limit(r)); err != nil {
		if errors.Is(err, widget.ErrPostNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("render widget preview")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.saveDocument(r, doc)
	s.renderHTML(w, r, &buf)
}

// handleWidgetClose empties the modal host, which brings back the plain grid
func (s *Server) handleWidgetClose(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}
