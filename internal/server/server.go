// Package server hosts viewers over HTTP: product pages, a websocket per
// viewer session and one-shot snapshots.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"product-viewer/internal/catalog"
	"product-viewer/internal/viewer"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Options configures a Server.
type Options struct {
	Catalog        catalog.Source
	Viewer         viewer.Options
	AssetDir       string
	Width, Height  int
	AutoRotate     bool
	RotationPeriod time.Duration
	SettleTimeout  time.Duration
	Log            zerolog.Logger
}

// Server routes requests to catalog pages and viewer sessions.
type Server struct {
	opts Options
	log  zerolog.Logger
	mux  *http.ServeMux
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = 30 * time.Second
	}
	s := &Server{opts: opts, log: opts.Log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /view/{id}", s.handleView)
	s.mux.HandleFunc("GET /ws/{id}", s.handleWS)
	s.mux.HandleFunc("GET /snapshot/{id}", s.handleSnapshot)
	if opts.AssetDir != "" {
		s.mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(opts.AssetDir))))
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// product resolves the {id} path value, writing the error response itself.
func (s *Server) product(w http.ResponseWriter, r *http.Request) (catalog.Product, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad product id", http.StatusBadRequest)
		return catalog.Product{}, false
	}
	p, err := s.opts.Catalog.Product(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return catalog.Product{}, false
	}
	if err != nil {
		s.log.Error().Err(err).Int("id", id).Msg("catalog lookup failed")
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return catalog.Product{}, false
	}
	return p, true
}

// input builds the viewer input for p from the request's mode parameter.
func (s *Server) input(r *http.Request, p catalog.Product) (viewer.Input, error) {
	var mode viewer.Mode
	if m := r.URL.Query().Get("mode"); m != "" {
		var err error
		if mode, err = viewer.ParseMode(m); err != nil {
			return viewer.Input{}, err
		}
	}
	in := p.Input(mode, s.opts.Width, s.opts.Height)
	in.AutoRotate = s.opts.AutoRotate
	in.RotationPeriod = s.opts.RotationPeriod
	return in, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	products, err := s.opts.Catalog.Products(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list products failed")
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	s.render(w, "index.html", map[string]any{"Products": products})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	p, ok := s.product(w, r)
	if !ok {
		return
	}
	in, err := s.input(r, p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.render(w, "view.html", map[string]any{
		"Product": p,
		"Mode":    string(in.Mode),
		"Width":   in.Width,
		"Height":  in.Height,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("render page failed")
	}
}
