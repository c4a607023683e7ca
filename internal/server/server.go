// Package server serves the live editor page and bridges browser events to
// a livemd.Session over HTTP and WebSocket.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alnah/livemd"
	"github.com/alnah/livemd/internal/assets"
)

// Defaults used when the matching option is not given.
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 5 * time.Second
	DefaultTitle           = "livemd"
)

const readHeaderTimeout = 10 * time.Second

// ErrNilSession is returned by New without a session.
var ErrNilSession = errors.New("server: session is required")

// Server is the editor backend. Create it with New.
type Server struct {
	session         *livemd.Session
	loader          assets.AssetLoader
	page            *template.Template
	logger          *slog.Logger
	addr            string
	title           string
	highlightCSS    string
	maxBodyBytes    int64
	shutdownTimeout time.Duration

	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*client]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address used by Run.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithMaxBodyBytes limits request bodies and WebSocket messages.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithAssets replaces the embedded asset loader.
func WithAssets(loader assets.AssetLoader) Option {
	return func(s *Server) {
		if loader != nil {
			s.loader = loader
		}
	}
}

// WithLogger sets the request logger. The default discards records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHighlightCSS serves css at /highlight.css and links it from the page.
func WithHighlightCSS(css string) Option {
	return func(s *Server) { s.highlightCSS = css }
}

// WithTitle sets the editor page title.
func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// New creates a Server for session. The page template is parsed once here,
// so a broken override template fails at startup.
func New(session *livemd.Session, opts ...Option) (*Server, error) {
	if session == nil {
		return nil, ErrNilSession
	}

	s := &Server{
		session:         session,
		loader:          assets.NewEmbeddedLoader(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		addr:            DefaultAddr,
		title:           DefaultTitle,
		maxBodyBytes:    DefaultMaxBodyBytes,
		shutdownTimeout: DefaultShutdownTimeout,
		clients:         make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	tmpl, err := s.loader.LoadAsset(assets.PageTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading page template: %w", err)
	}
	s.page, err = template.New(assets.PageTemplate).Parse(string(tmpl.Content))
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the routed, logged HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /assets/{name}", s.handleAsset)
	mux.HandleFunc("GET /highlight.css", s.handleHighlightCSS)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("PUT /api/content", s.handleContent)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	mux.HandleFunc("POST /api/theme/toggle", s.handleToggleTheme)
	mux.HandleFunc("POST /api/format", s.handleFormat)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s.logRequests(mux)
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	// Hijacked WebSocket connections are not tracked by Shutdown.
	srv.RegisterOnShutdown(s.closeClients)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// pageData feeds the editor template.
type pageData struct {
	Title     string
	Theme     livemd.Theme
	Icon      string
	Content   string
	Preview   template.HTML
	Highlight bool
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Load(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := pageData{
		Title:   s.title,
		Theme:   snap.Theme,
		Icon:    snap.Icon,
		Content: snap.Content,
		// #nosec G203 -- preview is renderer output, shown as the user wrote it
		Preview:   template.HTML(snap.HTML),
		Highlight: s.highlightCSS != "",
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.serverError(w, r, fmt.Errorf("executing page template: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !assets.IsPublic(name) {
		http.NotFound(w, r)
		return
	}

	a, err := s.loader.LoadAsset(name)
	if err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", a.ContentType)
	_, _ = w.Write(a.Content)
}

func (s *Server) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	if s.highlightCSS == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = io.WriteString(w, s.highlightCSS)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
