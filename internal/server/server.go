package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juststeveking/lodestone/internal/status"
	"github.com/juststeveking/lodestone/internal/store"
)

const shutdownTimeout = 5 * time.Second

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

// Page holds the static parts of the landing page
type Page struct {
	Name           string
	Host           string
	Port           int
	PollInterval   time.Duration
	CopiedDuration time.Duration
}

// pageData is what the index template renders
type pageData struct {
	Name          string
	Address       string
	State         string
	Loading       bool
	Status        status.ServerStatus
	Percent       float64
	UpdatedAgo    string
	RefreshMillis int64
	CopiedMillis  int64
}

// statusResponse is the JSON body of /api/status
type statusResponse struct {
	Name      string              `json:"name"`
	Address   string              `json:"address"`
	Loading   bool                `json:"loading"`
	Status    status.ServerStatus `json:"status"`
	ErrorKind status.ErrorKind    `json:"error_kind,omitempty"`
	UpdatedAt *time.Time          `json:"updated_at"`
}

// Server serves the landing page from the status store
type Server struct {
	store      *store.Store
	page       Page
	listen     string
	httpServer *http.Server
	logger     *slog.Logger
	done       chan struct{}
}

// NewServer creates a new HTTP [Server]. It does not listen until [Server.Start].
func NewServer(st *store.Store, page Page, listen string, logger *slog.Logger) *Server {
	return &Server{
		store:  st,
		page:   page,
		listen: listen,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Handler returns the route multiplexer
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start binds the listen address and serves in the background until ctx is
// cancelled, then shuts down gracefully. It returns an error if binding fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.listen, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		defer close(s.done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("landing page listening", "addr", ln.Addr().String())

	return nil
}

// Wait blocks until the server started by [Server.Start] has shut down
func (s *Server) Wait() {
	<-s.done
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	data := pageData{
		Name:          s.page.Name,
		Address:       status.Address(s.page.Host, s.page.Port),
		State:         stateClass(snap),
		Loading:       snap.Loading,
		Status:        snap.Status,
		Percent:       status.PlayerPercent(snap.Status),
		RefreshMillis: s.page.PollInterval.Milliseconds(),
		CopiedMillis:  s.page.CopiedDuration.Milliseconds(),
	}
	if !snap.UpdatedAt.IsZero() {
		data.UpdatedAgo = humanize.Time(snap.UpdatedAt)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render landing page", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	resp := statusResponse{
		Name:      s.page.Name,
		Address:   status.Address(s.page.Host, s.page.Port),
		Loading:   snap.Loading,
		Status:    snap.Status,
		ErrorKind: snap.ErrorKind,
	}
	if !snap.UpdatedAt.IsZero() {
		resp.UpdatedAt = &snap.UpdatedAt
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode status response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func stateClass(snap store.Snapshot) string {
	switch {
	case snap.Loading:
		return "loading"
	case snap.Status.Online:
		return "online"
	default:
		return "offline"
	}
}
