package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/logger"
)

// Prefix is the path prefix of every API route.
const Prefix = "/api/v1"

const shutdownTimeout = 5 * time.Second

// Server is the HTTP API server.
type Server struct {
	mu       sync.Mutex
	ports    *Ports
	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

// NewServer creates an API server over the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	return &Server{ports: ports}, nil
}

// Serve runs h on addr with the same lifecycle as the API server and
// blocks until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	s := &Server{handler: withLogging(h)}
	return s.Run(ctx, addr)
}

// Handler returns the routed handler with logging and CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+Prefix+"/{$}", s.handleRoot)
	mux.HandleFunc("GET "+Prefix+"/health", s.handleHealth)
	mux.HandleFunc("POST "+Prefix+"/upload-documents", s.handleUploadDocuments)
	mux.HandleFunc("POST "+Prefix+"/ask", s.handleAsk)
	mux.HandleFunc("POST "+Prefix+"/search", s.handleSearch)
	mux.HandleFunc("GET "+Prefix+"/documents/info", s.handleDocumentsInfo)
	mux.HandleFunc("GET "+Prefix+"/search/statistics", s.handleStatistics)
	mux.HandleFunc("DELETE "+Prefix+"/documents/clear", s.handleClear)
	return withLogging(withCORS(mux))
}

// Start listens on addr and serves in the background.
// An addr with port 0 picks a free port; see Addr.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("api: server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	handler := s.handler
	if handler == nil {
		handler = s.Handler()
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.listener = listener
	s.server = srv

	// Stop clears s.server, so the goroutine only touches its own copies.
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server stopped: %v", err)
		}
	}()

	if s.handler == nil {
		logger.Info("API listening on http://%s%s", listener.Addr(), Prefix)
	}
	return nil
}

// Addr returns the listening address, empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.Start(addr); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
