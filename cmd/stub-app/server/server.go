// Package server provides an importable HTTP server that stands in for the
// photos frontend. E2E tests start it programmatically when no external
// BASE_URL is configured.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds server configuration options.
type Config struct {
	Addr         string        // Listen address (e.g., ":5174" or ":0" for random port)
	ReadTimeout  time.Duration // HTTP read timeout
	WriteTimeout time.Duration // HTTP write timeout

	// WarmupRequests is how many requests are answered with 503 before the
	// server starts serving pages. It simulates a slow-starting stack.
	WarmupRequests int

	Logger logrus.FieldLogger
}

// DefaultConfig returns a configuration suitable for testing.
// Uses ":0" to bind to a random available port.
func DefaultConfig() Config {
	return Config{
		Addr:         ":0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is an importable stub of the photos application.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	log        logrus.FieldLogger
	warmup     int64
	served     atomic.Int64
	mu         sync.Mutex
	running    bool
}

// NewServer creates a new server with the given configuration.
// The server is not started until Start() is called.
func NewServer(cfg Config) (*Server, error) {
	if cfg.WarmupRequests < 0 {
		return nil, errors.New("warmup requests must not be negative")
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	s := &Server{
		log:    log,
		warmup: int64(cfg.WarmupRequests),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/photos", http.StatusFound)
	})
	mux.HandleFunc("/photos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(PhotosPage))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.warmupMiddleware(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// warmupMiddleware answers 503 until WarmupRequests requests were seen.
func (s *Server) warmupMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := s.served.Add(1)
		if n <= s.warmup {
			s.log.WithFields(logrus.Fields{
				"path":    r.URL.Path,
				"request": n,
			}).Debug("warming up")
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("stub app stopped serving")
		}
	}()

	s.log.WithField("addr", s.addr).Info("stub app listening")
	return s.addr, nil
}

// URL returns a browser-friendly base URL for the running server.
// Wildcard listen addresses are rewritten to localhost.
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	return "http://localhost:" + port
}

// Requests returns how many requests the server has received.
func (s *Server) Requests() int64 {
	return s.served.Load()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
// Returns empty string if server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
