package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xtding233/loot-backend/internal/logger"
	"github.com/xtding233/loot-backend/internal/metrics"
	"github.com/xtding233/loot-backend/internal/service"
)

// maxBodyBytes caps request bodies (drop lists).
const maxBodyBytes = 1 << 20

type Server struct {
	httpServer *http.Server
}

// New creates the HTTP server serving svc on addr.
func New(addr string, svc *service.Service) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(svc),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewRouter builds the route tree.
func NewRouter(svc *service.Service) http.Handler {
	h := &handlers{svc: svc}
	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(requestSizeLimitMiddleware(maxBodyBytes))

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalogs", func(r chi.Router) {
			r.Get("/", h.listCatalogs)
			r.Get("/{catalog}/tree", h.tree)
			r.Get("/{catalog}/roll", h.roll)
			r.Post("/{catalog}/loot", h.lootCatalog)
		})
		r.Route("/tables", func(r chi.Router) {
			r.Get("/", h.listTables)
			r.Get("/{table}/loot", h.lootTable)
			r.Get("/{table}/simulate", h.simulate)
		})
		r.Post("/admin/reload", h.reload)
	})

	return r
}

// Start starts the server; it returns http.ErrServerClosed after Stop.
func (s *Server) Start() error {
	slog.Default().Info("HTTP server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Serve runs the server until ctx is done, then shuts it down within grace.
func (s *Server) Serve(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDMiddleware keeps a client supplied X-Request-ID or generates one,
// echoes it back and stores it in the request context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = logger.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") || strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		log := logger.FromContext(r.Context())
		log.Debug("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"remote_addr", r.RemoteAddr)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}
