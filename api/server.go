package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/gersmaps/geocoder"
)

// Geocoder is the engine surface the server depends on.
type Geocoder interface {
	Search(ctx context.Context, req geocoder.SearchRequest) ([]geocoder.Result, error)
	Reverse(ctx context.Context, lat, lon float64, optFns ...func(*geocoder.ReverseOptions)) ([]geocoder.ReverseResult, error)
	Version(ctx context.Context) (string, error)
}

// Server routes HTTP requests to a Geocoder.
type Server struct {
	engine  Geocoder
	logger  *slog.Logger
	handler http.Handler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the access and error logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer builds the HTTP handler around engine.
func NewServer(engine Geocoder, optFns ...ServerOption) *Server {
	s := &Server{
		engine: engine,
		logger: slog.Default(),
	}
	for _, fn := range optFns {
		fn(s)
	}

	router := httprouter.New()
	router.GET("/search", s.handleSearch)
	router.GET("/reverse", s.handleReverse)
	router.GET("/healthz", s.handleHealth)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.logger.Error("panic serving request", "path", r.URL.Path, "panic", v)
		writeError(w, http.StatusInternalServerError, "internal error")
	}

	s.handler = requestID(accessLog(s.logger)(router))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	version, err := s.engine.Version(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "dataset unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version,
	})
}
