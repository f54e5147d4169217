package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/core/ports/driving"
)

// Banner is the root endpoint's message.
const Banner = "ISOGuideBot API is running. Use POST /ask to query ISO 27001 controls."

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("http: ask service is required")

// Config controls the HTTP server.
type Config struct {
	Addr        string
	DefaultTopK int

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
}

// Server exposes an AskService over HTTP.
type Server struct {
	ask    driving.AskService
	cfg    Config
	engine *gin.Engine
}

// NewServer builds the router. gin's mode is left to the caller.
func NewServer(ask driving.AskService, cfg Config) (*Server, error) {
	if ask == nil {
		return nil, ErrMissingAskService
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = domain.DefaultTopK
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	s := &Server{ask: ask, cfg: cfg}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(), cors(cfg.CORSOrigins))
	engine.GET("/", s.handleRoot)
	engine.GET("/healthz", s.handleHealth)
	engine.POST("/ask", s.handleAsk)
	s.engine = engine

	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
