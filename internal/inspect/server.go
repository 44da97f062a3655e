// Package inspect serves a read-only HTTP view of the codec: the opcode
// table, a decoder for captured envelopes, health and metrics.
package inspect

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/danmuck/gamewire/internal/config"
	"github.com/danmuck/gamewire/internal/observability"
	"github.com/danmuck/gamewire/internal/protocol/message"
)

const (
	serviceName     = "inspect"
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	Addr     string
	Appeared time.Time

	codec  *message.Codec
	router *gin.Engine
	logger zerolog.Logger
}

func New(cfg config.InspectConfig, codec *message.Codec) *Server {
	observability.RegisterMetrics()
	logger := observability.Component(serviceName)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware(serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Addr:     cfg.Addr,
		Appeared: time.Now(),
		codec:    codec,
		router:   r,
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.Addr).Msg("inspect listening")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("inspect stopped")
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
