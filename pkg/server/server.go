package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kylerisse/cmangraph/pkg/cman"
	"github.com/kylerisse/cmangraph/pkg/config"
	"github.com/kylerisse/cmangraph/pkg/rrd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Server serves CMAN graph definitions over HTTP.
type Server struct {
	cfg     config.Config
	builder *cman.Builder
	drawer  *rrd.Drawer
	limiter *rate.Limiter
	metrics *metrics
	logger  *logrus.Logger

	httpServer *http.Server
	wg         sync.WaitGroup
}

// NewServer creates a Server from cfg. The drawer is optional; without it
// draw requests are rejected.
func NewServer(cfg config.Config, drawer *rrd.Drawer, logger *logrus.Logger) (*Server, error) {
	if cfg.ListenPort == "" {
		return nil, fmt.Errorf("listen port is required")
	}

	return &Server{
		cfg:     cfg,
		builder: cman.NewBuilder(cfg.CheckCommand, logger),
		drawer:  drawer,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		metrics: newMetrics(prometheus.NewRegistry()),
		logger:  logger,
	}, nil
}

// Start begins serving in the background.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              ":" + s.cfg.ListenPort,
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Infof("Starting API server on port %v...", s.cfg.ListenPort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("API server failed: %v", err)
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	s.wg.Wait()
	s.logger.Info("API server stopped.")
	return err
}
