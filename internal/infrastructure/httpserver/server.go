package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Route registers handlers on the engine.
type Route func(engine *gin.Engine)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Options configures New.
type Options struct {
	Addr            string
	ServiceName     string
	Production      bool
	ShutdownTimeout time.Duration
	Readiness       map[string]ReadinessCheck
}

// HTTPServer owns the gin engine and the net/http server lifecycle.
type HTTPServer struct {
	opts   Options
	engine *gin.Engine
	log    zerolog.Logger
}

func New(opts Options, log zerolog.Logger, routes ...Route) *HTTPServer {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(Metrics())
	engine.Use(RequestLogger(log))

	s := &HTTPServer{opts: opts, engine: engine, log: log}
	s.registerCoreRoutes()
	for _, r := range routes {
		r(engine)
	}
	return s
}

// Engine exposes the router, mainly for tests.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *HTTPServer) registerCoreRoutes() {
	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": s.opts.ServiceName, "status": "ok"})
	})

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	s.engine.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for name, check := range s.opts.Readiness {
			if err := check(ctx); err != nil {
				s.log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
				failed[name] = "unavailable"
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "dependencies": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
