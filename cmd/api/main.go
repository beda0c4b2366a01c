package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ruturajs19/chat-app/internal/config"
	"github.com/ruturajs19/chat-app/internal/infrastructure/httpserver"
	"github.com/ruturajs19/chat-app/internal/infrastructure/logger"
	"github.com/ruturajs19/chat-app/internal/infrastructure/realtime"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	router     *realtime.Router
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, router *realtime.Router, log zerolog.Logger) *Application {
	return &Application{httpServer: httpServer, router: router, log: log}
}

// Start serves HTTP and websockets until ctx is cancelled, then closes every
// live socket.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.router.Close()
		return nil
	})
	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	log = log.With().Str("service", cfg.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := CreateApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer cleanup()

	log.Info().
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("store", cfg.StoreDriver).
		Bool("image_uploads", cfg.ImageUploadsEnabled()).
		Msg("starting chat service")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}
	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
