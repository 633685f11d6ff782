package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/realrushil/website/internal/app"
	"github.com/realrushil/website/internal/config"
	"github.com/realrushil/website/internal/logging"
	"github.com/realrushil/website/internal/telemetry"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup (tracer flush)
// happens before exit.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	if cfg.Telemetry.Tracing {
		shutdownTracer, err := telemetry.InitTracer(os.Stdout, version)
		if err != nil {
			logging.Error().Err(err).Msg("failed to init tracer")
		} else {
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					logging.Error().Err(err).Msg("failed to shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("failed to initialize application")
		return 1
	}

	if err := application.Run(ctx); err != nil {
		logging.Error().Err(err).Msg("application error")
		return 1
	}
	return 0
}
