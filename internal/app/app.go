// Package app wires configuration, storage, services and the HTTP surface
// into one supervised process.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/realrushil/website/internal/adapters/storage"
	"github.com/realrushil/website/internal/adapters/web/server"
	"github.com/realrushil/website/internal/adapters/web/static"
	"github.com/realrushil/website/internal/adapters/web/templates"
	"github.com/realrushil/website/internal/adapters/web/websocket"
	"github.com/realrushil/website/internal/config"
	"github.com/realrushil/website/internal/core/services/ingest"
	"github.com/realrushil/website/internal/core/services/occupancy"
	"github.com/realrushil/website/internal/core/services/probestore"
	"github.com/realrushil/website/internal/core/services/ratelimit"
	"github.com/realrushil/website/internal/core/services/status"
	"github.com/realrushil/website/internal/logging"
	"github.com/realrushil/website/internal/telemetry"
)

// Application holds the core components of the process.
type Application struct {
	Config    *config.Config
	Store     *probestore.Store
	Limiter   *ratelimit.Limiter
	Pipeline  *ingest.Pipeline
	Assembler *status.Assembler
	Hub       *websocket.Hub
	WebServer *server.Server

	supervisor *suture.Supervisor
}

// New creates an Application and bootstraps its components.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}
	if err := app.bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

func (app *Application) bootstrap(ctx context.Context) error {
	telemetry.InitMetrics()
	cfg := app.Config

	repo, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	app.Store = probestore.New(repo, probestore.Options{
		Timeout:    cfg.Store.Timeout,
		HistoryCap: cfg.Store.HistoryCap,
	})

	renderer, err := templates.NewRenderer(cfg.Status.Theme)
	if err != nil {
		_ = app.Store.Close()
		return err
	}

	estimator := occupancy.NewEstimator(cfg.Occupancy.MaxCapacity)
	app.Hub = websocket.NewHub(estimator)
	app.Limiter = ratelimit.New()
	app.Pipeline = ingest.NewPipeline(app.Limiter, app.Store,
		ingest.WithPolicy(ingest.Policy{
			MaxRequests: cfg.Ingest.MaxRequests,
			Window:      cfg.Ingest.Window,
		}),
		ingest.WithNotifier(app.Hub),
		ingest.WithEstimator(estimator),
	)
	app.Assembler = status.NewAssembler(app.Store, estimator, renderer, cfg.Server.Platform)

	app.WebServer = server.NewServer(server.Options{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		TrustProxy:      cfg.Server.TrustProxy,
		StatusRateLimit: cfg.Status.RateLimit,
		StatusWindow:    time.Minute,
		Verbose:         cfg.IsDevelopment(),
	}, app.Pipeline, app.Assembler, app.Hub, static.Site)

	app.supervisor = app.newSupervisor()
	return nil
}

func (app *Application) newSupervisor() *suture.Supervisor {
	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()
	root := suture.New("probe-server", suture.Spec{
		EventHook:        hook,
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   5 * time.Second,
		Timeout:          app.Config.Server.ShutdownTimeout + time.Second,
	})
	root.Add(app.Hub)
	root.Add(ratelimit.NewSweeper(app.Limiter, app.Config.Ingest.SweepInterval))
	root.Add(app.WebServer)
	return root
}

// Run serves until ctx is canceled, then releases the store.
func (app *Application) Run(ctx context.Context) error {
	logging.Info().
		Str("addr", app.Config.Server.Addr()).
		Str("backend", app.Store.Backend()).
		Int("history_cap", app.Store.HistoryCap()).
		Str("theme", app.Config.Status.Theme).
		Msg("probe server starting")

	err := app.supervisor.Serve(ctx)
	switch {
	case ctx.Err() != nil:
		err = nil
	case err == nil:
		err = errors.New("services terminated")
	}

	if cerr := app.Store.Close(); cerr != nil {
		logging.Warn().Err(cerr).Msg("store close failed")
	}
	logging.Info().Msg("probe server stopped")
	if err != nil {
		return fmt.Errorf("supervisor stopped: %w", err)
	}
	return nil
}
