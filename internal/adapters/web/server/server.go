// Package server assembles the HTTP surface and runs it as a supervised
// service.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/realrushil/website/internal/adapters/web/handlers"
	"github.com/realrushil/website/internal/adapters/web/websocket"
	"github.com/realrushil/website/internal/core/services/ingest"
	"github.com/realrushil/website/internal/core/services/status"
	"github.com/realrushil/website/internal/logging"
)

// Options configures the HTTP surface.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	StatusRateLimit int // per StatusWindow per source, 0 disables
	StatusWindow    time.Duration
	Verbose         bool // expose error details to clients
	TrustProxy      bool // key sources on the last X-Forwarded-For hop
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	opts Options

	ProbeHandler   *handlers.ProbeHandler
	StatusHandler  *handlers.StatusHandler
	HealthHandler  *handlers.HealthHandler
	LandingHandler *handlers.LandingHandler
	Hub            *websocket.Hub

	handler http.Handler
}

// NewServer creates a new web server.
func NewServer(opts Options, pipeline *ingest.Pipeline, assembler *status.Assembler, hub *websocket.Hub, site fs.FS) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.StatusWindow <= 0 {
		opts.StatusWindow = time.Minute
	}

	probe := handlers.NewProbeHandler(pipeline, opts.MaxBodyBytes)
	probe.TrustProxy = opts.TrustProxy
	s := &Server{
		opts:           opts,
		ProbeHandler:   probe,
		StatusHandler:  handlers.NewStatusHandler(assembler, opts.Verbose),
		HealthHandler:  handlers.NewHealthHandler(assembler),
		LandingHandler: handlers.NewLandingHandler(site, probe),
		Hub:            hub,
	}
	s.handler = otelhttp.NewHandler(SetupRoutes(s), "probe-server")
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve listens on the configured address until ctx is done. A listen
// failure stops the whole supervisor tree since restarting cannot fix it.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		logging.Error().Err(err).Str("addr", s.opts.Addr).Msg("web server cannot listen")
		return suture.ErrTerminateSupervisorTree
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln and shuts down gracefully when ctx is done.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", ln.Addr().String()).Msg("web server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logging.Info().Msg("web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *Server) String() string { return "http-server" }
