package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/sportsracer/repman/internal/config"
	"github.com/sportsracer/repman/internal/hub"
	servernet "github.com/sportsracer/repman/internal/net"
	"github.com/sportsracer/repman/internal/telemetry"
	"github.com/sportsracer/repman/internal/world"
	"github.com/sportsracer/repman/logging"
	loggingSinks "github.com/sportsracer/repman/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Logger telemetry.Logger
	// EnvFiles are dotenv files read before the environment. Empty means
	// ".env" in the working directory.
	EnvFiles []string
	// Listener overrides the listening socket; used by tests.
	Listener net.Listener
	// Ready, when set, receives the bound address once serving starts.
	Ready func(addr string)
}

// Run serves the game until ctx is cancelled, then shuts the HTTP server,
// the hub and the logging router down in that order.
func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	settings, err := config.Load(cfg.EnvFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	router, err := newRouter(settings)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	counters := telemetry.NewCounters()
	w, err := world.New(settings.World(), world.Deps{Publisher: router})
	if err != nil {
		return fmt.Errorf("failed to construct world: %w", err)
	}
	h := hub.New(w, hub.Config{
		TickInterval: settings.TickInterval,
		Logger:       telemetryLogger,
		Metrics:      counters,
		Publisher:    router,
	})

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		h.Run(hubCtx)
		close(hubDone)
	}()
	defer func() {
		stopHub()
		<-hubDone
	}()

	handler := servernet.NewHTTPHandler(h, servernet.HTTPHandlerConfig{
		Logger:      telemetryLogger,
		Counters:    counters,
		RouterStats: router.Stats,
	})
	srv := &http.Server{
		Addr:              settings.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener := cfg.Listener
	if listener == nil {
		listener, err = net.Listen("tcp", settings.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", settings.Addr, err)
		}
	}
	telemetryLogger.Printf("server listening on %s (tick %s, seed %q)", listener.Addr(), settings.TickInterval, settings.WorldSeed)
	if cfg.Ready != nil {
		cfg.Ready(listener.Addr().String())
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	telemetryLogger.Printf("shutting down")
	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func newRouter(settings config.Config) (*logging.Router, error) {
	logConfig := settings.Logging()
	logConfig.Fields = map[string]any{"seed": settings.WorldSeed}

	var sinks []logging.NamedSink
	if logConfig.HasSink("console") {
		sinks = append(sinks, logging.NamedSink{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout)})
	}
	if logConfig.HasSink("json") {
		file, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open json log %s: %w", logConfig.JSON.FilePath, err)
		}
		sinks = append(sinks, logging.NamedSink{Name: "json", Sink: loggingSinks.NewJSON(file, logConfig.JSON.FlushInterval)})
	}
	return logging.NewRouter(logging.SystemClock{}, logConfig, sinks), nil
}
