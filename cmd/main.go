package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/careportal/internal/bootstrap"
	"github.com/baechuer/careportal/internal/logger"
)

const drainTimeout = 15 * time.Second

// server is satisfied by *http.Server.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

type builder func() (server, func(), error)

// run serves until ctx is cancelled or the listener fails. In-flight requests get
// drainTimeout to finish before connections are closed.
func run(ctx context.Context, build builder, lg zerolog.Logger) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("portal_bootstrap_failed")
		return 1
	}
	defer cleanup()

	listenErr := make(chan error, 1)
	go func() { listenErr <- srv.ListenAndServe() }()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			lg.Error().Err(err).Msg("portal_listener_failed")
			return 1
		}
		return 0
	case <-ctx.Done():
		lg.Info().Msg("portal_draining")
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		lg.Warn().Err(err).Msg("portal_drain_incomplete")
		_ = srv.Close()
	}
	lg.Info().Msg("portal_stopped")
	return 0
}

func fromBootstrap() (server, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Info().Str("addr", srv.Addr).Msg("portal_listening")
	return srv, cleanup, nil
}

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, fromBootstrap, logger.Log)
	stop()
	os.Exit(code)
}
