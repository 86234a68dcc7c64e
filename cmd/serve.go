package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/desertthunder/ga4x/internal/server"
	"github.com/desertthunder/ga4x/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve starts the web application and blocks until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := *r.config
	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		r.logger.Warn("configuration incomplete, sign-in and reports will fail until it is completed", "error", err)
	}

	opts := server.Options{
		Config:        &config,
		Authenticator: r.authenticator,
		Reporter:      r.reports(),
		Logger:        r.logger,
	}

	if config.Database.History {
		repo, db, err := r.openRepository()
		if err != nil {
			r.logger.Warn("report history disabled", "error", err)
		} else {
			defer db.Close()
			opts.Recorder = repo
		}
	}

	router, err := server.New(opts)
	if err != nil {
		return err
	}

	addr := config.Server.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %v", shared.ErrServiceUnavailable, addr, err)
	}

	r.banner("ga4x")
	r.logger.Info("listening", "addr", ln.Addr().String(), "property", config.Analytics.PropertyID)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return r.serve(sigCtx, ln, router)
}

// serve runs handler on ln until ctx ends, then shuts down gracefully.
func (r *Runner) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (r *Runner) banner(name string) {
	r.writePlain("%s\n", figure.NewFigure(name, "cybermedium", true).String())
}
