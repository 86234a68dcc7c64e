package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/formatter"
	"github.com/desertthunder/ga4x/internal/models"
	"github.com/desertthunder/ga4x/internal/server"
	"github.com/desertthunder/ga4x/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Report signs in through a loopback callback, fetches the summary once and prints it.
//
// The token lives only for the duration of the command.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if err := formatter.Supported(format); err != nil {
		return err
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	addr, err := loopbackAddress(r.config.Credentials.Google.RedirectURI)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: listen for OAuth callback on %s: %v", shared.ErrServiceUnavailable, addr, err)
	}

	token, err := r.authorize(ctx, ln, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	return r.printReport(ctx, token, format, cmd.Bool("save"))
}

// authorize serves the OAuth callback on ln and waits for one authorization-code exchange.
// ln is closed before returning.
func (r *Runner) authorize(ctx context.Context, ln net.Listener, openBrowser bool) (*oauth2.Token, error) {
	auth := r.auth()
	state := shared.GenerateID()
	handler := server.NewOAuthHandler(auth, server.CallbackPath(r.config.Credentials.Google.RedirectURI), state)

	router := server.NewBasicRouter()
	router.Handler(handler)

	waitCtx, cancel := context.WithTimeout(ctx, r.authTimeout)
	defer cancel()

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		r.logger.Debug("starting OAuth callback server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("OAuth callback server failed", "error", err)
			cancel()
		}
	}()
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := auth.AuthURL(state)
	if openBrowser {
		r.writePlain("→ Opening browser for Google sign-in...\n")
		if err := r.browser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlain("⚠ Could not open browser automatically.\n")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	} else {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", r.authTimeout)

	token, err := handler.Wait(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	r.writePlain("✓ Authorization successful\n\n")
	return token, nil
}

// printReport fetches the summary with token, writes it in format and optionally records it.
func (r *Runner) printReport(ctx context.Context, token *oauth2.Token, format string, save bool) error {
	req := analytics.NewReportRequest(r.config.Analytics)

	report, err := r.reports().RunReport(ctx, token, req)
	if err != nil {
		return err
	}
	summary := analytics.Summarize(report, req)

	data, err := formatter.Format(formatter.Report{Request: req, Summary: summary}, format)
	if err != nil {
		return err
	}
	if err := r.writeBytes(data); err != nil {
		return err
	}

	if !save {
		return nil
	}

	repo, db, err := r.openRepository()
	if err != nil {
		return fmt.Errorf("failed to open report history: %w", err)
	}
	defer db.Close()

	snapshot := models.NewSnapshot(req, summary, models.SourceCLI)
	if err := repo.Create(snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	r.logger.Info("snapshot saved", "id", snapshot.ID())
	return nil
}

// loopbackAddress returns the host:port the redirect URI points at.
func loopbackAddress(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: redirect_uri %q has no host", shared.ErrInvalidConfig, redirectURI)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
