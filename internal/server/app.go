package server

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/shared"
	"github.com/desertthunder/ga4x/internal/web"
)

// Options holds the collaborators of the web application. Nil fields are built from Config.
type Options struct {
	Config        *shared.Config
	Authenticator analytics.Authenticator
	Reporter      analytics.Reporter
	Store         CredentialStore
	Recorder      SnapshotRecorder
	Renderer      *web.Renderer
	Logger        *log.Logger
}

// New assembles the router with middleware and every route of the web application.
func New(opts Options) (*BasicRouter, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Authenticator == nil {
		opts.Authenticator = analytics.NewGoogleAuthenticator(analytics.NewOAuthConfig(opts.Config.Credentials.Google))
	}
	if opts.Reporter == nil {
		opts.Reporter = analytics.NewDataClient("", nil)
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Renderer == nil {
		renderer, err := web.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		opts.Renderer = renderer
	}

	logger := shared.WithLogger(opts.Logger, "component", "http")
	request := analytics.NewReportRequest(opts.Config.Analytics)
	secure := strings.HasPrefix(opts.Config.Credentials.Google.RedirectURI, "https://")

	router := NewBasicRouter()
	router.Use(RequestLogger(logger), Recoverer(logger), FrameSecurity, Sessions(secure))

	router.Get(NewAuthHandler(opts.Authenticator))
	router.Get(NewCallbackHandler(opts.Authenticator, opts.Store, logger))
	router.Get(NewAnalyticsHandler(opts.Store, opts.Reporter, request, opts.Renderer, opts.Recorder, logger))
	router.Get(NewLogoutHandler(opts.Store))
	router.Get(NewHealthHandler(opts.Store))
	router.Get(&redirectHandler{routes: []string{RouteRoot}, target: RouteAnalytics})

	return router, nil
}
