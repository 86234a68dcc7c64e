package analytics

import (
	"context"
	"fmt"

	"github.com/desertthunder/ga4x/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Authenticator builds consent URLs and redeems authorization codes.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// NewOAuthConfig creates the Google [oauth2.Config] for cfg with [ReadOnlyScope].
//
// Empty credential fields are passed through; Google rejects them when the flow runs.
func NewOAuthConfig(cfg shared.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{ReadOnlyScope},
		Endpoint:     endpoints.Google,
	}
}

// GoogleAuthenticator implements [Authenticator] over an [oauth2.Config].
type GoogleAuthenticator struct {
	config *oauth2.Config
}

// NewGoogleAuthenticator wraps config.
func NewGoogleAuthenticator(config *oauth2.Config) *GoogleAuthenticator {
	return &GoogleAuthenticator{config: config}
}

// Config returns the wrapped [oauth2.Config].
func (a *GoogleAuthenticator) Config() *oauth2.Config {
	return a.config
}

// AuthURL returns the consent URL with offline access so Google may issue a refresh token.
//
// An empty state is omitted from the URL.
func (a *GoogleAuthenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange redeems code at the token endpoint. The code is not checked before the call.
func (a *GoogleAuthenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}
