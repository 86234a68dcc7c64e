package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/shared"
	"golang.org/x/oauth2"
)

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves a single authorization-code callback for the CLI loopback flow.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	auth        analytics.Authenticator
	path        string
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a new OAuth handler answering on path with the given state token.
// The state token should be cryptographically random for CSRF protection.
func NewOAuthHandler(auth analytics.Authenticator, path, state string) *OAuthHandler {
	if path == "" {
		path = RouteCallback
	}
	return &OAuthHandler{
		auth:       auth,
		path:       path,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// CallbackPath returns the path component of redirectURI, defaulting to [RouteCallback].
func CallbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" || u.Path == "/" {
		return RouteCallback
	}
	return u.Path
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates state parameter, exchanges authorization code for tokens, and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if errParam := query.Get("error"); errParam != "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, query.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		h.Send(OAuthResult{err: err})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>ga4x: signed in</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh;">
    <h1>Signed in to Google Analytics</h1>
    <p>You can close this window and return to the terminal.</p>
</body>
</html>
`)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// Wait blocks until the callback completes or ctx ends, returning [shared.ErrTimeout] in the latter case.
func (h *OAuthHandler) Wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case result := <-h.resultChan:
		if err := result.Error(); err != nil {
			return nil, err
		}
		return result.Token, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for OAuth callback: %v", shared.ErrTimeout, ctx.Err())
	}
}
