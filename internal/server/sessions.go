package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/desertthunder/ga4x/internal/shared"
	"golang.org/x/oauth2"
)

// SessionCookie names the cookie carrying the session identifier.
const SessionCookie = "ga4x_session"

type sessionKey struct{}

// CredentialStore holds OAuth2 credential sets keyed by session identifier.
//
// Stores live in process memory only; nothing survives a restart.
type CredentialStore interface {
	Get(sessionID string) (*oauth2.Token, bool)
	Put(sessionID string, token *oauth2.Token)
	Delete(sessionID string)
}

// MemoryStore is a mutex-guarded [CredentialStore]. The last Put for a session wins.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]*oauth2.Token)}
}

// Get returns the credential set for sessionID. Expiry is not checked.
func (s *MemoryStore) Get(sessionID string) (*oauth2.Token, bool) {
	if sessionID == "" {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[sessionID]
	return token, ok
}

// Put overwrites the credential set for sessionID.
func (s *MemoryStore) Put(sessionID string, token *oauth2.Token) {
	if sessionID == "" || token == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
}

// Delete forgets the credential set for sessionID.
func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
}

// Len returns the number of stored credential sets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// SessionID returns the session identifier attached by [Sessions], or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// WithSessionID returns a copy of ctx carrying id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// Sessions attaches a session identifier to every request, issuing a cookie when the request has none.
func Sessions(secure bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookie); err == nil && shared.IsID(c.Value) {
				id = c.Value
			}

			if id == "" {
				id = shared.GenerateID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}
