package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/models"
	"github.com/desertthunder/ga4x/internal/web"
)

// SnapshotRecorder persists report summaries. [repositories.SnapshotRepository] implements it.
type SnapshotRecorder interface {
	Create(snapshot *models.Snapshot) error
}

// AuthHandler redirects the browser to the Google consent page.
type AuthHandler struct {
	auth analytics.Authenticator
}

// NewAuthHandler creates an [AuthHandler].
func NewAuthHandler(auth analytics.Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Routes() []string { return []string{RouteAuth} }

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.auth.AuthURL(""), http.StatusFound)
}

// CallbackHandler redeems the authorization code and stores the credential set for the session.
type CallbackHandler struct {
	auth   analytics.Authenticator
	store  CredentialStore
	logger *log.Logger
}

// NewCallbackHandler creates a [CallbackHandler].
func NewCallbackHandler(auth analytics.Authenticator, store CredentialStore, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{auth: auth, store: store, logger: logger}
}

func (h *CallbackHandler) Routes() []string { return []string{RouteCallback} }

// ServeHTTP exchanges the code query parameter as-is; a missing code is left for the provider to reject.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r.Context())
	code := r.URL.Query().Get("code")

	token, err := h.auth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "session", sessionID, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.store.Put(sessionID, token)
	h.logger.Info("credentials stored", "session", sessionID, "refresh_token", token.RefreshToken != "", "expiry", token.Expiry)

	http.Redirect(w, r, RouteAnalytics, http.StatusFound)
}

// AnalyticsHandler fetches the report for the session's credentials and renders the summary.
type AnalyticsHandler struct {
	store    CredentialStore
	reporter analytics.Reporter
	request  analytics.ReportRequest
	renderer *web.Renderer
	recorder SnapshotRecorder
	logger   *log.Logger
}

// NewAnalyticsHandler creates an [AnalyticsHandler]. recorder may be nil to disable history.
func NewAnalyticsHandler(
	store CredentialStore,
	reporter analytics.Reporter,
	request analytics.ReportRequest,
	renderer *web.Renderer,
	recorder SnapshotRecorder,
	logger *log.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		store:    store,
		reporter: reporter,
		request:  request,
		renderer: renderer,
		recorder: recorder,
		logger:   logger,
	}
}

func (h *AnalyticsHandler) Routes() []string { return []string{RouteAnalytics} }

func (h *AnalyticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r.Context())

	token, ok := h.store.Get(sessionID)
	if !ok {
		http.Redirect(w, r, RouteAuth, http.StatusFound)
		return
	}

	report, err := h.reporter.RunReport(r.Context(), token, h.request)
	if err != nil {
		h.logger.Error("report fetch failed", "session", sessionID, "property", h.request.PropertyID, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary := analytics.Summarize(report, h.request)
	h.record(summary)

	page := web.AnalyticsPage{
		Data:      summary,
		Property:  analytics.PropertyResource(h.request.PropertyID),
		StartDate: h.request.StartDate,
		EndDate:   h.request.EndDate,
	}
	if err := h.renderer.Analytics(w, page); err != nil {
		h.logger.Error("render failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// record saves summary when history is enabled. Failures never reach the response.
func (h *AnalyticsHandler) record(summary analytics.Summary) {
	if h.recorder == nil {
		return
	}
	snapshot := models.NewSnapshot(h.request, summary, models.SourceWeb)
	if err := h.recorder.Create(snapshot); err != nil {
		h.logger.Warn("failed to record snapshot", "err", err)
		return
	}
	h.logger.Debug("snapshot recorded", "id", snapshot.ID())
}

// LogoutHandler forgets the session's credentials.
type LogoutHandler struct {
	store CredentialStore
}

// NewLogoutHandler creates a [LogoutHandler].
func NewLogoutHandler(store CredentialStore) *LogoutHandler {
	return &LogoutHandler{store: store}
}

func (h *LogoutHandler) Routes() []string { return []string{RouteLogout} }

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(SessionID(r.Context()))
	http.Redirect(w, r, RouteAuth, http.StatusFound)
}

// HealthHandler reports liveness and whether the session holds credentials.
type HealthHandler struct {
	store CredentialStore
}

// NewHealthHandler creates a [HealthHandler].
func NewHealthHandler(store CredentialStore) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Routes() []string { return []string{RouteHealth} }

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, authenticated := h.store.Get(SessionID(r.Context()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"authenticated": authenticated,
	})
}

// redirectHandler sends every request on its routes to target.
type redirectHandler struct {
	routes []string
	target string
}

func (h *redirectHandler) Routes() []string { return h.routes }

func (h *redirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.target, http.StatusFound)
}
