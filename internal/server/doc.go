// Package server provides HTTP routing, middleware, and the OAuth2 and report handlers of ga4x.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Web Application
//
// [New] wires the routes:
//
//	GET /               → redirect to /analytics
//	GET /auth           → redirect to the Google consent page (offline access, analytics.readonly)
//	GET /oauth2callback → exchange ?code, store credentials for the session, redirect to /analytics
//	GET /analytics      → fetch and render the summary, or redirect to /auth without credentials
//	GET /logout         → forget the session's credentials
//	GET /healthz        → JSON liveness and authentication state
//
// Failed remote calls are logged and answered with a 500 whose body is the error text.
//
// # Sessions
//
// The [Sessions] middleware assigns every browser a uuid in the ga4x_session cookie. Credential
// sets are kept per session in a [CredentialStore]; [MemoryStore] keeps them in process memory
// only, so a restart signs everyone out. Tokens are never refreshed.
//
// # CLI Callback Handler
//
// [OAuthHandler] serves one authorization-code callback for the report command's loopback
// flow. It validates the state parameter, exchanges the code, and sends the result through a
// channel. It only processes one callback to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
