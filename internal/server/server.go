// package server contains middleware & handlers for the analytics report web service
package server

import (
	"net/http"
)

// Route paths served by the web application.
const (
	RouteRoot      = "/{$}"
	RouteAuth      = "/auth"
	RouteCallback  = "/oauth2callback"
	RouteAnalytics = "/analytics"
	RouteLogout    = "/logout"
	RouteHealth    = "/healthz"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, session tracking, panic recovery and security headers.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the report service.
// Implementations handle specific endpoints (auth, callback, analytics).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}
