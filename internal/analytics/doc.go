// Package analytics talks to Google: the OAuth2 authorization-code grant and the GA4 Data API.
//
// # Authorization
//
// [NewOAuthConfig] builds an [oauth2.Config] for the Google endpoints with the single
// [ReadOnlyScope]. [GoogleAuthenticator] wraps it to build consent URLs (always requesting
// offline access) and to exchange authorization codes.
//
// # Reports
//
// [DataClient] issues properties/{id}:runReport requests. Each call wraps the caller's token in a
// static token source, so an expired token fails the request instead of being refreshed.
//
// A [Report] mirrors the response shape: ordered metric headers and rows whose metric values are
// aligned to those headers. [Summarize] reads the first row by header position and defaults every
// absent value to "0".
//
// # Errors
//
// Non-2xx responses decode into [APIError], which wraps [shared.ErrAPIRequest] and matches
// [ErrForbidden] or [ErrPropertyNotFound] with [errors.Is].
package analytics
