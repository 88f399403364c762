// Package http exposes the prepared emissions dataset over a JSON API.
//
// Handlers follow a uniform shape: a struct holding its service interface,
// a component-scoped slog logger and the shared RFC 7807 error handler, plus
// a Routes method returning a chi.Router. The server composes these routers
// under /api.
package http
