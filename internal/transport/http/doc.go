// Package http provides the HTTP transport layer for the gateway.
//
// Handlers are thin: they decode the request, delegate to the services
// layer, and encode the response. Each handler owns a chi sub-router
// exposed through its Routes method, which the application mounts under
// the API prefix. Errors are rendered as RFC 7807 problem documents by
// the shared error handler.
package http
