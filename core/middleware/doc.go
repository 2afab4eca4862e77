// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation and caller user id extraction (X-User-ID), used to
//     stamp component history entries.
//   - rayid: a unique request id (RayID) per request, stored in the context and
//     echoed in the response headers for tracing.
package middleware
