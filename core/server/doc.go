// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key required by the auth
// middleware, whether the prometheus endpoint is exposed and how long graceful
// shutdown may wait for in-flight reconciliation requests.
package server
