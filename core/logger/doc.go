// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports development and production
// encodings and integrates with the Fiber web framework.
//
// # Context Awareness
//
// The WithRayID helper extracts the request id stored by the rayid middleware from a
// Fiber context and attaches it to the log entry, so every line written while serving
// one request (including the reconciliation run it triggers) can be correlated.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
