// Package server runs the blockflow HTTP API: a Gin engine served over
// HTTP/1.1 and cleartext HTTP/2 (h2c).
//
// Handler-level middleware (server/middleware) applies CORS and a request
// body cap before routing. Engine middleware adds panic recovery, request
// ids, request metrics and request logging. /health and /info come from
// server/endpoint; the workspace routes live in server/api.
//
// Errors are rendered from errors.AppError:
//
//	{"error": {"code": "CAPACITY_EXCEEDED", "kind": "user", "message": "...", "retryable": false}}
package server
