// Package component orders the startup and shutdown of the long-lived
// parts of `blockflow serve`: snapshot storage, telemetry exporters and
// the HTTP server.
//
// Components start in registration order and stop in reverse. A failed
// start stops everything already started before returning.
package component
