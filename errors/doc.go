// Package errors provides unified error handling for blockflow.
// Every failure carries a machine-readable code, a kind that separates
// recoverable user rejections from structural invariant breaches, and an
// HTTP status mapping used by the API layer (RFC 7807-style bodies).
package errors
