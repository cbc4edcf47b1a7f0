// Package api exposes workspaces over HTTP under /api/v1/workspaces/:ws.
// Blocks and chains are rendered in their snapshot record form, the same
// shape persisted by the storage backends.
package api
