// Package block holds placed block instances and the per-stage Store that
// links them into singly-linked chains.
//
// Every Store mutation is all-or-nothing: a rejected Add, Remove, Connect,
// Disconnect, Move or SetData returns a user-facing *errors.AppError and
// leaves the store exactly as it was. CheckIntegrity validates instance sets
// that arrive from outside the Store, such as persisted snapshots.
package block
