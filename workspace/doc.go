// Package workspace is the controller that owns a user's pipeline. It
// keeps one block store per stage and the progress gate, runs every
// operation as one atomic turn under a mutex, and writes each committed
// change through to a storage backend with retries.
//
// Snapshots are JSON: a stage is an array of records
//
//	{"id": "...", "type": "fill_missing", "data": {...},
//	 "position": {"x": 1, "y": 2}, "input": null, "output": "..."}
//
// and progress is a map of step name to completion flag.
package workspace
