// Package storage defines the snapshot store used to persist canvases and
// progress, the key layout, and a factory registry for backends.
//
// Backends live in sub-packages and register themselves on import:
//
//	import _ "github.com/kbukum/blockflow/storage/local"
//
//	store, err := storage.New(cfg, log)
//
// Available backends: memory (process-local), local (one JSON file per key,
// written atomically) and redis.
package storage
