// Package logger provides structured logging for blockflow using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("workspace")
//	log.Info("block added", logger.Fields(logger.FieldStage, "training"))
package logger
