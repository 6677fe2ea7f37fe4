// Package logger wraps log/slog with a small set of attribute helpers
// (RequestID, TraceID, Component, Event, Duration, Error, ...) so every
// component in this module logs with consistent keys.
//
// Typical use:
//
//	log := logger.New(logger.WithDevelopment())
//	log.Info("invocation complete", logger.RequestID(id), logger.Elapsed(start))
//
// In a container, prefer logger.New(logger.WithProduction()) for structured
// JSON output, or read LogLevel from config.Config and pass it via
// logger.WithLevel.
package logger
