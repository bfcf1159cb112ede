// Package log captures setup flow events.
//
// This package defines the Logger interface and the Event type for
// recording what each setup flow did: discovery records received, forms
// shown, validation errors, entries created and aborts. It is separate
// from operational logging (slog); the event log is a machine-readable
// trace of every flow for support and debugging.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	opts.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	opts.EventLogger, _ = log.NewFileLogger("/var/lib/plugwise-setup/flows.plog")
//
//	// Both: use MultiLogger
//	opts.EventLogger = log.NewMultiLogger(consoleLogger, fileLogger)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys
// (.plog extension). The plugwise-log command views and filters them.
package log
