package log

// Logger receives flow events.
// Pass nil or NoopLogger to disable logging.
type Logger interface {
	// Log records a flow event. Implementations must be thread-safe
	// and must not block the flow for long.
	Log(event Event)
}

// NoopLogger discards all events. Use when logging is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
