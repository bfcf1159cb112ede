package log

import (
	"context"
	"log/slog"
	"sort"
)

// SlogAdapter writes flow events to an slog.Logger.
// Useful for development when you want to see flow events in console.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates a SlogAdapter logging at Debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy that logs at the given level.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("flow_id", event.FlowID),
		slog.String("category", event.Category.String()),
	}

	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}
	if event.StepID != "" {
		attrs = append(attrs, slog.String("step", event.StepID))
	}
	if event.UniqueID != "" {
		attrs = append(attrs, slog.String("unique_id", event.UniqueID))
	}
	if event.Host != "" {
		attrs = append(attrs, slog.String("host", event.Host))
	}

	switch {
	case event.Discovery != nil:
		attrs = append(attrs,
			slog.String("hostname", event.Discovery.Hostname),
			slog.Int("port", event.Discovery.Port),
			slog.String("title", event.Discovery.Title),
		)
	case event.Form != nil:
		attrs = append(attrs, slog.Any("fields", event.Form.Fields))
		if len(event.Form.Errors) > 0 {
			keys := make([]string, 0, len(event.Form.Errors))
			for k := range event.Form.Errors {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				attrs = append(attrs, slog.String("error_"+k, event.Form.Errors[k]))
			}
		}
	case event.Entry != nil:
		attrs = append(attrs,
			slog.String("entry_id", event.Entry.EntryID),
			slog.String("title", event.Entry.Title),
		)
	case event.Abort != nil:
		attrs = append(attrs, slog.String("reason", event.Abort.Reason))
	case event.Error != nil:
		attrs = append(attrs, slog.String("code", event.Error.Code))
		if event.Error.Message != "" {
			attrs = append(attrs, slog.String("error", event.Error.Message))
		}
	}

	a.logger.LogAttrs(context.Background(), a.level, "flow", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
