package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(logger).Log(sampleEvent("flow-9", CategoryForm))

	out := buf.String()
	for _, want := range []string{"flow_id=flow-9", "category=FORM", "error_base=invalid_auth", "unique_id=smile123abc"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestSlogAdapterLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewSlogAdapter(logger).Log(sampleEvent("flow-1", CategoryAbort))
	if buf.Len() != 0 {
		t.Errorf("debug event should be filtered at info level, got %q", buf.String())
	}

	NewSlogAdapter(logger).WithLevel(slog.LevelInfo).Log(sampleEvent("flow-1", CategoryAbort))
	if !strings.Contains(buf.String(), "reason=already_configured") {
		t.Errorf("output %q missing abort reason", buf.String())
	}
}

type recordingLogger struct{ events []Event }

func (r *recordingLogger) Log(e Event) { r.events = append(r.events, e) }

func TestMultiLogger(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, nil, b)

	m.Log(sampleEvent("flow", CategoryEntry))

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events = %d, %d; want 1, 1", len(a.events), len(b.events))
	}
}
