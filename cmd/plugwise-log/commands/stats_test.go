package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/plugwise-go/plugwise-setup/pkg/log"
)

func TestStatsSummarizesFlow(t *testing.T) {
	path := createTestLogFile(t, sampleFlow())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 5",
		"Entries Created: 1",
		"FORM:",
		"zeroconf:",
		"invalid_auth:",
		"Flows: 1",
		"[f1a2b3c4] zeroconf, 5 events, 2 attempts, duration 12s",
		"Device: smile123abc",
		"Outcome: entry Smile Anna",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestStatsCountsAborts(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, FlowID: "a", Source: "zeroconf", Category: log.CategoryAbort, Abort: &log.AbortEvent{Reason: "already_configured"}},
		{Timestamp: ts, FlowID: "b", Source: "zeroconf", Category: log.CategoryAbort, Abort: &log.AbortEvent{Reason: "already_configured"}},
		{Timestamp: ts, FlowID: "c", Source: "user", Category: log.CategoryForm, Form: &log.FormEvent{Fields: []string{"host"}}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "already_configured:") {
		t.Errorf("expected abort reason in output:\n%s", output)
	}
	if !strings.Contains(output, "Outcome: in progress") {
		t.Errorf("expected pending flow in output:\n%s", output)
	}
	if !strings.Contains(output, "Flows: 3") {
		t.Errorf("expected 3 flows in output:\n%s", output)
	}
}

func TestStatsEmptyLog(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
