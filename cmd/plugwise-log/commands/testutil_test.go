package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/plugwise-go/plugwise-setup/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+log.FileExtension)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sampleFlow returns the events of a zeroconf flow that fails once
// with invalid_auth and then creates an entry.
func sampleFlow() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	base := log.Event{
		FlowID:   "f1a2b3c4-0000-0000-0000-000000000001",
		Domain:   "plugwise",
		Source:   "zeroconf",
		StepID:   "user",
		UniqueID: "smile123abc",
		Host:     "1.1.1.1",
	}

	at := func(offset time.Duration, ev log.Event) log.Event {
		ev.Timestamp = ts.Add(offset)
		ev.FlowID = base.FlowID
		ev.Domain = base.Domain
		ev.Source = base.Source
		ev.StepID = base.StepID
		ev.UniqueID = base.UniqueID
		ev.Host = base.Host
		return ev
	}

	return []log.Event{
		at(0, log.Event{
			Category:  log.CategoryDiscovery,
			Discovery: &log.DiscoveryEvent{Hostname: "smile123abc.local.", Port: 80, Title: "Smile Anna v4.0.15"},
		}),
		at(time.Millisecond, log.Event{
			Category: log.CategoryForm,
			Form:     &log.FormEvent{Fields: []string{"password"}},
		}),
		at(5*time.Second, log.Event{
			Category: log.CategoryError,
			Error:    &log.ErrorEvent{Code: "invalid_auth", Message: "invalid authentication"},
		}),
		at(5*time.Second, log.Event{
			Category: log.CategoryForm,
			Form:     &log.FormEvent{Fields: []string{"password"}, Errors: map[string]string{"base": "invalid_auth"}},
		}),
		at(12*time.Second, log.Event{
			Category: log.CategoryEntry,
			Entry:    &log.EntryEvent{EntryID: "e-1", Title: "Smile Anna"},
		}),
	}
}
