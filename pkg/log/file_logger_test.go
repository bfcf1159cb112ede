package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func sampleEvent(flowID string, cat Category) Event {
	e := Event{
		Timestamp: time.Now(),
		FlowID:    flowID,
		Domain:    "plugwise",
		Source:    "zeroconf",
		StepID:    "user",
		Category:  cat,
		UniqueID:  "smile123abc",
		Host:      "192.168.1.20",
	}
	switch cat {
	case CategoryForm:
		e.Form = &FormEvent{Fields: []string{"password"}, Errors: map[string]string{"base": "invalid_auth"}}
	case CategoryAbort:
		e.Abort = &AbortEvent{Reason: "already_configured"}
	case CategoryEntry:
		e.Entry = &EntryEvent{EntryID: "e1", Title: "Smile Anna"}
	}
	return e
}

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "flows"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.plog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(sampleEvent("flow-1", CategoryForm))
	logger.Log(sampleEvent("flow-1", CategoryEntry))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	first, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if first.Form == nil || first.Form.Errors["base"] != "invalid_auth" {
		t.Errorf("Form = %+v, want base error invalid_auth", first.Form)
	}

	second, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if second.Entry == nil || second.Entry.Title != "Smile Anna" {
		t.Errorf("Entry = %+v, want title Smile Anna", second.Entry)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next after last event = %v, want io.EOF", err)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.plog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(sampleEvent("flow", CategoryForm))
		logger.Close()
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

func TestFileLoggerLogAfterClose(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "flows.plog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	// Must not panic.
	logger.Log(sampleEvent("flow", CategoryAbort))
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.plog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Log(sampleEvent("flow", CategoryForm))
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if logger.Errors() != 0 {
		t.Errorf("Errors() = %d, want 0", logger.Errors())
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		count++
	}
	if count != 100 {
		t.Errorf("read %d events, want 100", count)
	}
}
