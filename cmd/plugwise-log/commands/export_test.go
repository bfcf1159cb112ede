package commands

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleFlow())
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var obj map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line %d is not JSON: %v", lines+1, err)
		}
		if obj["FlowID"] != "f1a2b3c4-0000-0000-0000-000000000001" {
			t.Errorf("line %d: unexpected FlowID %v", lines+1, obj["FlowID"])
		}
		lines++
	}
	if lines != len(sampleFlow()) {
		t.Errorf("expected %d lines, got %d", len(sampleFlow()), lines)
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, sampleFlow())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != len(sampleFlow())+1 {
		t.Fatalf("expected %d rows, got %d", len(sampleFlow())+1, len(records))
	}
	if strings.Join(records[0], ",") != "timestamp,flow_id,source,category,step,unique_id,host,detail" {
		t.Errorf("unexpected header: %v", records[0])
	}

	errRow := records[3]
	if errRow[3] != "ERROR" || errRow[7] != "invalid_auth" {
		t.Errorf("unexpected error row: %v", errRow)
	}
	entryRow := records[5]
	if entryRow[3] != "ENTRY" || entryRow[7] != "Smile Anna" {
		t.Errorf("unexpected entry row: %v", entryRow)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, sampleFlow())
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for unknown format")
	}
}
