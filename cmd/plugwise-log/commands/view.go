// Package commands implements the plugwise-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/plugwise-go/plugwise-setup/pkg/log"
)

const timestampFormat = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Source   string
	Category *log.Category
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [flow:id] SOURCE CATEGORY step
	ts := event.Timestamp.UTC().Format(timestampFormat)
	source := strings.ToUpper(event.Source)
	if source == "" {
		source = "-"
	}

	fmt.Fprintf(w, "%s [flow:%s] %-8s %-9s %s\n", ts, shortenFlowID(event.FlowID), source, event.Category.String(), event.StepID)

	if event.UniqueID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.UniqueID)
	}
	if event.Host != "" {
		fmt.Fprintf(w, "  Host: %s\n", event.Host)
	}

	switch {
	case event.Discovery != nil:
		formatDiscoveryDetails(w, event.Discovery)
	case event.Form != nil:
		formatFormDetails(w, event.Form)
	case event.Entry != nil:
		fmt.Fprintf(w, "  Entry: %s %q\n", event.Entry.EntryID, event.Entry.Title)
	case event.Abort != nil:
		fmt.Fprintf(w, "  Reason: %s\n", event.Abort.Reason)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenFlowID returns the first 8 characters of the flow ID.
func shortenFlowID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatDiscoveryDetails(w io.Writer, d *log.DiscoveryEvent) {
	fmt.Fprintf(w, "  Hostname: %s", d.Hostname)
	if d.Port != 0 {
		fmt.Fprintf(w, "  Port: %d", d.Port)
	}
	fmt.Fprintln(w)
	if d.Title != "" {
		fmt.Fprintf(w, "  Title: %s\n", d.Title)
	}
}

func formatFormDetails(w io.Writer, f *log.FormEvent) {
	fmt.Fprintf(w, "  Fields: %s\n", strings.Join(f.Fields, ", "))
	if len(f.Errors) > 0 {
		fmt.Fprintf(w, "  Errors: %s\n", formatErrors(f.Errors))
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEvent) {
	fmt.Fprintf(w, "  Code: %s\n", e.Code)
	if e.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", e.Message)
	}
}

// formatErrors renders a form error map as sorted key=code pairs.
func formatErrors(errs map[string]string) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + errs[k]
	}
	return strings.Join(pairs, ", ")
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	c, ok := log.ParseCategory(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be discovery, form, error, entry, or abort)", s)
	}
	return c, nil
}

// ParseSourceFlag validates a flow source from command-line flag (case-insensitive).
func ParseSourceFlag(s string) (string, error) {
	return parseSource(s)
}

func parseSource(s string) (string, error) {
	switch strings.ToLower(s) {
	case "user":
		return "user", nil
	case "zeroconf":
		return "zeroconf", nil
	default:
		return "", fmt.Errorf("invalid source: %s (must be user or zeroconf)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, log.Filter{
		Source:   filter.Source,
		Category: filter.Category,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
