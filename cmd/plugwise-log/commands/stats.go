package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/plugwise-go/plugwise-setup/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsBySource   map[string]int
	ErrorCodes       map[string]int
	AbortReasons     map[string]int
	Flows            map[string]*FlowStats
	EntriesCreated   int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// FlowStats holds statistics for a single flow.
type FlowStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Source    string
	UniqueID  string
	Attempts  int
	Outcome   string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsBySource:   make(map[string]int),
		ErrorCodes:       make(map[string]int),
		AbortReasons:     make(map[string]int),
		Flows:            make(map[string]*FlowStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++
	if event.Source != "" {
		s.EventsBySource[event.Source]++
	}

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	flow, ok := s.Flows[event.FlowID]
	if !ok {
		flow = &FlowStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
			Source:    event.Source,
			Outcome:   "in progress",
		}
		s.Flows[event.FlowID] = flow
	}
	flow.Events++
	if event.Timestamp.After(flow.LastSeen) {
		flow.LastSeen = event.Timestamp
	}
	if event.UniqueID != "" {
		flow.UniqueID = event.UniqueID
	}

	switch {
	case event.Error != nil:
		s.ErrorCodes[event.Error.Code]++
		flow.Attempts++
	case event.Entry != nil:
		s.EntriesCreated++
		flow.Attempts++
		flow.Outcome = "entry " + event.Entry.Title
	case event.Abort != nil:
		s.AbortReasons[event.Abort.Reason]++
		flow.Outcome = "aborted: " + event.Abort.Reason
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Plugwise Setup Flow Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Entries Created: %d\n", stats.EntriesCreated)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryDiscovery, log.CategoryForm, log.CategoryError, log.CategoryEntry, log.CategoryAbort} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	printCounts(w, "Events by Source:", stats.EventsBySource)
	printCounts(w, "Error Codes:", stats.ErrorCodes)
	printCounts(w, "Abort Reasons:", stats.AbortReasons)

	fmt.Fprintf(w, "Flows: %d\n", len(stats.Flows))
	if len(stats.Flows) == 0 {
		return
	}

	type flowInfo struct {
		id    string
		stats *FlowStats
	}
	flows := make([]flowInfo, 0, len(stats.Flows))
	for id, fs := range stats.Flows {
		flows = append(flows, flowInfo{id, fs})
	}
	sort.Slice(flows, func(i, j int) bool {
		return flows[i].stats.FirstSeen.Before(flows[j].stats.FirstSeen)
	})

	fmt.Fprintln(w)
	for _, f := range flows {
		duration := f.stats.LastSeen.Sub(f.stats.FirstSeen).Round(time.Millisecond)
		fmt.Fprintf(w, "  [%s] %s, %d events, %d attempts, duration %s\n",
			shortenFlowID(f.id), f.stats.Source, f.stats.Events, f.stats.Attempts, duration)
		if f.stats.UniqueID != "" {
			fmt.Fprintf(w, "           Device: %s\n", f.stats.UniqueID)
		}
		fmt.Fprintf(w, "           Outcome: %s\n", f.stats.Outcome)
	}
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-20s %d\n", k+":", counts[k])
	}
	fmt.Fprintln(w)
}
