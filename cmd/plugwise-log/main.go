// Command plugwise-log is a tool for viewing and analyzing setup flow logs.
//
// Log files are written by plugwise-setup when a state directory or the
// -event-log flag is given.
//
// Usage:
//
//	plugwise-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	plugwise-log view events.plog
//
//	# View only failed validation attempts
//	plugwise-log view --category error events.plog
//
//	# Export to CSV
//	plugwise-log export --format csv -o flows.csv events.plog
//
//	# Keep only the flows of one gateway
//	plugwise-log filter --unique-id smile123abc -o anna.plog events.plog
//
//	# Show statistics
//	plugwise-log stats events.plog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plugwise-go/plugwise-setup/cmd/plugwise-log/commands"
)

const usage = `plugwise-log - Plugwise Setup Flow Log Analyzer

Usage:
  plugwise-log <command> [flags] <file.plog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "plugwise-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set whose usage prints the command synopsis.
func newFlagSet(name, synopsis, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "plugwise-log %s - %s\n\nUsage:\n  plugwise-log %s %s\n\nFlags:\n", name, synopsis, name, args)
		fs.PrintDefaults()
	}
	return fs
}

// logPath parses args and returns the single log file argument.
func logPath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View log file in human-readable format", "[flags] <file.plog>")
	source := fs.String("source", "", "Filter by flow source (user, zeroconf)")
	category := fs.String("category", "", "Filter by category (discovery, form, error, entry, abort)")
	path := logPath(fs, args)

	var filter commands.ViewFilter
	if *source != "" {
		s, err := commands.ParseSourceFlag(*source)
		if err != nil {
			fail(err)
		}
		filter.Source = s
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export log file to JSON or CSV format", "[flags] <file.plog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := logPath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter log file and write to new file", "[flags] <file.plog>")
	output := fs.String("o", "", "Output file (required)")
	flowID := fs.String("flow-id", "", "Filter by flow ID")
	uniqueID := fs.String("unique-id", "", "Filter by gateway unique ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	source := fs.String("source", "", "Filter by flow source (user, zeroconf)")
	category := fs.String("category", "", "Filter by category (discovery, form, error, entry, abort)")
	path := logPath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		FlowID:    *flowID,
		UniqueID:  *uniqueID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Source:    *source,
		Category:  *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the log file", "<file.plog>")
	path := logPath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
