// Package interactive provides the interactive command-line interface
// for plugwise-setup.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/plugwise-go/plugwise-setup/pkg/discovery"
	"github.com/plugwise-go/plugwise-setup/pkg/entry"
	"github.com/plugwise-go/plugwise-setup/pkg/flow"
)

const prompt = "plugwise> "

// FlowHost runs setup flows. *flow.Manager implements it.
type FlowHost interface {
	Init(ctx context.Context, source flow.Source, info *discovery.ServiceInfo) (flow.Result, error)
	Configure(ctx context.Context, flowID string, raw map[string]any) (flow.Result, error)
	Abort(flowID string) error
	InProgress() []flow.FlowInfo
}

// EntryStore lists and removes config entries. *entry.Registry implements it.
type EntryStore interface {
	Entries(domain string) []*entry.Entry
	Remove(entryID string) error
}

// Finder performs one-shot gateway discovery. discovery.Browser implements it.
type Finder interface {
	FindAll(ctx context.Context) ([]*discovery.ServiceInfo, error)
}

// Shell handles interactive mode for plugwise-setup.
type Shell struct {
	flows   FlowHost
	entries EntryStore
	finder  Finder

	rl  *readline.Instance
	in  prompter
	out io.Writer

	// runMu serializes flow interaction between the prompt and
	// gateways announced in the background.
	runMu sync.Mutex

	mu        sync.Mutex
	forms     map[string]flow.Result
	found     []*discovery.ServiceInfo
	pending   []string
	announced []*discovery.ServiceInfo
}

// New creates an interactive shell. finder may be nil when discovery
// is disabled.
func New(flows FlowHost, entries EntryStore, finder Finder) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(flows, entries, finder, readlinePrompter{rl}, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(flows FlowHost, entries EntryStore, finder Finder, in prompter, out io.Writer) *Shell {
	return &Shell{
		flows:   flows,
		entries: entries,
		finder:  finder,
		in:      in,
		out:     out,
		forms:   make(map[string]flow.Result),
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.rl.SetPrompt(prompt)
		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Exec(ctx, line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns false when the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "setup", "add":
		s.cmdSetup(ctx, args)

	case "discover", "scan":
		s.cmdDiscover(ctx)

	case "flows":
		s.cmdFlows()

	case "continue", "c":
		s.cmdContinue(ctx, args)

	case "abort":
		s.cmdAbort(args)

	case "entries", "list", "ls":
		s.cmdEntries()

	case "remove", "rm":
		s.cmdRemove(args)

	case "quit", "exit", "q":
		return false

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

// Announce queues a gateway found in the background. It never waits
// for the prompt: the zeroconf flow starts right away when the shell
// is idle, otherwise as soon as the current command finishes.
func (s *Shell) Announce(ctx context.Context, info *discovery.ServiceInfo) {
	s.mu.Lock()
	s.announced = append(s.announced, info)
	s.mu.Unlock()

	s.flushAnnounced(ctx)
}

// flushAnnounced starts flows for queued gateways unless another
// caller holds runMu, in which case that caller flushes on release.
func (s *Shell) flushAnnounced(ctx context.Context) {
	for {
		if !s.runMu.TryLock() {
			return
		}
		for {
			info := s.nextAnnounced()
			if info == nil {
				break
			}
			s.startDiscovered(ctx, info)
		}
		s.runMu.Unlock()

		s.mu.Lock()
		more := len(s.announced) > 0
		s.mu.Unlock()
		if !more {
			return
		}
	}
}

func (s *Shell) nextAnnounced() *discovery.ServiceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.announced) == 0 {
		return nil
	}
	info := s.announced[0]
	s.announced = s.announced[1:]
	return info
}

// releaseRun unlocks runMu and starts flows announced meanwhile.
func (s *Shell) releaseRun(ctx context.Context) {
	s.runMu.Unlock()
	s.flushAnnounced(ctx)
}

// startDiscovered starts a zeroconf flow and keeps its form until the
// user continues it. Callers hold runMu.
func (s *Shell) startDiscovered(ctx context.Context, info *discovery.ServiceInfo) {
	res, err := s.flows.Init(ctx, flow.SourceZeroconf, info)
	if err != nil {
		fmt.Fprintf(s.out, "\nIgnoring %s: %v\n", info.Hostname, err)
		return
	}
	if res.Type != flow.ResultForm {
		// Already configured or in progress; nothing to ask.
		return
	}

	s.keepForm(res)
	s.mu.Lock()
	s.pending = append(s.pending, res.FlowID)
	s.mu.Unlock()

	fmt.Fprintf(s.out, "\nDiscovered %s at %s (flow %s), type 'continue %s' to set it up\n",
		info.Title(), info.Host, shortID(res.FlowID), shortID(res.FlowID))
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Plugwise Setup Commands:
  Setup:
    setup                     - Set up a gateway by address
    setup <n>                 - Set up gateway <n> from the last discover
    discover                  - Discover gateways on the network
    flows                     - List setup flows waiting for input
    continue <flow-id>        - Continue a waiting setup flow
    abort <flow-id>           - Abort a setup flow

  Entries:
    entries                   - List configured gateways
    remove <entry-id>         - Remove a configured gateway

  General:
    help                      - Show this help
    quit                      - Exit`)
}

func (s *Shell) cmdSetup(ctx context.Context, args []string) {
	if len(args) == 0 {
		s.runMu.Lock()
		defer s.releaseRun(ctx)

		res, err := s.flows.Init(ctx, flow.SourceUser, nil)
		if err != nil {
			fmt.Fprintf(s.out, "Setup failed: %v\n", err)
			return
		}
		s.drive(ctx, res)
		return
	}

	n, err := strconv.Atoi(args[0])
	s.mu.Lock()
	found := s.found
	s.mu.Unlock()
	if err != nil || n < 1 || n > len(found) {
		fmt.Fprintf(s.out, "Unknown gateway: %s (run 'discover' first)\n", args[0])
		return
	}

	s.runMu.Lock()
	defer s.releaseRun(ctx)

	res, err := s.flows.Init(ctx, flow.SourceZeroconf, found[n-1])
	if err != nil {
		fmt.Fprintf(s.out, "Setup failed: %v\n", err)
		return
	}
	s.drive(ctx, res)
}

func (s *Shell) cmdDiscover(ctx context.Context) {
	if s.finder == nil {
		fmt.Fprintln(s.out, "Discovery is disabled")
		return
	}

	fmt.Fprintln(s.out, "Discovering Plugwise gateways...")
	gateways, err := s.finder.FindAll(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Discovery error: %v\n", err)
		return
	}

	s.mu.Lock()
	s.found = gateways
	s.mu.Unlock()

	if len(gateways) == 0 {
		fmt.Fprintln(s.out, "No gateways found")
		return
	}

	fmt.Fprintf(s.out, "Found %d gateway(s):\n", len(gateways))
	for i, g := range gateways {
		fmt.Fprintf(s.out, "  %d. %s (%s, host: %s:%d)\n", i+1, g.Title(), g.UniqueID(), g.Host, g.Port)
	}
}

func (s *Shell) cmdFlows() {
	flows := s.flows.InProgress()
	if len(flows) == 0 {
		fmt.Fprintln(s.out, "No setup flows in progress")
		return
	}

	fmt.Fprintf(s.out, "\nSetup Flows (%d):\n", len(flows))
	fmt.Fprintln(s.out, "-------------------------------------------")
	for _, f := range flows {
		fmt.Fprintf(s.out, "  ID: %s\n", shortID(f.FlowID))
		fmt.Fprintf(s.out, "      Source: %s\n", f.Source)
		if name := f.Placeholders[flow.FieldName]; name != "" {
			fmt.Fprintf(s.out, "      Gateway: %s at %s\n", name, f.Placeholders[flow.FieldHost])
		}
		if f.UniqueID != "" {
			fmt.Fprintf(s.out, "      Device: %s\n", f.UniqueID)
		}
		fmt.Fprintf(s.out, "      Waiting: %s\n", time.Since(f.StartedAt).Round(time.Second))
	}
}

func (s *Shell) cmdContinue(ctx context.Context, args []string) {
	flowID := s.resolveFlowID(args)
	if flowID == "" {
		return
	}

	s.mu.Lock()
	res, ok := s.forms[flowID]
	s.mu.Unlock()
	if !ok {
		fmt.Fprintf(s.out, "No form for flow %s\n", shortID(flowID))
		return
	}

	s.runMu.Lock()
	defer s.releaseRun(ctx)
	s.drive(ctx, res)
}

func (s *Shell) cmdAbort(args []string) {
	flowID := s.resolveFlowID(args)
	if flowID == "" {
		return
	}
	if err := s.flows.Abort(flowID); err != nil {
		fmt.Fprintf(s.out, "Abort failed: %v\n", err)
		return
	}
	s.forget(flowID)
	fmt.Fprintf(s.out, "Flow %s aborted\n", shortID(flowID))
}

func (s *Shell) cmdEntries() {
	entries := s.entries.Entries(flow.Domain)
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No gateways configured")
		return
	}

	fmt.Fprintf(s.out, "\nConfigured Gateways (%d):\n", len(entries))
	fmt.Fprintln(s.out, "-------------------------------------------")
	for _, e := range entries {
		port, _ := e.Int(flow.FieldPort)
		fmt.Fprintf(s.out, "  ID: %s\n", e.EntryID)
		fmt.Fprintf(s.out, "      Title: %s\n", e.Title)
		fmt.Fprintf(s.out, "      Device: %s\n", e.UniqueID)
		fmt.Fprintf(s.out, "      Host: %s:%d\n", e.String(flow.FieldHost), port)
		fmt.Fprintf(s.out, "      User: %s\n", e.String(flow.FieldUsername))
		fmt.Fprintf(s.out, "      Source: %s\n", e.Source)
		fmt.Fprintf(s.out, "      Created: %s\n", e.CreatedAt.Format(time.RFC3339))
	}
}

func (s *Shell) cmdRemove(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: remove <entry-id>")
		return
	}

	var matches []*entry.Entry
	for _, e := range s.entries.Entries(flow.Domain) {
		if strings.HasPrefix(e.EntryID, args[0]) || e.UniqueID == args[0] {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		fmt.Fprintf(s.out, "Unknown entry: %s\n", args[0])
		return
	case 1:
	default:
		fmt.Fprintf(s.out, "Ambiguous entry: %s matches %d entries\n", args[0], len(matches))
		return
	}

	if err := s.entries.Remove(matches[0].EntryID); err != nil {
		fmt.Fprintf(s.out, "Remove failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Removed %s (%s)\n", matches[0].Title, matches[0].UniqueID)
}

// drive shows forms and submits answers until the flow ends or the
// user interrupts it. Callers hold runMu.
func (s *Shell) drive(ctx context.Context, res flow.Result) {
	for {
		switch res.Type {
		case flow.ResultCreateEntry:
			s.forget(res.FlowID)
			fmt.Fprintf(s.out, "Configured %s", res.Title)
			if res.Entry != nil {
				fmt.Fprintf(s.out, " (entry %s)", res.Entry.EntryID)
			}
			fmt.Fprintln(s.out)
			return

		case flow.ResultAbort:
			s.forget(res.FlowID)
			fmt.Fprintf(s.out, "Setup aborted: %s\n", describeAbort(res.Reason))
			return
		}

		s.keepForm(res)
		printForm(s.out, res)

		raw, err := fillForm(s.in, s.out, res.Schema)
		if err != nil {
			fmt.Fprintf(s.out, "Flow %s kept, type 'continue %s' to resume\n", shortID(res.FlowID), shortID(res.FlowID))
			return
		}

		next, err := s.flows.Configure(ctx, res.FlowID, raw)
		switch {
		case errors.Is(err, flow.ErrInvalidInput):
			fmt.Fprintf(s.out, "  Invalid input: %v\n", err)
			continue
		case err != nil:
			fmt.Fprintf(s.out, "Setup failed: %v\n", err)
			return
		}
		res = next
	}
}

func (s *Shell) keepForm(res flow.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[res.FlowID] = res
}

func (s *Shell) forget(flowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, flowID)
	s.pending = slices.DeleteFunc(s.pending, func(id string) bool { return id == flowID })
}

// resolveFlowID finds an in-progress flow by id prefix. Without
// arguments the oldest announced flow is used.
func (s *Shell) resolveFlowID(args []string) string {
	flows := s.flows.InProgress()

	if len(args) == 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, id := range s.pending {
			for _, f := range flows {
				if f.FlowID == id {
					return id
				}
			}
		}
		fmt.Fprintln(s.out, "Usage: continue|abort <flow-id>")
		return ""
	}

	var match string
	for _, f := range flows {
		if strings.HasPrefix(f.FlowID, args[0]) {
			if match != "" {
				fmt.Fprintf(s.out, "Ambiguous flow id: %s\n", args[0])
				return ""
			}
			match = f.FlowID
		}
	}
	if match == "" {
		fmt.Fprintf(s.out, "Unknown flow: %s\n", args[0])
	}
	return match
}

func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// readlinePrompter reads answers through readline.
type readlinePrompter struct {
	rl *readline.Instance
}

func (p readlinePrompter) Line(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if err != nil {
		return "", errFormCancelled
	}
	return line, nil
}

func (p readlinePrompter) Password(prompt string) (string, error) {
	b, err := p.rl.ReadPassword(prompt)
	if err != nil {
		return "", errFormCancelled
	}
	return string(b), nil
}
