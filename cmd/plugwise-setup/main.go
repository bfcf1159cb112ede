// Command plugwise-setup configures Plugwise gateways (Smile P1, Anna,
// Adam and Stretch).
//
// A gateway is set up by address or found on the local network via
// mDNS. Each setup validates the credentials with one connect round
// trip to the gateway and stores a config entry.
//
// Usage:
//
//	plugwise-setup [flags]
//
// Flags:
//
//	-config string           Configuration file path
//	-state-dir string        Directory for config entries and the event log
//	-log-level string        Log level: debug, info, warn, error (default "info")
//	-event-log string        Flow event log path
//	-interface string        Network interface for mDNS
//	-discovery               Browse for gateways in the background (default true)
//	-reset                   Remove all config entries before starting
//	-host string             Set up the gateway at this address and exit
//	-port int                Gateway port (with -host, default 80)
//	-username string         Gateway username: smile, stretch (with -host, default "smile")
//	-password string         Smile ID of the gateway (with -host)
//
// Examples:
//
//	# Interactive setup with persistent entries
//	plugwise-setup -state-dir /var/lib/plugwise
//
//	# One-shot setup of an Anna
//	plugwise-setup -state-dir /var/lib/plugwise -host 192.168.1.20 -password abcdefgh
//
// Interactive Commands:
//
//	setup [n]          - Set up a gateway by address, or discovered gateway n
//	discover           - Discover gateways
//	flows              - List waiting setup flows
//	continue <flow-id> - Continue a waiting setup flow
//	entries            - List configured gateways
//	remove <entry-id>  - Remove a configured gateway
//	quit               - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/plugwise-go/plugwise-setup/cmd/plugwise-setup/interactive"
	"github.com/plugwise-go/plugwise-setup/pkg/config"
	"github.com/plugwise-go/plugwise-setup/pkg/discovery"
	"github.com/plugwise-go/plugwise-setup/pkg/entry"
	"github.com/plugwise-go/plugwise-setup/pkg/flow"
	flowlog "github.com/plugwise-go/plugwise-setup/pkg/log"
	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// Flags holds the command-line settings.
type Flags struct {
	ConfigFile string
	StateDir   string
	LogLevel   string
	EventLog   string
	Interface  string
	Discovery  bool
	Reset      bool

	// One-shot setup
	Host     string
	Port     int
	Username string
	Password string
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.StateDir, "state-dir", "", "Directory for config entries and the event log")
	flag.StringVar(&flags.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.EventLog, "event-log", "", "Flow event log path")
	flag.StringVar(&flags.Interface, "interface", "", "Network interface for mDNS")
	flag.BoolVar(&flags.Discovery, "discovery", true, "Browse for gateways in the background")
	flag.BoolVar(&flags.Reset, "reset", false, "Remove all config entries before starting")

	flag.StringVar(&flags.Host, "host", "", "Set up the gateway at this address and exit")
	flag.IntVar(&flags.Port, "port", smile.DefaultPort, "Gateway port (with -host)")
	flag.StringVar(&flags.Username, "username", smile.UsernameSmile, "Gateway username: smile, stretch (with -host)")
	flag.StringVar(&flags.Password, "password", "", "Smile ID of the gateway (with -host)")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(stdLogWriter{}, &slog.HandlerOptions{Level: cfg.Level()}))

	registry, err := openRegistry(cfg)
	if err != nil {
		log.Fatalf("Failed to open entries: %v", err)
	}

	events := []flowlog.Logger{flowlog.NewSlogAdapter(logger)}
	if path := cfg.EventLogPath(); path != "" {
		fl, err := flowlog.NewFileLogger(path)
		if err != nil {
			log.Fatalf("Failed to open event log: %v", err)
		}
		defer fl.Close()
		log.Printf("Writing flow events to %s", path)
		events = append(events, fl)
	}

	connector := flow.NewSmileConnector()
	connector.Timeout = cfg.ConnectTimeout

	manager := flow.NewManager(registry, connector, flow.Options{
		Logger:      logger,
		EventLogger: flowlog.NewMultiLogger(events...),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if flags.Host != "" {
		if err := setupOnce(ctx, manager); err != nil {
			log.Printf("Setup failed: %v", err)
			cancel()
			os.Exit(1)
		}
		return
	}

	browser, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{
		BrowseTimeout: cfg.BrowseTimeout,
		Interface:     cfg.Interface,
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("Failed to create mDNS browser: %v", err)
	}
	defer browser.Stop()

	shell, err := interactive.New(manager, registry, browser)
	if err != nil {
		log.Fatalf("Failed to create interactive shell: %v", err)
	}
	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(shell.Stdout())

	if cfg.Discovery {
		go announce(ctx, browser, shell)
	}
	go shell.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g., by interactive quit command)
	}

	log.Println("Shutting down...")
}

// loadConfig reads the configuration file, if any, and applies the
// flags given on the command line on top of it.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "state-dir":
			cfg.StateDir = flags.StateDir
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "event-log":
			cfg.EventLog = flags.EventLog
		case "interface":
			cfg.Interface = flags.Interface
		case "discovery":
			cfg.Discovery = flags.Discovery
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

// stdLogWriter sends slog output wherever the standard logger writes,
// so redirecting the standard logger moves both.
type stdLogWriter struct{}

func (stdLogWriter) Write(p []byte) (int, error) {
	return log.Writer().Write(p)
}

func openRegistry(cfg *config.Config) (*entry.Registry, error) {
	path := cfg.EntriesPath()
	if path == "" {
		log.Println("No state directory, entries are kept in memory only")
		return entry.NewRegistry(nil), nil
	}

	log.Printf("Using state directory: %s", cfg.StateDir)
	store := entry.NewFileStore(path)

	if flags.Reset {
		log.Println("Resetting config entries...")
		if err := store.Clear(); err != nil {
			log.Printf("Warning: Failed to clear entries: %v", err)
		}
	}

	registry := entry.NewRegistry(store)
	if err := registry.Load(); err != nil {
		return nil, err
	}
	log.Printf("Loaded %d config entries", len(registry.Entries(flow.Domain)))
	return registry, nil
}

// setupOnce runs a user flow with the address and credentials given
// on the command line.
func setupOnce(ctx context.Context, manager *flow.Manager) error {
	res, err := manager.Init(ctx, flow.SourceUser, nil)
	if err != nil {
		return err
	}

	res, err = manager.Configure(ctx, res.FlowID, map[string]any{
		flow.FieldHost:     flags.Host,
		flow.FieldPort:     flags.Port,
		flow.FieldUsername: flags.Username,
		flow.FieldPassword: flags.Password,
	})
	if err != nil {
		return err
	}

	switch res.Type {
	case flow.ResultCreateEntry:
		log.Printf("Configured %s (entry %s)", res.Title, res.Entry.EntryID)
		return nil
	case flow.ResultAbort:
		return fmt.Errorf("aborted: %s", res.Reason)
	default:
		_ = manager.Abort(res.FlowID)
		return fmt.Errorf("gateway rejected setup: %s", res.Errors[flow.ErrorBase])
	}
}

// announce starts a zeroconf flow for every gateway seen on the network.
func announce(ctx context.Context, browser discovery.Browser, shell *interactive.Shell) {
	found, err := browser.Browse(ctx)
	if err != nil {
		log.Printf("Failed to start discovery: %v", err)
		return
	}
	for info := range found {
		shell.Announce(ctx, info)
	}
}
