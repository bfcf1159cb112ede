// Package config loads the YAML configuration of plugwise-setup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/plugwise-go/plugwise-setup/pkg/discovery"
	"github.com/plugwise-go/plugwise-setup/pkg/log"
	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// File names inside the state directory.
const (
	EntriesFile  = "entries.json"
	EventLogName = "events" + log.FileExtension
)

// Config is the CLI configuration.
type Config struct {
	// StateDir holds the entry store and, by default, the event log.
	// Empty keeps entries in memory only.
	StateDir string `yaml:"state_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// EventLog is the flow event log path. Empty means EventLogName
	// in StateDir, or no event log without a state dir.
	EventLog string `yaml:"event_log"`

	// Interface restricts mDNS to one network interface.
	Interface string `yaml:"interface"`

	// Discovery enables background mDNS browsing.
	Discovery bool `yaml:"discovery"`

	// BrowseTimeout bounds one-shot discovery.
	BrowseTimeout time.Duration `yaml:"browse_timeout"`

	// ConnectTimeout bounds one connect handshake.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		Discovery:      true,
		BrowseTimeout:  discovery.BrowseTimeout,
		ConnectTimeout: smile.DefaultTimeout,
	}
}

// LoadError describes a configuration file that could not be used.
type LoadError struct {
	// File is the path of the configuration file, may be empty.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.BrowseTimeout <= 0 {
		return fmt.Errorf("browse_timeout must be positive, got %s", c.BrowseTimeout)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %s", c.ConnectTimeout)
	}
	return nil
}

// Level returns the slog level of LogLevel, or info when invalid.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// EntriesPath returns the entry store path, or "" without a state dir.
func (c *Config) EntriesPath() string {
	if c.StateDir == "" {
		return ""
	}
	return filepath.Join(c.StateDir, EntriesFile)
}

// EventLogPath returns the event log path, or "" when disabled.
func (c *Config) EventLogPath() string {
	switch {
	case c.EventLog != "":
		return c.EventLog
	case c.StateDir != "":
		return filepath.Join(c.StateDir, EventLogName)
	default:
		return ""
	}
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}
