package discovery

import (
	"context"
	"log/slog"
	"time"
)

// Browser provides mDNS service browsing capabilities.
type Browser interface {
	// Browse searches for gateways. The channel delivers each gateway
	// once and is closed when the context is cancelled or Stop is called.
	Browse(ctx context.Context) (<-chan *ServiceInfo, error)

	// FindAll collects every gateway seen until the browse timeout expires.
	FindAll(ctx context.Context) ([]*ServiceInfo, error)

	// FindByUniqueID searches for a specific gateway.
	FindByUniqueID(ctx context.Context, uniqueID string) (*ServiceInfo, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindAll and FindByUniqueID.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// Logger receives diagnostics. Nil disables them.
	Logger *slog.Logger
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}
