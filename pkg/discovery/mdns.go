package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// browseFunc runs one mDNS browse, delivering entries until ctx ends.
type browseFunc func(ctx context.Context, service string, entries, removed chan *zeroconf.ServiceEntry, opts []zeroconf.ClientOption) error

func zeroconfBrowse(ctx context.Context, service string, entries, removed chan *zeroconf.ServiceEntry, opts []zeroconf.ClientOption) error {
	return zeroconf.Browse(ctx, service, Domain, entries, removed, opts...)
}

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	browse browseFunc

	mu      sync.Mutex
	stopped bool
	nextID  int
	cancels map[int]context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	return &MDNSBrowser{
		config:  config,
		browse:  zeroconfBrowse,
		cancels: make(map[int]context.CancelFunc),
	}, nil
}

// Browse searches for Plugwise gateways.
// Services are aggregated by instance name - addresses from multiple interfaces
// are combined into a single entry. Removals are handled when interfaces disappear.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *ServiceInfo, error) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return nil, context.Canceled
	}
	ctx, cancel := context.WithCancel(ctx)
	id := b.nextID
	b.nextID++
	b.cancels[id] = cancel
	b.mu.Unlock()

	out := make(chan *ServiceInfo)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	// Process entries with aggregation
	go func() {
		defer close(out)
		defer b.release(id)

		// Track services by instance name, aggregating addresses
		services := make(map[string]*ServiceInfo)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)
				if err := svc.Validate(); err != nil {
					b.debug("ignoring gateway announcement", "instance", entry.Instance, "error", err)
					continue
				}

				existing, found := services[svc.Name]
				if found {
					// Merge addresses into existing entry
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}

				// New service - store and emit a copy so later
				// address merges do not mutate what the receiver holds.
				services[svc.Name] = svc
				emitted := *svc
				emitted.Addresses = append([]string(nil), svc.Addresses...)
				select {
				case out <- &emitted:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				// Remove addresses that came from this interface
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					// If no addresses remain, remove the service
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background
	go func() {
		if err := b.browse(ctx, ServiceType, entries, removed, opts); err != nil {
			b.debug("mDNS browse ended", "error", err)
		}
	}()

	return out, nil
}

// FindAll collects every gateway seen within the browse timeout.
func (b *MDNSBrowser) FindAll(ctx context.Context) ([]*ServiceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	var found []*ServiceInfo
	for svc := range results {
		found = append(found, svc)
	}
	return found, nil
}

// FindByUniqueID searches for a specific gateway.
func (b *MDNSBrowser) FindByUniqueID(ctx context.Context, uniqueID string) (*ServiceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.UniqueID() == uniqueID {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ErrNotFound
		}
	}
}

// Stop stops all active browsing operations.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	for _, cancel := range b.cancels {
		cancel()
	}
	clear(b.cancels)
}

// release forgets a finished browse.
func (b *MDNSBrowser) release(id int) {
	b.mu.Lock()
	cancel, ok := b.cancels[id]
	delete(b.cancels, id)
	b.mu.Unlock()

	if ok {
		cancel()
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		} else {
			b.debug("interface not found, browsing on all", "interface", b.config.Interface, "error", err)
		}
	}

	return opts
}

func (b *MDNSBrowser) debug(msg string, args ...any) {
	if b.config.Logger != nil {
		b.config.Logger.Debug(msg, args...)
	}
}

// entryToService converts a zeroconf entry to a ServiceInfo.
func entryToService(entry *zeroconf.ServiceEntry) *ServiceInfo {
	// Collect addresses, IPv4 first
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	var host string
	if len(addrs) > 0 {
		host = addrs[0]
	}

	return &ServiceInfo{
		Name:       entry.Instance,
		Type:       ServiceType,
		Hostname:   entry.HostName,
		Host:       host,
		Port:       entry.Port,
		Addresses:  addrs,
		Properties: StringsToTXTRecords(entry.Text),
	}
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, new []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range new {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes addresses from a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	// Build set of addresses to remove
	toRemove := make(map[string]bool)
	for _, ip := range entry.AddrIPv4 {
		toRemove[ip.String()] = true
	}
	for _, ip := range entry.AddrIPv6 {
		toRemove[ip.String()] = true
	}

	// Filter out removed addresses
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
