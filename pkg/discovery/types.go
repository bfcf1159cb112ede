package discovery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// Service type constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of Plugwise gateways.
	ServiceType = "_plugwise._tcp"

	// Domain is the mDNS domain.
	Domain = "local"
)

// TXT record keys.
const (
	TXTKeyProduct = "product" // vendor_model of the gateway
	TXTKeyVersion = "version" // firmware version
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// UnknownVersion is used in titles when no version is advertised.
const UnknownVersion = "n/a"

// Discovery errors.
var (
	ErrNotFound      = errors.New("service not found")
	ErrInvalidRecord = errors.New("invalid service record")
)

// ServiceInfo is a gateway found via mDNS.
// It is treated as immutable once delivered.
type ServiceInfo struct {
	// Name is the mDNS instance name.
	Name string

	// Type is the service type (always ServiceType).
	Type string

	// Hostname is the advertised host name (e.g. "smile123abc.local.").
	Hostname string

	// Host is the preferred address to connect to.
	Host string

	// Port is the service port.
	Port int

	// Addresses contains every resolved IP address.
	Addresses []string

	// Properties are the TXT record key/value pairs.
	Properties TXTRecordMap
}

// UniqueID returns the first label of the host name, which is the
// stable device identifier.
func (s *ServiceInfo) UniqueID() string {
	id, _, _ := strings.Cut(s.Hostname, ".")
	return id
}

// Product returns the advertised product, or "" if absent.
func (s *ServiceInfo) Product() string {
	return s.Properties[TXTKeyProduct]
}

// Version returns the advertised firmware version or UnknownVersion.
func (s *ServiceInfo) Version() string {
	if v, ok := s.Properties[TXTKeyVersion]; ok && v != "" {
		return v
	}
	return UnknownVersion
}

// Title returns a human readable title such as "Smile Anna v4.0.15".
// Unknown products are shown with their raw product string.
func (s *ServiceInfo) Title() string {
	return fmt.Sprintf("%s v%s", ProductName(s.Product()), s.Version())
}

// Validate checks that the record carries what the setup flow needs.
func (s *ServiceInfo) Validate() error {
	if s.UniqueID() == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidRecord)
	}
	if s.Host == "" {
		return fmt.Errorf("%w: no address", ErrInvalidRecord)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidRecord, s.Port)
	}
	return nil
}

// ProductName maps an advertised product to its friendly name.
// Unmapped products are returned unchanged.
func ProductName(product string) string {
	if m, ok := smile.LookupModel(product); ok {
		return m.FriendlyName
	}
	return product
}
