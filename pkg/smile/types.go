package smile

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Connection defaults.
const (
	// DefaultPort is the HTTP port every Smile and Stretch listens on.
	DefaultPort = 80

	// DefaultTimeout bounds one connect handshake.
	DefaultTimeout = 30 * time.Second

	// UsernameSmile is the login for Smile P1, Anna and Adam.
	UsernameSmile = "smile"

	// UsernameStretch is the login for Stretch gateways.
	UsernameStretch = "stretch"
)

// Gateway endpoints.
const (
	pathDomainObjects = "/core/domain_objects"
	pathSystem        = "/system"
)

// Handshake errors.
var (
	ErrInvalidAuthentication = errors.New("invalid authentication")
	ErrProtocol              = errors.New("plugwise protocol error")

	ErrConnectionFailed  = fmt.Errorf("%w: connection failed", ErrProtocol)
	ErrInvalidXML        = fmt.Errorf("%w: invalid XML", ErrProtocol)
	ErrResponse          = fmt.Errorf("%w: unexpected response", ErrProtocol)
	ErrUnsupportedDevice = fmt.Errorf("%w: unsupported device", ErrProtocol)
)

// GatewayType classifies the gateway by function.
type GatewayType string

const (
	TypeThermostat GatewayType = "thermostat"
	TypePower      GatewayType = "power"
	TypeStretch    GatewayType = "stretch"
)

// Model describes a known gateway model.
type Model struct {
	// FriendlyName is shown to the user and used as entry title.
	FriendlyName string

	// Type is the gateway function.
	Type GatewayType
}

// models maps the vendor_model reported by the gateway.
var models = map[string]Model{
	"smile":            {FriendlyName: "Smile P1", Type: TypePower},
	"smile_thermo":     {FriendlyName: "Smile Anna", Type: TypeThermostat},
	"smile_open_therm": {FriendlyName: "Adam", Type: TypeThermostat},
	"stretch":          {FriendlyName: "Stretch", Type: TypeStretch},
}

// LookupModel returns the model for a vendor_model string.
func LookupModel(vendorModel string) (Model, bool) {
	m, ok := models[vendorModel]
	return m, ok
}

// Config configures a gateway client.
type Config struct {
	// Host is the gateway address (IP or hostname).
	Host string

	// Password is the Smile ID of the gateway.
	Password string

	// Port is the HTTP port. Zero means DefaultPort.
	Port int

	// Username is UsernameSmile or UsernameStretch. Empty means UsernameSmile.
	Username string

	// Timeout bounds the handshake. Zero means DefaultTimeout.
	Timeout time.Duration

	// Session is the HTTP client used for requests.
	// If nil, NewSession is used.
	Session *http.Client
}

// Gateway is the validated result of a connect handshake.
type Gateway struct {
	// HostnameID is the gateway hostname (e.g. "smile123abc"), may be empty.
	HostnameID string

	// GatewayID is the gateway object id from the domain objects.
	GatewayID string

	// Name is the display name of the model (e.g. "Smile Anna").
	Name string

	// VendorModel is the raw model string reported by the gateway.
	VendorModel string

	// FirmwareVersion is the reported firmware, may be empty.
	FirmwareVersion string

	// Type is the gateway function.
	Type GatewayType

	// Legacy is set when the gateway answered through /system only.
	Legacy bool
}

// UniqueID returns the stable identifier of the gateway.
// The hostname is preferred; the gateway id is the fallback.
func (g *Gateway) UniqueID() string {
	if g.HostnameID != "" {
		return g.HostnameID
	}
	return g.GatewayID
}
