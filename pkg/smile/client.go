package smile

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
)

// maxResponseSize caps a single gateway response. Domain objects of a
// fully populated Adam stay well below this.
const maxResponseSize = 16 << 20

// Client performs the connect handshake against one gateway.
type Client struct {
	config  Config
	session *http.Client
}

// New creates a client, applying defaults for unset fields.
func New(config Config) *Client {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Username == "" {
		config.Username = UsernameSmile
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	session := config.Session
	if session == nil {
		session = NewSession()
	}
	return &Client{config: config, session: session}
}

// Endpoint returns the base URL of the gateway.
func (c *Client) Endpoint() string {
	return "http://" + net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Connect validates the credentials and identifies the gateway. The
// handshake is bounded by the configured timeout or the deadline of
// ctx, whichever comes first.
func (c *Client) Connect(ctx context.Context) (*Gateway, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, err := c.request(ctx, pathDomainObjects)
	if err != nil {
		return nil, err
	}

	var objects domainObjects
	if err := xml.Unmarshal(body, &objects); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}
	if objects.Gateway != nil {
		return objects.Gateway.toGateway(false)
	}

	// Legacy firmware has no gateway in the domain objects.
	body, err = c.request(ctx, pathSystem)
	if err != nil {
		if errors.Is(err, ErrResponse) {
			return nil, fmt.Errorf("%w: no gateway information", ErrUnsupportedDevice)
		}
		return nil, err
	}

	var system systemStatus
	if err := xml.Unmarshal(body, &system); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}
	if system.Gateway == nil {
		return nil, fmt.Errorf("%w: no gateway information", ErrUnsupportedDevice)
	}
	return system.Gateway.toGateway(true)
}

func (c *Client) request(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint()+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	req.SetBasicAuth(c.config.Username, c.config.Password)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidAuthentication
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s returned %d", ErrResponse, path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConnectionFailed, path, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body from %s", ErrResponse, path)
	}
	return body, nil
}
