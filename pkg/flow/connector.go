package flow

import (
	"context"
	"net/http"
	"time"

	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// Connector performs the connect handshake with a gateway.
type Connector interface {
	Connect(ctx context.Context, config smile.Config) (*smile.Gateway, error)
}

// SmileConnector connects through pkg/smile, sharing one HTTP session
// across flows.
type SmileConnector struct {
	Session *http.Client

	// Timeout overrides the handshake timeout of each config when set.
	Timeout time.Duration
}

// NewSmileConnector creates a connector with an unverified-TLS session.
func NewSmileConnector() *SmileConnector {
	return &SmileConnector{Session: smile.NewSession()}
}

// Connect implements Connector.
func (c *SmileConnector) Connect(ctx context.Context, config smile.Config) (*smile.Gateway, error) {
	config.Session = c.Session
	if c.Timeout > 0 {
		config.Timeout = c.Timeout
	}
	return smile.New(config).Connect(ctx)
}

var _ Connector = (*SmileConnector)(nil)
