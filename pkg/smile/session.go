package smile

import (
	"crypto/tls"
	"net/http"
	"time"
)

// NewSession returns an HTTP client for talking to gateways.
//
// Gateways ship self-signed certificates, so server certificate
// verification is disabled. The client carries no timeout of its own;
// each handshake is bounded by Config.Timeout.
func NewSession() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true,
		},
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{Transport: transport}
}
