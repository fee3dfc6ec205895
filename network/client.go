// Package network provides the HTTP clients used to reach media hosts.
package network

import (
	"net/http"
	"time"
)

// Timeout bounds a single preflight request.
const Timeout = 30 * time.Second

// Client is the shared plain HTTP client.
var Client = &http.Client{
	Timeout:   Timeout,
	Transport: newTransport(),
}

// newTransport initializes a tuned http.Transport with pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = Timeout
	t.ExpectContinueTimeout = time.Second
	return t
}

// NewClient returns the client the probe should use. With fingerprint set,
// TLS handshakes mimic Chrome so that CDNs which reject Go's default
// fingerprint answer with the status a browser or player would get.
func NewClient(fingerprint bool) *http.Client {
	if !fingerprint {
		return Client
	}
	return &http.Client{
		Timeout:   Timeout,
		Transport: FingerprintTransport(),
	}
}
