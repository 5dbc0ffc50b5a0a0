// Package httpclient builds the HTTP client shared by the vendor clients.
package httpclient

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// New returns a client tuned for vendor traffic. No overall request timeout
// is set: completions bound each attempt with a context deadline, and SSE
// streams stay open as long as the consumer keeps reading. HTTP/2 keepalive
// pings detect idle streams that a middlebox silently dropped.
func New() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	if h2, err := http2.ConfigureTransports(transport); err == nil {
		h2.ReadIdleTimeout = 30 * time.Second
		h2.PingTimeout = 15 * time.Second
	}
	return &http.Client{Transport: transport}
}
