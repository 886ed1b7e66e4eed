// Package objectstore provides access to the binary payload store.
package objectstore

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// ErrUpstream is returned when the backing store answers with a
// non-success status or cannot be reached.
var ErrUpstream = errors.New("object store request failed")

// Object is a fetched payload. Body must be closed by the caller.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Client is the put-by-name / get-by-locator contract over the payload
// store. Put returns the locator the payload can later be fetched from.
type Client interface {
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
	Get(ctx context.Context, locator string) (*Object, error)
}

const (
	// ClientTimeout is the total request timeout for uploads.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second
)

// newHTTPClient creates an HTTP client with bounded timeouts for talking
// to the object store.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
