package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates a new HTTPClient with a default-configured
// underlying resty.Client. Each call returns an independent instance.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}

// NewHTTPClientFor creates an HTTPClient bound to baseURL with the given
// per-request timeout.
func NewHTTPClientFor(baseURL string, timeout time.Duration) *HTTPClient {
	client := NewHTTPClient()
	client.SetBaseURL(baseURL).SetTimeout(timeout)
	return client
}
