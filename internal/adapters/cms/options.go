// Package cms queries a Sanity content lake over its HTTP query API.
package cms

import (
	"net/http"
	"strings"
	"time"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithProjectID sets the Sanity project id.
func WithProjectID(id string) Option {
	return func(c *Client) {
		c.projectID = strings.TrimSpace(id)
	}
}

// WithDataset sets the dataset name.
func WithDataset(dataset string) Option {
	return func(c *Client) {
		if dataset != "" {
			c.dataset = dataset
		}
	}
}

// WithAPIVersion sets the dated API version, e.g. "2022-02-01".
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = strings.TrimPrefix(version, "v")
		}
	}
}

// WithToken sets a read token sent as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithCDN toggles the edge cached API host. Token authenticated queries
// always go to the live API.
func WithCDN(enabled bool) Option {
	return func(c *Client) {
		c.useCDN = enabled
	}
}

// WithTimeout bounds each query.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBaseURL overrides the API host, e.g. for a proxy or a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}
