package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
)

// Defaults of the public query API.
const (
	DefaultDataset    = "production"
	DefaultAPIVersion = "2022-02-01"
	DefaultTimeout    = 10 * time.Second

	maxErrorBody = 4 << 10
)

// Client fetches documents by type with a GROQ query. It implements
// content.Source.
type Client struct {
	projectID  string
	dataset    string
	apiVersion string
	token      string
	useCDN     bool
	timeout    time.Duration
	baseURL    string
	http       *http.Client
}

var _ content.Source = (*Client)(nil)

// New returns a client for one project and dataset.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		dataset:    DefaultDataset,
		apiVersion: DefaultAPIVersion,
		useCDN:     true,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.projectID == "" {
		return nil, ErrMissingProject
	}
	if c.baseURL != "" {
		if u, err := url.Parse(c.baseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.baseURL)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// ProjectID returns the configured project.
func (c *Client) ProjectID() string { return c.projectID }

// Dataset returns the configured dataset.
func (c *Client) Dataset() string { return c.dataset }

// TypeQuery is the GROQ query selecting every document of one type.
func TypeQuery(tag model.TypeTag) string {
	return fmt.Sprintf("*[_type == %q]", tag)
}

// FetchAll runs TypeQuery(tag) and returns the result documents in store order.
func (c *Client) FetchAll(ctx context.Context, tag model.TypeTag) ([]json.RawMessage, error) {
	return c.Query(ctx, TypeQuery(tag))
}

type queryResponse struct {
	Result []json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
	Message string `json:"message"`
}

// Query runs a GROQ query whose result is an array.
func (c *Client) Query(ctx context.Context, groq string) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(groq), nil)
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: http %d: %s", content.ErrStatus, resp.StatusCode, describe(body))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: query response: %w", content.ErrDecode, err)
	}
	if out.Result == nil {
		return []json.RawMessage{}, nil
	}
	return out.Result, nil
}

func (c *Client) queryURL(groq string) string {
	base := c.baseURL
	if base == "" {
		host := "api"
		if c.useCDN && c.token == "" {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", c.projectID, host)
	}
	q := url.Values{}
	q.Set("query", groq)
	return fmt.Sprintf("%s/v%s/data/query/%s?%s", base, c.apiVersion, url.PathEscape(c.dataset), q.Encode())
}

func describe(body []byte) string {
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		if er.Error.Description != "" {
			return er.Error.Description
		}
		if er.Message != "" {
			return er.Message
		}
	}
	if len(body) == 0 {
		return "empty body"
	}
	return string(body)
}
