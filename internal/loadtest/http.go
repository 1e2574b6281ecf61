package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Client calls the folio JSON API.
type Client struct {
	client   *http.Client
	baseURL  string
	requests atomic.Int64
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Requests returns the number of requests sent.
func (c *Client) Requests() int64 { return c.requests.Load() }

type section struct {
	Status string `json:"status"`
	Error  *struct {
		Kind string `json:"kind"`
	} `json:"error,omitempty"`
}

type card struct {
	Key      string `json:"key"`
	Expanded bool   `json:"expanded"`
	HasMore  bool   `json:"hasMore"`
}

// Page is the works page as returned by the API.
type Page struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	PerPage int    `json:"perPage"`
	Count   int    `json:"count"`
	First   int    `json:"first"`
	Last    int    `json:"last"`
	HasPrev bool   `json:"hasPrev"`
	HasNext bool   `json:"hasNext"`
	Cards   []card `json:"cards"`
}

type viewState struct {
	ID          string  `json:"id"`
	Experiences section `json:"experiences"`
	Skills      section `json:"skills"`
	Works       struct {
		section
		Page Page `json:"page"`
	} `json:"works"`
}

func (v *viewState) sections() map[string]section {
	return map[string]section{
		"experiences": v.Experiences,
		"skills":      v.Skills,
		"works":       v.Works.section,
	}
}

func (v *viewState) pending() bool {
	for _, s := range v.sections() {
		if s.Status == "pending" {
			return true
		}
	}
	return false
}

// Health checks that the service answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", http.StatusOK, nil)
}

// Mount creates a view and returns its id.
func (c *Client) Mount(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/views", http.StatusCreated, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) view(ctx context.Context, id string) (*viewState, error) {
	var out viewState
	if err := c.do(ctx, http.MethodGet, "/api/views/"+id, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Next advances the works page of view id.
func (c *Client) Next(ctx context.Context, id string) (Page, error) {
	return c.page(ctx, "/api/views/"+id+"/works/next")
}

// Paginate jumps to page n.
func (c *Client) Paginate(ctx context.Context, id string, n int) (Page, error) {
	return c.page(ctx, "/api/views/"+id+"/works/page/"+strconv.Itoa(n))
}

// Toggle expands or collapses the card with key.
func (c *Client) Toggle(ctx context.Context, id, key string) (Page, error) {
	return c.page(ctx, "/api/views/"+id+"/works/toggle/"+key)
}

// Unmount discards view id.
func (c *Client) Unmount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/views/"+id, http.StatusNoContent, nil)
}

func (c *Client) page(ctx context.Context, path string) (Page, error) {
	var p Page
	err := c.do(ctx, http.MethodPost, path, http.StatusOK, &p)
	return p, err
}

func (c *Client) do(ctx context.Context, method, path string, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.requests.Add(1)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode != want {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
