// Package client implements the HTTP client for the remote semantic-layer
// query service: schema introspection, SQL compilation for previews, and
// query execution. Both execution and preview consume the one canonical
// query shape produced by pkg/cube.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grafana/grafana-cube-datasource/internal/config"
	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// ErrUnauthorized is returned when the service rejects the configured
// credentials.
var ErrUnauthorized = errors.New("service rejected the credentials")

// APIError is a non-2xx response from the service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service returned %d: %s", e.Status, e.Body)
}

// Client talks to the semantic-layer query service over HTTP.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the configured service.
func New(cfg config.ServiceConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		hc:      &http.Client{Timeout: timeout},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Meta is the service's schema description.
type Meta struct {
	Cubes []CubeMeta `json:"cubes"`
}

// CubeMeta describes one cube: its grouping and aggregate members.
type CubeMeta struct {
	Name       string       `json:"name"`
	Title      string       `json:"title,omitempty"`
	Dimensions []MemberMeta `json:"dimensions"`
	Measures   []MemberMeta `json:"measures"`
}

// MemberMeta describes a dimension or measure.
type MemberMeta struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Members returns every dimension and measure name across all cubes.
func (m *Meta) Members() map[string]struct{} {
	out := make(map[string]struct{})
	for _, c := range m.Cubes {
		for _, d := range c.Dimensions {
			out[d.Name] = struct{}{}
		}
		for _, ms := range c.Measures {
			out[ms.Name] = struct{}{}
		}
	}
	return out
}

// LoadResult is the execution boundary's response.
type LoadResult struct {
	Data []map[string]any `json:"data"`
}

// Meta fetches the schema description.
func (c *Client) Meta(ctx context.Context) (*Meta, error) {
	var out Meta
	if err := c.do(ctx, http.MethodGet, "/v1/meta", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompileSQL asks the service to compile the canonical query to SQL
// without executing it. This is the preview boundary.
func (c *Client) CompileSQL(ctx context.Context, q cube.NormalizedQuery) (string, error) {
	var out struct {
		SQL string `json:"sql"`
	}
	body := map[string]any{"query": q}
	if err := c.do(ctx, http.MethodPost, "/v1/sql", body, &out); err != nil {
		return "", err
	}
	return out.SQL, nil
}

// Load executes the canonical query. This is the execution boundary.
func (c *Client) Load(ctx context.Context, q cube.NormalizedQuery) (*LoadResult, error) {
	var out LoadResult
	body := map[string]any{"query": q}
	if err := c.do(ctx, http.MethodPost, "/v1/load", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TagValues fetches the known values for a field, used by the editor's
// value suggestions and the dashboard's ad-hoc filter picker.
func (c *Client) TagValues(ctx context.Context, field string) ([]string, error) {
	var out struct {
		Values []string `json:"values"`
	}
	body := map[string]any{"field": field}
	if err := c.do(ctx, http.MethodPost, "/v1/tag-values", body, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

const maxErrorBody = 512

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("service request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(started))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
