// Package fetch retrieves the catalog entry feed.
//
// The feed is a JSON array of entries served at a fixed endpoint. Responses are
// validated against an embedded JSON Schema before decoding, so a body that
// parses but has the wrong shape is rejected the same way as broken JSON.
package fetch

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/abelbrown/catalog/internal/catalog"
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 8 << 20

//go:embed entries.schema.json
var entriesSchemaJSON string

var entriesSchema = jsonschema.MustCompileString("entries.schema.json", entriesSchemaJSON)

// ErrMalformedFeed is wrapped by every error caused by an unusable body.
var ErrMalformedFeed = errors.New("malformed entry feed")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %d", e.Code)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string        // scheme and host, e.g. http://localhost:5173 or file:///srv/catalog
	Endpoint          string        // path of the feed; default catalog.EntriesEndpoint
	Timeout           time.Duration // per-request timeout; default 30s
	RequestsPerSecond float64       // <= 0 disables limiting
}

// Client fetches entries over HTTP (or from disk for file:// base URLs).
// Safe for concurrent use.
type Client struct {
	client  *http.Client
	url     string
	limiter *rate.Limiter
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = catalog.EntriesEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &Client{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		url:     strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(opts.Endpoint, "/"),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// URL returns the feed location.
func (c *Client) URL() string {
	return c.url
}

// FetchEntries issues one GET for the feed and decodes it.
// Returns ctx.Err() (possibly wrapped) when ctx is cancelled.
func (c *Client) FetchEntries(ctx context.Context) ([]catalog.Entry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "catalog/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, URL: c.url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return DecodeEntries(body)
}

// DecodeEntries validates body against the feed schema and decodes it.
func DecodeEntries(body []byte) ([]catalog.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	if err := entriesSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	var entries []catalog.Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	return entries, nil
}
