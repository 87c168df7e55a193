package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	figmaAPIBase = "https://api.figma.com/v1"
	maxRetries   = 3
)

// Cache stores raw document payloads between runs. Implementations must be safe
// for concurrent use. A miss is reported with ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	Put(ctx context.Context, key string, body []byte) error
}

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic and optimized transport settings for handling large files.
type Client struct {
	accessToken string
	useOAuth    bool
	baseURL     string
	httpClient  *http.Client
	cache       Cache
	backoff     time.Duration
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithOAuth sends the token as an OAuth bearer token instead of a personal access token.
func WithOAuth() ClientOption {
	return func(c *Client) { c.useOAuth = true }
}

// WithBaseURL points the client at a different API root, e.g. an httptest server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache enables caching of GetFile and GetFileNodes payloads.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// WithRetryBackoff sets the base delay between retries; attempt n waits n*d.
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) { c.backoff = d }
}

// NewClient creates a new Figma API client with the provided access token.
// The client is configured with connection pooling, disabled HTTP/2 (for large file stability),
// and a 10-minute timeout for very large files.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	c := &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		httpClient: &http.Client{
			Timeout:   10 * time.Minute,
			Transport: transport,
		},
		backoff: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// GetFile retrieves the file document. depth limits how many levels of the tree the API
// returns; 0 fetches the whole tree.
func (c *Client) GetFile(ctx context.Context, fileKey string, depth int) (*FileResponse, error) {
	q := url.Values{}
	if depth > 0 {
		q.Set("depth", strconv.Itoa(depth))
	}

	var fileResp FileResponse
	if err := c.getCached(ctx, "/files/"+url.PathEscape(fileKey), q, &fileResp); err != nil {
		return nil, err
	}
	return &fileResp, nil
}

// GetFileNodes retrieves specific nodes of a file along with the components and styles they use.
func (c *Client) GetFileNodes(ctx context.Context, fileKey string, nodeIDs []string, depth int) (*NodesResponse, error) {
	if len(nodeIDs) == 0 {
		return nil, errors.New("at least one node ID is required")
	}
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))
	if depth > 0 {
		q.Set("depth", strconv.Itoa(depth))
	}

	var nodesResp NodesResponse
	if err := c.getCached(ctx, "/files/"+url.PathEscape(fileKey)+"/nodes", q, &nodesResp); err != nil {
		return nil, err
	}
	return &nodesResp, nil
}

// GetImages asks the render API for temporary image URLs of the given nodes.
// format is one of png, jpg, svg, pdf. scale is ignored for svg and pdf.
func (c *Client) GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*ImagesResponse, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(nodeIDs, ","))
	q.Set("format", format)
	if scale > 0 && format != "svg" && format != "pdf" {
		q.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))
	}
	if format == "svg" {
		q.Set("svg_outline_text", "true")
		q.Set("svg_include_id", "false")
		q.Set("svg_simplify_stroke", "true")
	}

	var imgResp ImagesResponse
	if err := c.get(ctx, "/images/"+url.PathEscape(fileKey), q, &imgResp); err != nil {
		return nil, err
	}
	if imgResp.Err != "" {
		return nil, fmt.Errorf("render API error: %s", imgResp.Err)
	}
	return &imgResp, nil
}

// GetFileImages returns download URLs for every image fill (imageRef) in the file.
func (c *Client) GetFileImages(ctx context.Context, fileKey string) (*FileImagesResponse, error) {
	var resp FileImagesResponse
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey)+"/images", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFileStyles retrieves all published styles (colors, text, effects, grids) from a Figma file.
func (c *Client) GetFileStyles(ctx context.Context, fileKey string) (*StylesResponse, error) {
	var stylesResp StylesResponse
	if err := c.get(ctx, "/files/"+url.PathEscape(fileKey)+"/styles", nil, &stylesResp); err != nil {
		return nil, err
	}
	return &stylesResp, nil
}

func (c *Client) getCached(ctx context.Context, path string, q url.Values, out any) error {
	if c.cache == nil {
		return c.get(ctx, path, q, out)
	}

	key := path
	if len(q) > 0 {
		key += "?" + q.Encode()
	}
	if body, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
	}

	body, err := c.fetch(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	// A failed cache write only costs a refetch next time.
	_ = c.cache.Put(ctx, key, body)
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	body, err := c.fetch(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// fetch performs a GET with up to maxRetries attempts. Transport errors, 429 and 5xx
// responses are retried with a linear backoff; other statuses fail immediately.
func (c *Client) fetch(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, err := c.do(ctx, u)
		if err == nil {
			return body, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return nil, lastErr
		}
		if ctx.Err() != nil || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	return nil, lastErr
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.useOAuth {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	} else {
		req.Header.Set("X-Figma-Token", c.accessToken)
	}
	req.Header.Set("User-Agent", "figma-context/"+Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// Anchored to ensure the entire URL matches the expected pattern and prevent bypass attacks.
var fileKeyPattern = regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design|proto|board)/([A-Za-z0-9]+)(?:[/?#]|$)`)

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports /file/, /design/, /proto/ and /board/ URL patterns
// (e.g., figma.com/design/ABC123/Design-Name).
func ExtractFileKey(figmaURL string) (string, error) {
	matches := fileKeyPattern.FindStringSubmatch(figmaURL)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Figma URL format: must be a valid figma.com URL with /file/ or /design/ path")
	}
	return matches[1], nil
}

// ExtractNodeIDs returns the node IDs referenced by a Figma URL, in order and without
// duplicates. IDs may appear in the node-id query parameter, the fragment, or a
// /nodes/ path segment; the dash form used in share links (1-2) is normalized to 1:2.
// A URL without node references yields an empty slice.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	u, err := url.Parse(figmaURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	var raw string
	switch {
	case u.Query().Get("node-id") != "":
		raw = u.Query().Get("node-id")
	case u.Fragment != "":
		raw = u.Fragment
	default:
		if _, after, ok := strings.Cut(u.Path, "/nodes/"); ok {
			raw = after
		}
	}

	ids := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if !strings.Contains(id, ":") {
			id = strings.Replace(id, "-", ":", 1)
		}
		ids = append(ids, id)
	}

	return deduplicateNodeIDs(ids), nil
}

// deduplicateNodeIDs removes repeated IDs while preserving first-seen order.
func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
