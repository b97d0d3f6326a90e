package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTable is the posts table used when none is configured
	DefaultTable = "posts"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// MaxRetries for rate limit errors
	MaxRetries = 3
	// InitialBackoff for rate limit retries
	InitialBackoff = 2 * time.Second

	restPrefix    = "/rest/v1/"
	summarySelect = "slug,title,cover_image,created_at"
)

// Error types for specific API errors
type (
	// AuthenticationError indicates an authentication failure
	AuthenticationError struct{ Message string }
	// RateLimitError indicates rate limit exceeded
	RateLimitError struct{ Message string }
	// NotFoundError indicates a resource was not found
	NotFoundError struct{ Message string }
	// ValidationError indicates invalid input
	ValidationError struct{ Message string }
	// ConflictError indicates a unique constraint violation, usually the slug
	ConflictError struct{ Message string }
)

func (e AuthenticationError) Error() string { return e.Message }
func (e RateLimitError) Error() string      { return e.Message }
func (e NotFoundError) Error() string       { return e.Message }
func (e ValidationError) Error() string     { return e.Message }
func (e ConflictError) Error() string       { return e.Message }

// Client talks to the PostgREST endpoint of a hosted database project.
type Client struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
	logger     zerolog.Logger
	backoff    time.Duration
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithBaseURL sets the project URL, e.g. https://abc.supabase.co
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets a custom timeout for the HTTP client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithTable sets the posts table name
func WithTable(table string) ClientOption {
	return func(c *Client) {
		if strings.TrimSpace(table) != "" {
			c.table = strings.TrimSpace(table)
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryBackoff sets the first wait after a rate limit response
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// NewClient creates a new posts API client
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		table:      DefaultTable,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		backoff:    InitialBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Table returns the posts table name
func (c *Client) Table() string {
	return c.table
}

// BaseURL returns the project URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// restError is the error body PostgREST returns.
type restError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func errorMessage(body []byte) string {
	var re restError
	if err := json.Unmarshal(body, &re); err == nil && re.Message != "" {
		if re.Details != "" {
			return re.Message + ": " + re.Details
		}
		return re.Message
	}
	return strings.TrimSpace(string(body))
}

// call makes a single request against the table endpoint
func (c *Client) call(ctx context.Context, method string, query url.Values, body interface{}, headers map[string]string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, errors.New("base URL is not set")
	}

	endpoint := c.baseURL + restPrefix + url.PathEscape(c.table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("table", c.table).Msg("request failed")
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(respBody)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, AuthenticationError{Message: "invalid API key: " + msg}
		case http.StatusNotFound:
			return nil, NotFoundError{Message: fmt.Sprintf("not found: %s", msg)}
		case http.StatusConflict:
			return nil, ConflictError{Message: fmt.Sprintf("conflict: %s", msg)}
		case http.StatusTooManyRequests:
			return nil, RateLimitError{Message: fmt.Sprintf("rate limit exceeded: %s", msg)}
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return nil, ValidationError{Message: fmt.Sprintf("invalid request: %s", msg)}
		case http.StatusInternalServerError:
			return nil, fmt.Errorf("server error: %s", msg)
		default:
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, msg)
		}
	}

	return respBody, nil
}

// callWithRetry calls the API with retry logic for rate limits
func (c *Client) callWithRetry(ctx context.Context, method string, query url.Values, body interface{}, headers map[string]string) ([]byte, error) {
	backoff := c.backoff

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		resp, err := c.call(ctx, method, query, body, headers)
		if err == nil {
			return resp, nil
		}

		// Only retry on rate limit errors
		if _, ok := err.(RateLimitError); !ok {
			return nil, err
		}

		if attempt < MaxRetries {
			c.logger.Debug().Dur("backoff", backoff).Int("attempt", attempt+1).Msg("rate limited, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, RateLimitError{Message: "rate limit exceeded after retries"}
}

// ListRecentPosts returns the newest posts, newest first
func (c *Client) ListRecentPosts(ctx context.Context, limit int) ([]PostSummary, error) {
	query := url.Values{}
	query.Set("select", summarySelect)
	query.Set("order", "created_at.desc")
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	resp, err := c.callWithRetry(ctx, http.MethodGet, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var posts []PostSummary
	if err := json.Unmarshal(resp, &posts); err != nil {
		return nil, fmt.Errorf("failed to parse posts: %w", err)
	}
	return posts, nil
}

// InsertPost inserts one post and returns the stored row
func (c *Client) InsertPost(ctx context.Context, post NewPost) (*Post, error) {
	headers := map[string]string{"Prefer": "return=representation"}
	resp, err := c.callWithRetry(ctx, http.MethodPost, nil, post, headers)
	if err != nil {
		return nil, err
	}

	var rows []Post
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse inserted post: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert returned no rows")
	}
	return &rows[0], nil
}

// GetPostBySlug returns the post with the given slug
func (c *Client) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("slug", "eq."+slug)
	query.Set("limit", "1")

	resp, err := c.callWithRetry(ctx, http.MethodGet, query, nil, nil)
	if err != nil {
		return nil, err
	}

	var rows []Post
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse post: %w", err)
	}
	if len(rows) == 0 {
		return nil, NotFoundError{Message: fmt.Sprintf("post not found: %s", slug)}
	}
	return &rows[0], nil
}

// Ping performs a minimal authenticated read
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "slug")
	query.Set("limit", "1")
	_, err := c.call(ctx, http.MethodGet, query, nil, nil)
	return err
}

// Ensure Client implements PostsAPI at compile time
var _ PostsAPI = (*Client)(nil)
