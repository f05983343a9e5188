// Package apiclient is the single HTTP surface to the EcoCycle backend.
//
// Every request carries the stored bearer token when one exists. Every 401
// response, from any endpoint, clears the stored token and fires the
// callbacks registered with OnUnauthorized before the error reaches the
// caller.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ecocycle-client"
	maxResponseBytes = 4 << 20
)

// TokenSource provides and discards the bearer token.
type TokenSource interface {
	Read() (string, bool)
	Clear()
}

// Client talks to the backend REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	logger    *slog.Logger
	userAgent string

	mu             sync.RWMutex
	onUnauthorized []func()
}

type options struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient uses the given client's transport, jar and redirect policy.
// Its transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// New constructs a Client for the API rooted at baseURL.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}

	o := options{
		timeout:   defaultTimeout,
		logger:    slog.Default(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	c := &Client{
		baseURL:   u,
		tokens:    tokens,
		logger:    o.logger,
		userAgent: o.userAgent,
	}

	next := http.DefaultTransport
	hc := &http.Client{Timeout: o.timeout}
	if o.httpClient != nil {
		if o.httpClient.Transport != nil {
			next = o.httpClient.Transport
		}
		hc.Jar = o.httpClient.Jar
		hc.CheckRedirect = o.httpClient.CheckRedirect
		if o.httpClient.Timeout > 0 {
			hc.Timeout = o.httpClient.Timeout
		}
	}
	hc.Transport = &authTransport{next: next, client: c}
	c.http = hc

	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// OnUnauthorized registers fn to run after the stored token has been
// cleared because the backend answered 401. Callbacks run synchronously in
// registration order. The returned function unregisters fn.
func (c *Client) OnUnauthorized(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onUnauthorized = append(c.onUnauthorized, fn)
	idx := len(c.onUnauthorized) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.onUnauthorized) {
			c.onUnauthorized[idx] = nil
		}
	}
}

func (c *Client) unauthorized() {
	c.tokens.Clear()

	c.mu.RLock()
	handlers := make([]func(), 0, len(c.onUnauthorized))
	for _, fn := range c.onUnauthorized {
		if fn != nil {
			handlers = append(handlers, fn)
		}
	}
	c.mu.RUnlock()

	c.logger.Info("session rejected by backend, credentials cleared")
	for _, fn := range handlers {
		fn()
	}
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, op Operation, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return newTransportError(op, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return newTransportError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return newTransportError(op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: FallbackMessage(op), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(op, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Op:      op,
			Status:  resp.StatusCode,
			Message: FallbackMessage(op),
			Err:     fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}
	return nil
}
