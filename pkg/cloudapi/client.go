package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Client is the session against one datacenter endpoint. It is not safe for
// concurrent use without external synchronization: the first account fetch
// pins the login scope and the 401 recovery path mutates the signer's
// secret source.
type Client struct {
	baseURL string
	login   string
	headers map[string]string
	known   map[string]string

	apiVersion string
	userAgent  string
	timeout    time.Duration
	tlsVerify  *bool

	signer RequestSigner
	http   *http.Client
	log    hclog.Logger
}

// NewClient validates cfg and builds a Client. Fields left at their zero
// value fall back to the defaults from DefaultConfig.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	defaults := DefaultConfig()
	if cfg.Location == "" && cfg.BaseURL == "" {
		cfg.Location = defaults.Location
	}
	if cfg.KnownLocations == nil {
		cfg.KnownLocations = defaults.KnownLocations
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaults.APIVersion
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = defaults.TLSVerify
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cloudapi: invalid config: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = resolveBaseURL(cfg.Location, cfg.KnownLocations)
	}

	login := cfg.Login
	if login == "" {
		login = sentinelLogin
	}

	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		login:      login,
		headers:    make(map[string]string, len(cfg.Headers)),
		known:      make(map[string]string, len(cfg.KnownLocations)),
		apiVersion: cfg.APIVersion,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		tlsVerify:  cfg.TLSVerify,
		signer:     cfg.Signer,
		http:       cfg.NewHTTPClient(),
		log:        logger,
	}
	for k, v := range cfg.Headers {
		c.headers[k] = v
	}
	for k, v := range cfg.KnownLocations {
		c.known[k] = v
	}
	return c, nil
}

// Login returns the current account scope. Before the first successful
// account fetch on an unscoped client this is the "my" sentinel.
func (c *Client) Login() string {
	return c.login
}

// BaseURL returns the endpoint this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Datacenter derives a client for another location, keeping this client's
// login scope, default headers, signer, and TLS settings. Headers are
// copied, never shared.
func (c *Client) Datacenter(name string) (*Client, error) {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	known := make(map[string]string, len(c.known))
	for k, v := range c.known {
		known[k] = v
	}

	login := c.login
	if login == sentinelLogin {
		login = ""
	}

	derived, err := NewClient(&Config{
		Location:       name,
		Login:          login,
		KnownLocations: known,
		Headers:        headers,
		APIVersion:     c.apiVersion,
		UserAgent:      c.userAgent,
		TLSVerify:      c.tlsVerify,
		Timeout:        c.timeout,
		Signer:         c.signer,
		Logger:         c.log,
	})
	if err != nil {
		return nil, err
	}
	return derived, nil
}

// RequestOptions carries the optional parts of one request.
type RequestOptions struct {
	// Headers are merged over the client's default headers.
	Headers map[string]string

	// Query is appended to the request URL.
	Query url.Values

	// Body is serialized as JSON when non-nil.
	Body interface{}
}

// Response is the status metadata of a completed request. The decoded
// payload, if any, is written to the out argument of Request.
type Response struct {
	StatusCode int
	Header     http.Header

	// Body is the raw response body. For JSON responses the decoded form
	// is usually what callers want; Body is kept for non-JSON content
	// and error reporting.
	Body []byte
}

// Request performs one HTTP request against the login-scoped base URL.
// path is relative to "/:login"; an empty path addresses the account
// itself. When out is non-nil and the response carries a JSON body, the
// body is decoded into out.
//
// A 401 response on a signed request triggers at most one recovery
// attempt: the signer swaps its credential source (file to agent or back)
// and the request is repeated. A second 401, or a 401 with no alternate
// source available, surfaces as ErrAuthenticationFailed.
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions, out interface{}) (*Response, error) {
	u := c.baseURL + "/" + url.PathEscape(c.login)
	if path != "" {
		u += "/" + path
	}
	return c.do(ctx, method, u, opts, out)
}

// RequestUnscoped performs a request against the bare endpoint, outside the
// login scope. Used for the API description document.
func (c *Client) RequestUnscoped(ctx context.Context, method, path string, opts *RequestOptions, out interface{}) (*Response, error) {
	u := c.baseURL
	if path != "" {
		u += "/" + path
	}
	return c.do(ctx, method, u, opts, out)
}

func (c *Client) do(ctx context.Context, method, fullURL string, opts *RequestOptions, out interface{}) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	if len(opts.Query) > 0 {
		fullURL += "?" + opts.Query.Encode()
	}

	var bodyBytes []byte
	if opts.Body != nil {
		var err error
		bodyBytes, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("cloudapi: encoding request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, fullURL, opts.Headers, bodyBytes)
	if err != nil {
		return nil, err
	}

	// Single recovery attempt: swap the credential source and repeat.
	if resp.StatusCode == http.StatusUnauthorized && c.signer != nil {
		if c.signer.CanSwap() && c.signer.SwapSource() {
			c.log.Debug("unauthorized response, retrying with swapped credential source",
				"method", method, "url", fullURL)
			resp, err = c.send(ctx, method, fullURL, opts.Headers, bodyBytes)
			if err != nil {
				return nil, err
			}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, errors.Join(ErrAuthenticationFailed, newAPIError(resp.StatusCode, resp.Body))
		}
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, resp.Body)
	}

	if out != nil && len(resp.Body) > 0 && isJSON(resp.Header.Get("Content-Type")) {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return nil, fmt.Errorf("cloudapi: decoding response: %w", err)
		}
	}
	return resp, nil
}

// send builds, signs, and dispatches a single request attempt.
func (c *Client) send(ctx context.Context, method, fullURL string, headers map[string]string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("cloudapi: building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Api-Version", c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if c.signer != nil {
		if err := c.signer.SignRequest(req); err != nil {
			return nil, err
		}
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudapi: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudapi: reading response: %w", err)
	}

	c.log.Debug("request", "method", method, "url", fullURL, "status", httpResp.StatusCode)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.TrimSpace(contentType), "application/json")
}
