package sunapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jacobrsyntaxindustries/sunapi-go/internal/logging"
)

// Client issues authenticated requests against one device. All feature
// modules created from a client share its transport and session.
//
// The session is mutated only by Login, Logout, and the 401 re-login path;
// concurrent requests racing past EnsureAuthenticated may each log in, and
// the last login wins (see SessionManager).
type Client struct {
	config     Config
	httpClient *http.Client
	sessions   *SessionManager
}

// Option customizes a Client at construction time
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The configured
// timeout is not applied to a replacement client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSession makes the client use an existing session manager so that
// several clients share one login.
func WithSession(sm *SessionManager) Option {
	return func(c *Client) {
		c.sessions = sm
	}
}

// NewClient creates a client for the device described by cfg. Zero-valued
// settings take their defaults (port 80, http, 30s timeout).
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sessions:   NewSessionManager(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromURL creates a client from a full base URL such as
// "http://192.168.1.100:8080".
func NewClientFromURL(rawURL, username, password string, opts ...Option) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil, NewValidationError("invalid device URL: " + rawURL)
	}

	port := DefaultPort
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, NewValidationError("invalid device URL port: " + p)
		}
	}

	cfg := Config{
		Host:     u.Hostname(),
		Port:     port,
		Protocol: u.Scheme,
		Username: username,
		Password: password,
	}
	return NewClient(cfg, opts...)
}

// Config returns the connection settings the client was built with
func (c *Client) Config() Config {
	return c.config
}

// Sessions returns the session manager backing this client
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// BaseURL returns the scheme://host:port prefix for device requests
func (c *Client) BaseURL() string {
	return c.config.BaseURL()
}

// rawResponse is one completed HTTP exchange.
type rawResponse struct {
	status      int
	body        []byte
	contentType string
}

// send performs a single HTTP exchange with the current credentials
// attached. Transport failures come back already classified.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}) (*rawResponse, error) {
	u := c.config.BaseURL() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, NewValidationError("request body is not encodable: " + err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, NewConnectionError("failed to create request", err, c.config.Host)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if session, ok := c.sessions.Current(); ok {
		req.Header.Set("Authorization", "Bearer "+session.Token)
		if session.SessionID != "" {
			req.Header.Set("X-Session-ID", session.SessionID)
		}
	}

	logging.LogRequest(method, u)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyTransport(err, c.config.Host)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError("failed to read response body", err, c.config.Host)
	}

	logging.LogResponse(method, u, resp.StatusCode, time.Since(start))

	return &rawResponse{
		status:      resp.StatusCode,
		body:        data,
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}

// exchange runs the authenticated request pipeline for one logical call:
// ensure a session, dispatch, and intercept a single 401 with one re-login
// and one retry. A second 401 is returned as a classified failure without
// another login attempt.
//
// clsErr carries classified failures destined for the result envelope.
// err is reserved for the mandatory-authentication path: without a session
// no envelope can be produced, so login failures propagate as hard errors.
func (c *Client) exchange(ctx context.Context, method, path string, query url.Values, body interface{}) (resp *rawResponse, clsErr *Error, err error) {
	if err := c.EnsureAuthenticated(ctx); err != nil {
		return nil, nil, err
	}

	resp, sendErr := c.send(ctx, method, path, query, body)
	if sendErr != nil {
		// Transport failures are terminal; no retry logic applies
		return nil, toClassified(sendErr, c.config.Host), nil
	}

	if resp.status == http.StatusUnauthorized {
		logging.LogRelogin(c.config.BaseURL() + path)
		c.sessions.Invalidate()
		if err := c.Login(ctx); err != nil {
			return nil, nil, err
		}

		resp, sendErr = c.send(ctx, method, path, query, body)
		if sendErr != nil {
			return nil, toClassified(sendErr, c.config.Host), nil
		}
	}

	if resp.status < 200 || resp.status >= 300 {
		return nil, ClassifyStatus(resp.status, resp.body), nil
	}
	return resp, nil, nil
}

// toClassified coerces an arbitrary failure into a classified error
func toClassified(err error, address string) *Error {
	var clsErr *Error
	if errors.As(err, &clsErr) {
		return clsErr
	}
	return ClassifyTransport(err, address)
}

// Do issues an authenticated request and decodes the JSON response into T.
// Every failure except a mandatory-authentication one is captured in the
// envelope; the error return is non-nil only when no session could be
// established (initial login or mid-request re-login failing).
func Do[T any](ctx context.Context, c *Client, method, path string, body interface{}, query url.Values) (Result[T], error) {
	resp, clsErr, err := c.exchange(ctx, method, path, query, body)
	if err != nil {
		return Fail[T](err), err
	}
	if clsErr != nil {
		return Fail[T](clsErr), nil
	}

	var data T
	if len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, &data); err != nil {
			return Fail[T](&Error{
				Kind:       KindAPI,
				Message:    "undecodable device response",
				StatusCode: resp.status,
				Err:        err,
			}), nil
		}
	}
	return OK(data), nil
}

// Raw issues an authenticated request and returns the JSON response
// without decoding it into a typed record.
func (c *Client) Raw(ctx context.Context, method, path string, body interface{}, query url.Values) (Result[json.RawMessage], error) {
	resp, clsErr, err := c.exchange(ctx, method, path, query, body)
	if err != nil {
		return Fail[json.RawMessage](err), err
	}
	if clsErr != nil {
		return Fail[json.RawMessage](clsErr), nil
	}

	payload := bytes.TrimSpace(resp.body)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if !json.Valid(payload) {
		quoted, _ := json.Marshal(string(payload))
		payload = quoted
	}
	return OK(json.RawMessage(payload)), nil
}

// Binary is the payload of an endpoint that returns raw bytes, such as a
// snapshot image.
type Binary struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// RawBytes issues an authenticated request for a binary endpoint and
// returns the payload without JSON decoding.
func (c *Client) RawBytes(ctx context.Context, method, path string, query url.Values) (Result[Binary], error) {
	resp, clsErr, err := c.exchange(ctx, method, path, query, nil)
	if err != nil {
		return Fail[Binary](err), err
	}
	if clsErr != nil {
		return Fail[Binary](clsErr), nil
	}

	return OK(Binary{
		ContentType: resp.contentType,
		Data:        resp.body,
	}), nil
}

// get is the shorthand the feature modules use for JSON view endpoints
func get(ctx context.Context, c *Client, path string, query url.Values) (Result[map[string]interface{}], error) {
	return Do[map[string]interface{}](ctx, c, http.MethodGet, path, nil, query)
}

// post is the shorthand the feature modules use for control endpoints
func post(ctx context.Context, c *Client, path string, body interface{}, query url.Values) (Result[Ack], error) {
	return Do[Ack](ctx, c, http.MethodPost, path, body, query)
}
