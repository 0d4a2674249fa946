// Package gateway is the single outbound request path for the data layer.
// Every call attaches the current bearer token, carries a fixed timeout, and
// returns failures normalized to the apierr taxonomy. An authorization
// failure clears the stored token and fires the registered logout hook once;
// callers never surface it as a data error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"fleetops/internal/apierr"
	"fleetops/internal/models"
	"fleetops/internal/utils"
)

const defaultTimeout = 10 * time.Second

// Client executes requests against the dashboard API.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *utils.Logger

	mu       sync.Mutex
	token    string
	onLogout func()
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Timeout time.Duration
	Logger  *utils.Logger
}

// NewClient builds a client for the given base URL, e.g. "http://127.0.0.1:8080/api".
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: opts.Timeout},
		log:     opts.Logger,
	}
}

// SetToken stores the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently stored bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// OnLogout registers the process-wide hook fired when a request is rejected
// as unauthorized.
func (c *Client) OnLogout(fn func()) {
	c.mu.Lock()
	c.onLogout = fn
	c.mu.Unlock()
}

// envelope is the wire wrapper around every API response body.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Get issues a GET with optional query parameters, decoding the envelope's
// data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do executes one request. body is JSON-encoded when non-nil; the response
// envelope's data is decoded into out when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierr.Wrap(apierr.Unknown, err, "encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apierr.Wrap(apierr.Unknown, err, "build request for %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return apierr.Wrap(apierr.Timeout, err, "request to %s timed out", path)
		}
		return apierr.Wrap(apierr.NetworkFailure, err, "request to %s failed", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
		return apierr.New(apierr.Unauthorized, "session no longer authorized")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierr.Wrap(apierr.NetworkFailure, err, "read response from %s", path)
	}

	var env envelope
	if len(raw) > 0 {
		// A non-envelope body on an error status still maps to the
		// taxonomy below; decode failures only matter on success.
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return apierr.Wrap(apierr.Unknown, err, "decode response from %s", path)
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apierr.New(apierr.NotFound, "%s", envMessage(env, "resource not found"))
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return apierr.New(apierr.ValidationFailure, "%s", envMessage(env, "request rejected"))
	case resp.StatusCode >= 400:
		return apierr.New(apierr.Unknown, "%s", envMessage(env, fmt.Sprintf("request failed with status %d", resp.StatusCode)))
	}

	if !env.Success {
		return apierr.New(apierr.Unknown, "%s", envMessage(env, "request reported failure"))
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apierr.Wrap(apierr.Unknown, err, "decode payload from %s", path)
		}
	}
	return nil
}

// Login authenticates against the API and stores the minted token on success.
func (c *Client) Login(ctx context.Context, username, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.Post(ctx, "/auth/login", models.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return models.LoginResponse{}, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

// Validate checks the stored token against the API.
func (c *Client) Validate(ctx context.Context) (models.SessionUser, error) {
	var user models.SessionUser
	if err := c.Get(ctx, "/auth/validate", nil, &user); err != nil {
		return models.SessionUser{}, err
	}
	return user, nil
}

// handleUnauthorized clears the stored token and fires the logout hook. The
// hook fires only on the transition out of an authenticated session, so a
// burst of concurrent 401s produces a single logout.
func (c *Client) handleUnauthorized() {
	c.mu.Lock()
	hadToken := c.token != ""
	c.token = ""
	fn := c.onLogout
	c.mu.Unlock()

	if hadToken {
		if c.log != nil {
			c.log.Write("gateway: session rejected, clearing credentials")
		}
		if fn != nil {
			fn()
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func envMessage(env envelope, fallback string) string {
	if env.Error != "" {
		return env.Error
	}
	if env.Message != "" {
		return env.Message
	}
	return fallback
}
