package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// DefaultBaseURL is the production API.
const DefaultBaseURL = "https://nks-backend-mou5.onrender.com/api"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// SessionStore is the part of session.Store the client needs.
type SessionStore interface {
	Token() (string, bool)
	SetToken(token string)
	SetUser(p domain.Profile)
	Clear()
}

// Observer receives one call per completed request. Status is 0 when no
// response was received.
type Observer interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
	ObserveSessionExpired()
}

// Client is the NKS API client. It is the only place that attaches
// credentials to requests and the only place that reacts to a 401.
type Client struct {
	baseURL    string
	store      SessionStore
	httpClient *http.Client
	log        zerolog.Logger
	observer   Observer
	onExpired  func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithSessionExpiredHandler sets the navigation hook run after a 401 has
// cleared the session. The TUI uses it to switch to the login view.
func WithSessionExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

// New creates a new API client reading credentials from store.
func New(baseURL string, store SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// AuthHeaders returns {"Authorization": "Bearer <token>"} when a token is
// stored and an empty header set otherwise. It is computed on every call.
func (c *Client) AuthHeaders() http.Header {
	h := make(http.Header)
	if c.store == nil {
		return h
	}
	if tok, ok := c.store.Token(); ok {
		h.Set("Authorization", "Bearer "+tok)
	}
	return h
}

// AuthorizedRequest sends an authenticated request and returns the raw
// response for any status except 401. Caller headers are applied first,
// then the authorization header, then a JSON content type if none was given.
//
// A 401 clears the session, runs the expiry hook and returns
// ErrSessionExpired. Transport failures return a *NetworkError.
// The caller must close the body of a returned response.
func (c *Client) AuthorizedRequest(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range c.AuthHeaders() {
		req.Header[k] = vs
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // drain for reuse
		resp.Body.Close()                                            //nolint:errcheck // best-effort close
		c.expire(req)
		return nil, ErrSessionExpired
	}
	return resp, nil
}

// Logout clears the session. It is safe to call on an empty session.
func (c *Client) Logout() {
	if c.store != nil {
		c.store.Clear()
	}
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if c.observer != nil {
			c.observer.ObserveRequest(req.Method, 0, elapsed)
		}
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("do request: %w", ctxErr)
		}
		c.log.Info().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Str("request_id", reqID).Msg("request failed")
		return nil, &NetworkError{Err: err}
	}
	if c.observer != nil {
		c.observer.ObserveRequest(req.Method, resp.StatusCode, elapsed)
	}
	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", reqID).
		Msg("request")
	return resp, nil
}

func (c *Client) expire(req *http.Request) {
	c.log.Warn().Str("method", req.Method).Str("path", req.URL.Path).Msg("session expired")
	c.Logout()
	if c.observer != nil {
		c.observer.ObserveSessionExpired()
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

// --- Auth ---

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	Token   string          `json:"token"`
	User    *domain.Profile `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Login exchanges phone and password for a token and stores the session.
// A rejected login returns an *HTTPError carrying the server's message.
func (c *Client) Login(ctx context.Context, phone, password string) (*domain.Profile, error) {
	data, err := json.Marshal(map[string]string{"phone": phone, "password": password})
	if err != nil {
		return nil, fmt.Errorf("client.Login: marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("client.Login: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	var lr LoginResponse
	decErr := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&lr)
	if resp.StatusCode >= 300 || decErr != nil || lr.Token == "" {
		msg := lr.Message
		if msg == "" {
			msg = "Login failed"
		}
		status := resp.StatusCode
		if status < 300 {
			status = http.StatusBadGateway
		}
		return nil, fmt.Errorf("client.Login: %w", &HTTPError{StatusCode: status, Message: msg})
	}

	c.store.Clear()
	c.store.SetToken(lr.Token)
	if lr.User != nil {
		c.store.SetUser(*lr.User)
	}
	c.log.Info().Str("phone", phone).Msg("logged in")
	return lr.User, nil
}

// --- Dashboard ---

// DashboardStats returns the aggregate counts for the dashboard tiles.
func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.get(ctx, "/stats/dashboard", "stats", &stats); err != nil {
		return nil, fmt.Errorf("client.DashboardStats: %w", err)
	}
	return &stats, nil
}

// --- Users ---

// ListUsers returns every account. Role filtering happens client-side.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.get(ctx, "/auth/users", "users", &users); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return users, nil
}

func (c *Client) get(ctx context.Context, path, envelope string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, envelope, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, envelope string, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, reqBody, nil, envelope, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header, envelope string, out any) error {
	resp, err := c.AuthorizedRequest(ctx, method, path, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return readHTTPError(resp)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodeEnveloped(data, envelope, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		if apiErr.Message != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		if apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
	}
	msg := strings.TrimSpace(string(respBody))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
}

// decodeEnveloped decodes data into out. The API wraps most payloads as
// {"<envelope>": ...}; a bare payload is accepted too.
func decodeEnveloped(data []byte, envelope string, out any) error {
	if envelope != "" {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapped); err == nil {
			if inner, ok := wrapped[envelope]; ok {
				return json.Unmarshal(inner, out)
			}
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("invalid JSON at offset %d: %w", syntaxErr.Offset, err)
		}
		return err
	}
	return nil
}
