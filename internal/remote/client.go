package remote

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
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/susradar/internal/domain"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/store"
	"github.com/MrSnakeDoc/susradar/internal/utils"
)

const (
	apiPrefix  = "/api"
	healthPath = "/health"

	// DefaultTimeout applies when the caller context carries no deadline.
	DefaultTimeout = 10 * time.Second
)

// Options configures the sync client.
type Options struct {
	BaseURL    string        // sync server root, ex: http://localhost:5000
	Timeout    time.Duration // per-call timeout when the caller sets none
	HTTPClient *http.Client  // optional
}

// Status is a snapshot of the client for display.
type Status struct {
	State     State      `json:"-"`
	StateName string     `json:"state"`
	Username  string     `json:"username,omitempty"`
	ServerURL string     `json:"server_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Client talks to the remote sync server and tracks connectivity and credentials.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	creds   store.CredentialStore
	logger  logger.Logger
	now     func() time.Time

	mu       sync.RWMutex
	online   bool
	token    string
	username string
}

// NewClient builds a client. It starts offline until a probe succeeds.
func NewClient(opts Options, creds store.CredentialStore, log logger.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: timeout,
		creds:   creds,
		logger:  log.With(logger.String("component", "sync")),
		now:     time.Now,
	}
}

// BaseURL returns the sync server root.
func (c *Client) BaseURL() string { return c.baseURL }

// State returns the current state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return computeState(c.online, c.token)
}

// Status describes the client for the UI.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := computeState(c.online, c.token)
	status := Status{
		State:     st,
		StateName: st.String(),
		Username:  c.username,
		ServerURL: c.baseURL,
	}
	if exp, ok := tokenExpiry(c.token); ok {
		status.ExpiresAt = &exp
	}
	return status
}

// SetOnline records a connectivity event and reports whether the client just came online.
func (c *Client) SetOnline(online bool) (cameOnline bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cameOnline = online && !c.online
	if online != c.online {
		c.logger.Info("sync server connectivity changed",
			logger.Bool("online", online),
			logger.String("server", c.baseURL))
	}
	c.online = online
	return cameOnline
}

// Probe checks /health and updates the connectivity state.
func (c *Client) Probe(ctx context.Context) (cameOnline bool) {
	err := c.Health(ctx)
	if err != nil {
		c.logger.Debug("sync server health check failed", logger.Error(err))
	}
	return c.SetOnline(err == nil)
}

// Restore loads persisted credentials. Tokens that are already expired, or that
// belong to another server, are discarded. When online the token is verified.
func (c *Client) Restore(ctx context.Context) error {
	creds, err := c.creds.LoadCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds.Token == "" {
		return nil
	}

	if creds.ServerURL != "" && strings.TrimRight(creds.ServerURL, "/") != c.baseURL {
		c.logger.Info("stored token belongs to another sync server, discarding",
			logger.String("stored", creds.ServerURL),
			logger.String("configured", c.baseURL))
		return c.clearCredentials(ctx)
	}

	if exp, ok := tokenExpiry(creds.Token); ok && !exp.After(c.now()) {
		c.logger.Info("stored token expired, discarding", logger.String("username", creds.Username))
		return c.clearCredentials(ctx)
	}

	c.mu.Lock()
	c.token = creds.Token
	c.username = creds.Username
	online := c.online
	c.mu.Unlock()

	if online {
		if _, err := c.FetchData(ctx); err != nil && !errors.Is(err, domain.ErrAuthenticationFailed) {
			c.logger.Warn("could not verify stored token", logger.Error(err))
		}
	}
	return nil
}

// Register creates an account on the sync server.
func (c *Client) Register(ctx context.Context, username, password string) error {
	if !c.isOnline() {
		return fmt.Errorf("register: %w", domain.ErrNetworkUnavailable)
	}
	return c.do(ctx, http.MethodPost, apiPrefix+"/register", credentialsRequest{username, password}, nil, false)
}

// Login authenticates and persists the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if !c.isOnline() {
		return nil, fmt.Errorf("login: %w", domain.ErrNetworkUnavailable)
	}

	var res LoginResult
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/login", credentialsRequest{username, password}, &res, false); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, &domain.RemoteError{Status: http.StatusOK, Message: "login response carried no token"}
	}
	if res.Username == "" {
		res.Username = username
	}

	c.mu.Lock()
	c.token = res.Token
	c.username = res.Username
	c.mu.Unlock()

	err := c.creds.SaveCredentials(ctx, store.Credentials{
		Token:     res.Token,
		Username:  res.Username,
		ServerURL: c.baseURL,
	})
	if err != nil {
		// The session still works for this run.
		c.logger.Warn("failed to persist credentials", logger.Error(err))
	}

	c.logger.Info("logged in to sync server", logger.String("username", res.Username))
	return &res, nil
}

// Logout forgets the credentials. No server call is needed.
func (c *Client) Logout(ctx context.Context) error {
	return c.clearCredentials(ctx)
}

// Health calls GET /health. It does not depend on the current state.
func (c *Client) Health(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, healthPath, nil, nil, "")
}

// FetchData downloads the server copy of the dataset.
func (c *Client) FetchData(ctx context.Context) (*domain.Dataset, error) {
	var p dataPayload
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/data", nil, &p, true); err != nil {
		return nil, err
	}
	return p.dataset(), nil
}

// PushData overwrites the server copy with ds.
func (c *Client) PushData(ctx context.Context, ds *domain.Dataset) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/data", toPayload(ds), nil, true)
}

// Reconcile sends the full local dataset and returns the merged result.
func (c *Client) Reconcile(ctx context.Context, ds *domain.Dataset) (*domain.Dataset, error) {
	var res syncResponse
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/data/sync", toPayload(ds), &res, true); err != nil {
		return nil, err
	}
	merged, err := res.merged()
	if err != nil {
		return nil, &domain.RemoteError{Status: http.StatusBadGateway, Message: err.Error()}
	}
	return merged, nil
}

// DeleteCompany deletes a company on the server.
func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/companies/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) isOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// do checks the state, then performs an API call.
func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	c.mu.RLock()
	online, token := c.online, c.token
	c.mu.RUnlock()

	if !online {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNetworkUnavailable)
	}
	if auth && token == "" {
		return fmt.Errorf("%s %s: %w: not logged in", method, path, domain.ErrAuthenticationFailed)
	}
	if !auth {
		token = ""
	}
	return c.send(ctx, method, path, body, out, token)
}

// send performs the HTTP exchange and maps failures onto the error taxonomy.
func (c *Client) send(ctx context.Context, method, path string, body, out any, token string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w: request timed out", method, path, domain.ErrNetworkUnavailable)
		}
		return fmt.Errorf("%s %s: %w: %v", method, path, domain.ErrNetworkUnavailable, err)
	}
	defer utils.Close(resp.Body)

	c.logger.Debug("sync server call",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		msg := extractError(resp.Body)
		if token != "" {
			c.logger.Warn("sync server rejected token, clearing credentials", logger.String("reason", msg))
			if err := c.clearCredentials(context.WithoutCancel(ctx)); err != nil {
				c.logger.Warn("failed to clear credentials", logger.Error(err))
			}
		}
		return fmt.Errorf("%s %s: %w: %s", method, path, domain.ErrAuthenticationFailed, msg)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.RemoteError{Status: resp.StatusCode, Message: extractError(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return &domain.RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("could not decode response: %v", err)}
		}
	}
	return nil
}

// clearCredentials drops the session in memory and in the credential store.
func (c *Client) clearCredentials(ctx context.Context) error {
	c.mu.Lock()
	c.token = ""
	c.username = ""
	c.mu.Unlock()

	if err := c.creds.ClearCredentials(ctx); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func extractError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// tokenExpiry reads the exp claim without verifying the signature; the server
// remains the authority on validity.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
