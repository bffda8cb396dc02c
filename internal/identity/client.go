package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edusuite/backoffice/internal/session"
)

// Client talks to a hosted identity service over HTTPS+JSON. Transient
// failures (5xx, transport errors) are retried with exponential backoff;
// authentication rejections are permanent and surface as the package's
// sentinel errors. The client keeps the token of the current session so
// Revoke can target it, matching the collaborator contract where revoke
// takes no arguments.
type Client struct {
	base          string
	httpc         *http.Client
	maxTries      uint
	retryInterval time.Duration

	mu    sync.Mutex
	token string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. with the
// caching client from NewCachingHTTPClient.
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = httpc }
}

// WithMaxTries bounds retry attempts per call.
func WithMaxTries(n uint) ClientOption {
	return func(c *Client) { c.maxTries = n }
}

// WithRetryInterval sets the initial backoff interval between retries.
func WithRetryInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.retryInterval = d }
}

// NewClient creates an identity service client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("identity base URL is required")
	}
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		httpc:    http.DefaultClient,
		maxTries: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type verifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Principal principalPayload `json:"principal"`
	Token     string           `json:"token,omitempty"`
}

type principalPayload struct {
	ID      string            `json:"id"`
	Role    string            `json:"role"`
	Profile map[string]string `json:"profile,omitempty"`
}

// Verify checks credentials with the identity service.
func (c *Client) Verify(ctx context.Context, creds session.Credentials) (*session.Principal, error) {
	body, err := json.Marshal(verifyRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}
	resp, err := c.call(ctx, http.MethodPost, "/v1/sessions", body, "", ErrInvalidCredentials)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return decodePrincipal(resp.Principal)
}

// Resume validates a persisted token with the identity service.
func (c *Client) Resume(ctx context.Context, token string) (*session.Principal, error) {
	resp, err := c.call(ctx, http.MethodGet, "/v1/sessions/current", nil, token, ErrTokenInvalid)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return decodePrincipal(resp.Principal)
}

// Revoke invalidates the current session server-side. Without a current
// session it is a no-op.
func (c *Client) Revoke(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.token = ""
	c.mu.Unlock()
	if token == "" {
		return nil
	}

	_, err := c.call(ctx, http.MethodDelete, "/v1/sessions/current", nil, token, nil)
	return err
}

// Token returns the token of the current session, for persistence by the
// host application. Empty when no session is held.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// call performs one request with retry. rejection is the sentinel mapped
// onto a 401/403 response; nil treats rejections as success (revoke).
func (c *Client) call(ctx context.Context, method, path string, body []byte, bearer string, rejection error) (*sessionResponse, error) {
	op := func() (*sessionResponse, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		httpResp, err := c.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("identity request failed: %w", err)
		}
		defer httpResp.Body.Close()

		switch {
		case httpResp.StatusCode >= 500:
			return nil, fmt.Errorf("identity service unavailable: %s", httpResp.Status)
		case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
			if rejection == nil {
				return &sessionResponse{}, nil
			}
			return nil, backoff.Permanent(rejection)
		case httpResp.StatusCode == http.StatusGone:
			return nil, backoff.Permanent(ErrTokenExpired)
		case httpResp.StatusCode >= 400:
			return nil, backoff.Permanent(fmt.Errorf("identity request rejected: %s", httpResp.Status))
		}

		var resp sessionResponse
		if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
			if method == http.MethodDelete {
				return &sessionResponse{}, nil
			}
			return nil, backoff.Permanent(fmt.Errorf("failed to decode identity response: %w", err))
		}
		return &resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	if c.retryInterval > 0 {
		bo.InitialInterval = c.retryInterval
	}
	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("identity call failed")
		return nil, err
	}
	return resp, nil
}

func decodePrincipal(p principalPayload) (*session.Principal, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("identity returned invalid principal id: %w", err)
	}
	role, err := session.ParseRole(p.Role)
	if err != nil {
		return nil, fmt.Errorf("identity returned invalid principal: %w", err)
	}
	return &session.Principal{ID: id, Role: role, Profile: p.Profile}, nil
}
