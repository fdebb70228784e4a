// Package api is the typed client for the stock management backend: REST
// endpoints returning JSON records with server-assigned integer ids and
// RFC 3339 timestamps. Mutating remote state from elsewhere is not
// supported; the per-resource services own the cache consistency story.
package api

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
)

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates against the backend and keeps the bearer token for
// all subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	var resp loginResponse

	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", loginRequest{
		Username: username,
		Password: password,
	}, &resp, "log in")
	if err != nil {
		return User{}, err
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()

	return resp.User, nil
}

// SetToken installs a previously obtained bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
}

type errorResponse struct {
	Error string `json:"error"`
}

// do runs one request. Remote rejections come back as *Error; transport
// failures are wrapped with the operation name.
func (c *Client) do(ctx context.Context, method, path string, body, out any, op string) error {
	var payload io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}

		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var detail errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&detail)

		return &Error{Status: resp.StatusCode, Op: op, Message: detail.Error}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}

	return nil
}
