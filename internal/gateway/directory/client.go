// Package directory is the gateway's client for the user directory
// service. Every call authenticates with a short-lived service token.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrNotFound    = errors.New("directory: user not found")
	ErrUnavailable = errors.New("directory: service unavailable")
)

// Identity is a user record as the directory reports it. PasswordHash is
// only present on login lookups.
type Identity struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	PasswordHash string   `json:"password_hash,omitempty"`
}

// Client is what the auth service needs from the directory. Split out as
// an interface so service tests can run against a fake.
type Client interface {
	// LookupByLogin resolves a username-or-email and includes the stored
	// password hash for credential verification.
	LookupByLogin(ctx context.Context, login string) (Identity, error)

	// LookupByID fetches the authoritative record for a subject ID.
	LookupByID(ctx context.Context, id string) (Identity, error)
}

// TokenSource supplies the service bearer token attached to outbound
// calls. The minter implements this.
type TokenSource interface {
	ServiceToken() (string, error)
}

// HTTPClient talks to a real directory instance over HTTP.
type HTTPClient struct {
	BaseURL string
	Tokens  TokenSource

	// HTTP is the underlying client. Nil means a client with a 5 second
	// timeout.
	HTTP *http.Client
}

func (c *HTTPClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 5 * time.Second}
}

func (c *HTTPClient) LookupByLogin(ctx context.Context, login string) (Identity, error) {
	return c.get(ctx, "/v1/users/lookup?login="+url.QueryEscape(login))
}

func (c *HTTPClient) LookupByID(ctx context.Context, id string) (Identity, error) {
	return c.get(ctx, "/v1/users/"+url.PathEscape(id))
}

func (c *HTTPClient) get(ctx context.Context, path string) (Identity, error) {
	token, err := c.Tokens.ServiceToken()
	if err != nil {
		return Identity{}, fmt.Errorf("directory: mint service token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("directory: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Identity{}, ErrNotFound
	default:
		return Identity{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return Identity{}, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return identity, nil
}
