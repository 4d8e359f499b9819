package triageapi

import (
	"context"
	"sync"
)

// TokenSource supplies the bearer credential for authenticated calls. Auth
// mechanics live behind this boundary; the workflows only consume it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a TokenSource that always yields token, e.g. one
// obtained by the hosting application's own login flow.
func StaticTokenSource(token string) TokenSource {
	return staticToken(token)
}

type staticToken string

func (t staticToken) Token(ctx context.Context) (string, error) {
	return string(t), nil
}

// ClientCredentials is a TokenSource that logs in lazily with the stored
// credentials and caches the token for subsequent calls.
type ClientCredentials struct {
	client   *Client
	email    string
	password string

	mu    sync.Mutex
	token string
}

// NewClientCredentials builds a lazy, caching TokenSource backed by
// POST /api/auth/login.
func NewClientCredentials(client *Client, email, password string) *ClientCredentials {
	return &ClientCredentials{client: client, email: email, password: password}
}

// Token returns the cached bearer token, logging in on first use.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	token, err := c.client.Login(ctx, c.email, c.password)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

// Invalidate drops the cached token so the next call logs in again, e.g.
// after the server rejects the credential.
func (c *ClientCredentials) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
