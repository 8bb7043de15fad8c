package travel

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSource mints bearer tokens for the Amadeus APIs.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentials obtains Amadeus tokens with the OAuth2
// client-credentials grant. Without caching every call performs a fresh
// exchange; with caching a token is reused until shortly before it expires.
type ClientCredentials struct {
	cfg    clientcredentials.Config
	client *http.Client
	cached oauth2.TokenSource
}

// NewClientCredentials builds a token source against baseURL's
// /v1/security/oauth2/token endpoint.
func NewClientCredentials(baseURL, clientID, clientSecret string, client *http.Client, cache bool) *ClientCredentials {
	if client == nil {
		client = http.DefaultClient
	}
	cc := &ClientCredentials{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     strings.TrimRight(baseURL, "/") + "/v1/security/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		client: client,
	}
	if cache {
		// The cached source outlives any single request, so it gets a
		// background context; the HTTP client still bounds each exchange.
		cc.cached = cc.cfg.TokenSource(cc.withClient(context.Background()))
	}
	return cc
}

// Token returns a bearer token.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	var (
		tok *oauth2.Token
		err error
	)
	if c.cached != nil {
		tok, err = c.cached.Token()
	} else {
		tok, err = c.cfg.Token(c.withClient(ctx))
	}
	if err != nil {
		return "", fmt.Errorf("obtaining amadeus token: %w", err)
	}
	return tok.AccessToken, nil
}

// Cached reports whether tokens are reused across calls.
func (c *ClientCredentials) Cached() bool { return c.cached != nil }

func (c *ClientCredentials) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.client)
}
