package travel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/soyeahso/holiday/internal/version"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 8 << 20

// params builds sparse query parameters: optional values that are unset
// never produce a key.
type params struct {
	v url.Values
}

func newParams() *params { return &params{v: url.Values{}} }

// set always adds the key.
func (p *params) set(key, value string) *params {
	p.v.Set(key, value)
	return p
}

func (p *params) setInt(key string, n int) *params {
	return p.set(key, strconv.Itoa(n))
}

// optional adds the key only when value is non-empty.
func (p *params) optional(key, value string) *params {
	if value != "" {
		p.v.Set(key, value)
	}
	return p
}

// list adds one key per value, and nothing when values is empty.
func (p *params) list(key string, values []string) *params {
	for _, s := range values {
		p.v.Add(key, s)
	}
	return p
}

func (p *params) values() url.Values { return p.v }

// fetch performs req and returns the body of a successful response.
func fetch(client *http.Client, req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(body), 300))
	}
	return body, nil
}

// get issues a GET to endpoint with query parameters and an optional
// bearer token.
func get(ctx context.Context, client *http.Client, endpoint string, q url.Values, bearer string) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return fetch(client, req)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
