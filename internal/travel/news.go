package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// NewsSearcher runs a web news search and returns the provider's raw
// result records.
type NewsSearcher interface {
	Search(ctx context.Context, query string) ([]NewsResult, error)
}

// TavilyOptions configures a Tavily search client.
type TavilyOptions struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Topic      string
	Depth      string
}

// Tavily is a NewsSearcher backed by the Tavily search API.
type Tavily struct {
	opts   TavilyOptions
	client *http.Client
}

// NewTavily creates a Tavily client.
func NewTavily(opts TavilyOptions, client *http.Client) *Tavily {
	if client == nil {
		client = http.DefaultClient
	}
	return &Tavily{opts: opts, client: client}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	Topic       string `json:"topic"`
	SearchDepth string `json:"search_depth"`
}

type tavilyResponse struct {
	Query   string        `json:"query"`
	Results *[]NewsResult `json:"results"`
}

// Search posts the query to /search and unwraps the results field.
func (t *Tavily) Search(ctx context.Context, query string) ([]NewsResult, error) {
	payload, err := json.Marshal(tavilyRequest{
		Query:       query,
		MaxResults:  t.opts.MaxResults,
		Topic:       t.opts.Topic,
		SearchDepth: t.opts.Depth,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(t.opts.BaseURL, "/")+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.opts.APIKey)

	body, err := fetch(t.client, req)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}

	var resp tavilyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("tavily search: failed to parse response: %w", err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("tavily search: %w", malformed("results"))
	}
	return *resp.Results, nil
}
