// Package travel wraps the weather, news, hotel and flight APIs behind
// context-aware calls that return small, agent-friendly structures.
//
// Weather, hotel and flight lookups soft-fail: any error from the request
// through normalization is logged and reported as a nil result. Under the
// legacy policy the news search and the Amadeus token exchange still
// return their errors; the soft policy converts those to nil results too.
package travel

import (
	"context"
	"net/http"
	"strings"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/logging"
)

// Policy controls which failures become "no result".
type Policy string

const (
	// PolicyLegacy soft-fails only the guarded upstream call of weather,
	// hotels and flights. News and token errors propagate.
	PolicyLegacy Policy = config.PolicyLegacy
	// PolicySoft soft-fails every upstream error.
	PolicySoft Policy = config.PolicySoft
)

// Options configures a Client.
type Options struct {
	WeatherKey     string
	WeatherBaseURL string
	AmadeusBaseURL string
	Tokens         TokenSource
	News           NewsSearcher
	HTTPClient     *http.Client
	Policy         Policy
	Selection      Selection
	Log            *logging.Logger
}

// Client performs the four travel lookups.
type Client struct {
	opts Options
	http *http.Client
	log  *logging.Logger
}

// NewClient creates a Client. Zero-valued options fall back to the public
// endpoints, the legacy policy and first-offer selection.
func NewClient(opts Options) *Client {
	if opts.WeatherBaseURL == "" {
		opts.WeatherBaseURL = config.DefaultWeatherBaseURL
	}
	if opts.AmadeusBaseURL == "" {
		opts.AmadeusBaseURL = config.DefaultAmadeusBaseURL
	}
	if opts.Policy == "" {
		opts.Policy = PolicyLegacy
	}
	if opts.Selection == "" {
		opts.Selection = FirstOffer
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	return &Client{opts: opts, http: client, log: log.Sub("travel")}
}

// FromConfig wires a Client, its token source and its news searcher from
// a validated config. All upstream calls share one HTTP client whose
// timeout is tools.timeoutSeconds.
func FromConfig(cfg *config.Config, log *logging.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.ToolTimeout()}
	return NewClient(Options{
		WeatherKey:     cfg.Weather.APIKey,
		WeatherBaseURL: cfg.Weather.BaseURL,
		AmadeusBaseURL: cfg.Amadeus.BaseURL,
		Tokens: NewClientCredentials(cfg.Amadeus.BaseURL, cfg.Amadeus.ClientID,
			cfg.Amadeus.ClientSecret, httpClient, cfg.Amadeus.CacheTokens),
		News: NewTavily(TavilyOptions{
			APIKey:     cfg.Search.APIKey,
			BaseURL:    cfg.Search.BaseURL,
			MaxResults: cfg.Search.MaxResults,
			Topic:      cfg.Search.Topic,
			Depth:      cfg.Search.Depth,
		}, httpClient),
		HTTPClient: httpClient,
		Policy:     Policy(cfg.Tools.FailurePolicy),
		Selection:  Selection(cfg.Tools.FlightSelection),
		Log:        log,
	})
}

// Policy returns the active failure policy.
func (c *Client) Policy() Policy { return c.opts.Policy }

// noResult logs a swallowed error.
func (c *Client) noResult(op string, err error) {
	c.log.Warn().Err(err).Str("op", op).Msg("upstream failed, returning no result")
}

// hardFail reports whether err must propagate under the active policy.
// Otherwise it logs err and the caller returns a nil result.
func (c *Client) hardFail(op string, err error) bool {
	if c.opts.Policy == PolicyLegacy {
		return true
	}
	c.noResult(op, err)
	return false
}

func (c *Client) endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// bearer obtains an Amadeus token. It runs outside the guarded region.
func (c *Client) bearer(ctx context.Context, op string) (string, bool, error) {
	if c.opts.Tokens == nil {
		err := errNoTokenSource
		if c.hardFail(op, err) {
			return "", false, err
		}
		return "", false, nil
	}
	tok, err := c.opts.Tokens.Token(ctx)
	if err != nil {
		if c.hardFail(op, err) {
			return "", false, err
		}
		return "", false, nil
	}
	return tok, true, nil
}
