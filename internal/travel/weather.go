package travel

import (
	"context"
	"fmt"
	"strconv"
)

// Forecast returns one ForecastDay per requested day for city, or nil when
// the lookup fails for any reason.
func (c *Client) Forecast(ctx context.Context, city string, days int) []ForecastDay {
	c.log.Debug().Str("city", city).Int("days", days).Msg("fetching forecast")

	out, err := c.forecast(ctx, city, days)
	if err != nil {
		c.noResult("forecast", err)
		return nil
	}
	return out
}

func (c *Client) forecast(ctx context.Context, city string, days int) ([]ForecastDay, error) {
	if days < 1 || days > MaxForecastDays {
		return nil, fmt.Errorf("days must be 1-%d, got %d", MaxForecastDays, days)
	}
	q := newParams().
		set("key", c.opts.WeatherKey).
		set("q", city).
		set("days", strconv.Itoa(days))

	body, err := get(ctx, c.http, c.endpoint(c.opts.WeatherBaseURL, "/forecast.json"), q.values(), "")
	if err != nil {
		return nil, err
	}
	return NormalizeForecast(body)
}
