package travel

import (
	"context"
	"errors"
)

var errNoTokenSource = errors.New("no amadeus token source configured")

// News returns the search provider's results for query. Under the legacy
// policy a provider failure is returned as an error.
func (c *Client) News(ctx context.Context, query string) ([]NewsResult, error) {
	c.log.Debug().Str("query", query).Msg("searching news")

	if c.opts.News == nil {
		err := errors.New("no news searcher configured")
		if c.hardFail("news", err) {
			return nil, err
		}
		return nil, nil
	}
	results, err := c.opts.News.Search(ctx, query)
	if err != nil {
		if c.hardFail("news", err) {
			return nil, err
		}
		return nil, nil
	}
	return results, nil
}

// Hotels lists hotels around a city. The error is non-nil only when the
// token exchange fails under the legacy policy; every later failure is a
// nil result.
func (c *Client) Hotels(ctx context.Context, hq HotelQuery) ([]HotelSummary, error) {
	c.log.Debug().Str("city", hq.CityCode).Int("radius_km", hq.RadiusKM).Msg("searching hotels")

	tok, ok, err := c.bearer(ctx, "hotels")
	if !ok {
		return nil, err
	}

	q := newParams().
		set("cityCode", hq.CityCode).
		setInt("radius", hq.RadiusKM).
		set("radiusUnit", "KM").
		list("amenities", hq.Amenities).
		list("ratings", hq.Ratings)

	body, err := get(ctx, c.http,
		c.endpoint(c.opts.AmadeusBaseURL, "/v1/reference-data/locations/hotels/by-city"), q.values(), tok)
	if err != nil {
		c.noResult("hotels", err)
		return nil, nil
	}
	hotels, err := NormalizeHotels(body)
	if err != nil {
		c.noResult("hotels", err)
		return nil, nil
	}
	return hotels, nil
}

// Flights searches offers and returns a one-element slice built from the
// selected offer. The error follows the same rule as Hotels. An empty offer
// list is a nil result.
func (c *Client) Flights(ctx context.Context, fq FlightQuery) ([]FlightItinerary, error) {
	c.log.Debug().
		Str("origin", fq.Origin).
		Str("destination", fq.Destination).
		Str("departure", fq.DepartureDate).
		Msg("searching flights")

	tok, ok, err := c.bearer(ctx, "flights")
	if !ok {
		return nil, err
	}

	q := newParams().
		set("originLocationCode", fq.Origin).
		set("destinationLocationCode", fq.Destination).
		set("departureDate", fq.DepartureDate).
		optional("returnDate", fq.ReturnDate).
		setInt("adults", fq.Adults).
		set("nonStop", "false").
		setInt("max", c.offerPool())

	body, err := get(ctx, c.http,
		c.endpoint(c.opts.AmadeusBaseURL, "/v2/shopping/flight-offers"), q.values(), tok)
	if err != nil {
		c.noResult("flights", err)
		return nil, nil
	}
	itineraries, err := NormalizeFlights(body, c.opts.Selection)
	if err != nil {
		c.noResult("flights", err)
		return nil, nil
	}
	return itineraries, nil
}

// cheapestPool is how many offers are requested when the cheapest one is
// selected. First-offer selection asks for exactly one.
const cheapestPool = 10

func (c *Client) offerPool() int {
	if c.opts.Selection == CheapestOffer {
		return cheapestPool
	}
	return 1
}
