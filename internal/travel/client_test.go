package travel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/logging"
)

// upstream is a fake of every API the client talks to.
type upstream struct {
	t *testing.T

	mu       sync.Mutex
	queries  map[string]url.Values
	auth     map[string]string
	handlers map[string]http.HandlerFunc

	tokenCalls atomic.Int32
	tokenFail  bool
}

func newUpstream(t *testing.T) (*upstream, *httptest.Server) {
	u := &upstream{
		t:        t,
		queries:  map[string]url.Values{},
		auth:     map[string]string{},
		handlers: map[string]http.HandlerFunc{},
	}
	srv := httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(srv.Close)
	return u, srv
}

func (u *upstream) respond(path, body string) {
	u.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func (u *upstream) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/v1/security/oauth2/token" {
		u.serveToken(w, r)
		return
	}
	u.mu.Lock()
	u.queries[r.URL.Path] = r.URL.Query()
	u.auth[r.URL.Path] = r.Header.Get("Authorization")
	h := u.handlers[r.URL.Path]
	u.mu.Unlock()

	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (u *upstream) serveToken(w http.ResponseWriter, r *http.Request) {
	n := u.tokenCalls.Add(1)
	if u.tokenFail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid_client", "error_description": "Client credentials are invalid"}`))
		return
	}
	assert.NoError(u.t, r.ParseForm())
	assert.Equal(u.t, "client_credentials", r.PostForm.Get("grant_type"))
	assert.Equal(u.t, "test-id", r.PostForm.Get("client_id"))
	assert.Equal(u.t, "test-secret", r.PostForm.Get("client_secret"))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":         "amadeusOAuth2Token",
		"access_token": "tok-" + string(rune('0'+n)),
		"token_type":   "Bearer",
		"expires_in":   1799,
	})
}

func (u *upstream) query(path string) url.Values {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.queries[path]
}

func (u *upstream) authHeader(path string) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.auth[path]
}

type stubNews struct {
	results []NewsResult
	err     error
	query   string
}

func (s *stubNews) Search(_ context.Context, query string) ([]NewsResult, error) {
	s.query = query
	return s.results, s.err
}

func newTestClient(srv *httptest.Server, policy Policy, sel Selection, news NewsSearcher, cacheTokens bool) *Client {
	return NewClient(Options{
		WeatherKey:     "wkey",
		WeatherBaseURL: srv.URL,
		AmadeusBaseURL: srv.URL,
		Tokens:         NewClientCredentials(srv.URL, "test-id", "test-secret", srv.Client(), cacheTokens),
		News:           news,
		HTTPClient:     srv.Client(),
		Policy:         policy,
		Selection:      sel,
		Log:            logging.New(nil, "silent"),
	})
}

func TestForecast(t *testing.T) {
	up, srv := newUpstream(t)
	up.respond("/forecast.json", parisForecast)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	days := c.Forecast(context.Background(), "Paris", 2)
	require.Len(t, days, 2)
	assert.Equal(t, "France", days[0].Country)
	assert.Equal(t, "France", days[1].Country)

	q := up.query("/forecast.json")
	assert.Equal(t, "wkey", q.Get("key"))
	assert.Equal(t, "Paris", q.Get("q"))
	assert.Equal(t, "2", q.Get("days"))
}

func TestForecast_SoftFails(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"location": `))
		},
		"unknown city": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": {"code": 1006, "message": "No matching location found."}}`))
		},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			up, srv := newUpstream(t)
			up.handlers["/forecast.json"] = h
			c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)
			assert.Nil(t, c.Forecast(context.Background(), "Atlantis", 1))
		})
	}
}

func TestForecast_NetworkError(t *testing.T) {
	_, srv := newUpstream(t)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)
	srv.Close()
	assert.Nil(t, c.Forecast(context.Background(), "Paris", 1))
}

func TestForecast_DaysOutOfRange(t *testing.T) {
	up, srv := newUpstream(t)
	up.respond("/forecast.json", parisForecast)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	assert.Nil(t, c.Forecast(context.Background(), "Paris", 0))
	assert.Nil(t, c.Forecast(context.Background(), "Paris", 5))
	assert.Nil(t, up.query("/forecast.json"), "no request is made")
}

func TestHotels(t *testing.T) {
	up, srv := newUpstream(t)
	up.respond("/v1/reference-data/locations/hotels/by-city", romeHotels)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	hotels, err := c.Hotels(context.Background(), HotelQuery{
		CityCode:  "ROM",
		RadiusKM:  5,
		Amenities: []string{"SPA", "WIFI"},
		Ratings:   []string{"4", "5"},
	})
	require.NoError(t, err)
	require.Len(t, hotels, 3)
	assert.Equal(t, "HOTEL COLOSSEO", hotels[0].HotelName)
	assert.Equal(t, "VILLA BORGHESE SUITES", hotels[2].HotelName)

	path := "/v1/reference-data/locations/hotels/by-city"
	q := up.query(path)
	assert.Equal(t, "ROM", q.Get("cityCode"))
	assert.Equal(t, "5", q.Get("radius"))
	assert.Equal(t, "KM", q.Get("radiusUnit"))
	assert.Equal(t, []string{"SPA", "WIFI"}, q["amenities"])
	assert.Equal(t, []string{"4", "5"}, q["ratings"])
	assert.Equal(t, "Bearer tok-1", up.authHeader(path))
}

func TestHotels_SparseParams(t *testing.T) {
	path := "/v1/reference-data/locations/hotels/by-city"
	tests := []struct {
		name      string
		amenities []string
		ratings   []string
		wantKeys  []string
	}{
		{"none", nil, nil, []string{"cityCode", "radius", "radiusUnit"}},
		{"empty lists", []string{}, []string{}, []string{"cityCode", "radius", "radiusUnit"}},
		{"amenities only", []string{"PARKING"}, nil, []string{"amenities", "cityCode", "radius", "radiusUnit"}},
		{"ratings only", nil, []string{"3"}, []string{"cityCode", "radius", "radiusUnit", "ratings"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, srv := newUpstream(t)
			up.respond(path, `{"data": []}`)
			c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

			hotels, err := c.Hotels(context.Background(), HotelQuery{
				CityCode: "PAR", RadiusKM: 2, Amenities: tt.amenities, Ratings: tt.ratings,
			})
			require.NoError(t, err)
			assert.NotNil(t, hotels)
			assert.ElementsMatch(t, tt.wantKeys, keys(up.query(path)))
		})
	}
}

func TestHotels_GuardedFailure(t *testing.T) {
	path := "/v1/reference-data/locations/hotels/by-city"
	for _, policy := range []Policy{PolicyLegacy, PolicySoft} {
		t.Run(string(policy), func(t *testing.T) {
			up, srv := newUpstream(t)
			up.respond(path, `{"errors": [{"status": 400, "code": 895, "title": "NOTHING FOUND FOR REQUESTED CITY"}]}`)
			c := newTestClient(srv, policy, FirstOffer, nil, false)

			hotels, err := c.Hotels(context.Background(), HotelQuery{CityCode: "XXX", RadiusKM: 1})
			assert.NoError(t, err)
			assert.Nil(t, hotels)
		})
	}
}

func TestHotels_TokenFailure(t *testing.T) {
	path := "/v1/reference-data/locations/hotels/by-city"

	t.Run("legacy propagates", func(t *testing.T) {
		up, srv := newUpstream(t)
		up.tokenFail = true
		up.respond(path, romeHotels)
		c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

		hotels, err := c.Hotels(context.Background(), HotelQuery{CityCode: "ROM", RadiusKM: 5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amadeus token")
		assert.Nil(t, hotels)
		assert.Nil(t, up.query(path), "search is never attempted")
	})

	t.Run("soft returns no result", func(t *testing.T) {
		up, srv := newUpstream(t)
		up.tokenFail = true
		c := newTestClient(srv, PolicySoft, FirstOffer, nil, false)

		hotels, err := c.Hotels(context.Background(), HotelQuery{CityCode: "ROM", RadiusKM: 5})
		assert.NoError(t, err)
		assert.Nil(t, hotels)
	})
}

func TestFlights(t *testing.T) {
	path := "/v2/shopping/flight-offers"
	up, srv := newUpstream(t)
	up.respond(path, roundTripOffers)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	its, err := c.Flights(context.Background(), FlightQuery{
		Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", ReturnDate: "2026-06-08", Adults: 2,
	})
	require.NoError(t, err)
	require.Len(t, its, 1)
	assert.Len(t, its[0].TravelSteps, 3)
	assert.Equal(t, "412.30", its[0].PriceInEuro)

	q := up.query(path)
	assert.Equal(t, "ROM", q.Get("originLocationCode"))
	assert.Equal(t, "PAR", q.Get("destinationLocationCode"))
	assert.Equal(t, "2026-06-01", q.Get("departureDate"))
	assert.Equal(t, "2026-06-08", q.Get("returnDate"))
	assert.Equal(t, "2", q.Get("adults"))
	assert.Equal(t, "false", q.Get("nonStop"))
	assert.Equal(t, "1", q.Get("max"))
	assert.Equal(t, "Bearer tok-1", up.authHeader(path))
}

func TestFlights_OneWayOmitsReturnDate(t *testing.T) {
	path := "/v2/shopping/flight-offers"
	up, srv := newUpstream(t)
	up.respond(path, roundTripOffers)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	_, err := c.Flights(context.Background(), FlightQuery{
		Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", Adults: 1,
	})
	require.NoError(t, err)

	q := up.query(path)
	_, present := q["returnDate"]
	assert.False(t, present)
	assert.ElementsMatch(t, []string{
		"originLocationCode", "destinationLocationCode", "departureDate", "adults", "nonStop", "max",
	}, keys(q))
}

func TestFlights_EmptyOffers(t *testing.T) {
	up, srv := newUpstream(t)
	up.respond("/v2/shopping/flight-offers", `{"meta": {"count": 0}, "data": []}`)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	its, err := c.Flights(context.Background(), FlightQuery{
		Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", Adults: 1,
	})
	assert.NoError(t, err)
	assert.Nil(t, its)
}

func TestFlights_SoftFails(t *testing.T) {
	path := "/v2/shopping/flight-offers"
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [`))
		},
		"error envelope": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors": [{"status": 400, "code": 425, "title": "INVALID DATE"}]}`))
		},
		"incomplete segment": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [{"itineraries": [{"segments": [{}]}], "price": {"total": "10.00"}}]}`))
		},
	}
	fq := FlightQuery{Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", Adults: 1}
	for name, h := range tests {
		for _, policy := range []Policy{PolicyLegacy, PolicySoft} {
			t.Run(name+"/"+string(policy), func(t *testing.T) {
				up, srv := newUpstream(t)
				up.handlers[path] = h
				c := newTestClient(srv, policy, FirstOffer, nil, false)

				its, err := c.Flights(context.Background(), fq)
				assert.NoError(t, err)
				assert.Nil(t, its)
			})
		}
	}
}

func TestFlights_NetworkError(t *testing.T) {
	up, srv := newUpstream(t)
	up.handlers["/v2/shopping/flight-offers"] = func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !assert.True(t, ok) {
			return
		}
		conn, _, err := hj.Hijack()
		if assert.NoError(t, err) {
			_ = conn.Close()
		}
	}
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	its, err := c.Flights(context.Background(), FlightQuery{
		Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", Adults: 1,
	})
	assert.NoError(t, err)
	assert.Nil(t, its)
	assert.Equal(t, int32(1), up.tokenCalls.Load(), "token is obtained before the failing search")
}

func TestFlights_CheapestRequestsPool(t *testing.T) {
	path := "/v2/shopping/flight-offers"
	up, srv := newUpstream(t)
	up.respond(path, roundTripOffers)
	c := newTestClient(srv, PolicyLegacy, CheapestOffer, nil, false)

	its, err := c.Flights(context.Background(), FlightQuery{
		Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", Adults: 1,
	})
	require.NoError(t, err)
	require.Len(t, its, 1)
	assert.Equal(t, "98.00", its[0].PriceInEuro)
	assert.Equal(t, "10", up.query(path).Get("max"))
}

func TestTokensMintedPerCall(t *testing.T) {
	up, srv := newUpstream(t)
	up.respond("/v2/shopping/flight-offers", roundTripOffers)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, false)

	fq := FlightQuery{Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", Adults: 1}
	_, err := c.Flights(context.Background(), fq)
	require.NoError(t, err)
	_, err = c.Flights(context.Background(), fq)
	require.NoError(t, err)

	assert.Equal(t, int32(2), up.tokenCalls.Load())
	assert.Equal(t, "Bearer tok-2", up.authHeader("/v2/shopping/flight-offers"))
}

func TestTokensCached(t *testing.T) {
	up, srv := newUpstream(t)
	up.respond("/v2/shopping/flight-offers", roundTripOffers)
	c := newTestClient(srv, PolicyLegacy, FirstOffer, nil, true)

	fq := FlightQuery{Origin: "ROM", Destination: "PAR", DepartureDate: "2026-06-01", Adults: 1}
	for range 3 {
		_, err := c.Flights(context.Background(), fq)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), up.tokenCalls.Load())
}

func TestNews(t *testing.T) {
	_, srv := newUpstream(t)
	news := &stubNews{results: []NewsResult{
		{"title": "Rome transit strike", "url": "https://example.com/a", "score": 0.91},
	}}
	c := newTestClient(srv, PolicyLegacy, FirstOffer, news, false)

	results, err := c.News(context.Background(), "Rome events this week")
	require.NoError(t, err)
	assert.Equal(t, news.results, results)
	assert.Equal(t, "Rome events this week", news.query)
}

func TestNews_FailurePolicy(t *testing.T) {
	_, srv := newUpstream(t)
	boom := errors.New("tavily search: API error (status 500)")

	legacy := newTestClient(srv, PolicyLegacy, FirstOffer, &stubNews{err: boom}, false)
	_, err := legacy.News(context.Background(), "Paris")
	assert.ErrorIs(t, err, boom)

	soft := newTestClient(srv, PolicySoft, FirstOffer, &stubNews{err: boom}, false)
	results, err := soft.News(context.Background(), "Paris")
	assert.NoError(t, err)
	assert.Nil(t, results)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Tools.FailurePolicy = config.PolicySoft
	cfg.Tools.FlightSelection = config.SelectCheapest
	cfg.Amadeus.CacheTokens = true

	c := FromConfig(&cfg, logging.New(nil, "silent"))
	assert.Equal(t, PolicySoft, c.Policy())
	assert.Equal(t, CheapestOffer, c.opts.Selection)
	assert.Equal(t, cfg.ToolTimeout(), c.http.Timeout)

	cc, ok := c.opts.Tokens.(*ClientCredentials)
	require.True(t, ok)
	assert.True(t, cc.Cached())
	assert.IsType(t, &Tavily{}, c.opts.News)
}

func keys(v url.Values) []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	return out
}
