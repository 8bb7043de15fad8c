// Package tools exposes the travel lookups as agent tools. Each tool
// validates its JSON arguments against its own schema before calling out,
// and answers with JSON where "null" means the lookup found nothing.
package tools

import (
	"context"
	"strings"

	"github.com/soyeahso/holiday/internal/agent"
	"github.com/soyeahso/holiday/internal/travel"
)

// Tool names as seen by the model.
const (
	WeatherName = "get_weather_info"
	NewsName    = "get_recent_news"
	HotelsName  = "get_hotels"
	FlightsName = "get_flights"
)

// Lookups is the travel API surface the tools call. *travel.Client
// implements it.
type Lookups interface {
	Forecast(ctx context.Context, city string, days int) []travel.ForecastDay
	News(ctx context.Context, query string) ([]travel.NewsResult, error)
	Hotels(ctx context.Context, q travel.HotelQuery) ([]travel.HotelSummary, error)
	Flights(ctx context.Context, q travel.FlightQuery) ([]travel.FlightItinerary, error)
}

// All returns the four travel tools backed by l.
func All(l Lookups) []agent.Tool {
	return []agent.Tool{
		NewWeather(l),
		NewNews(l),
		NewHotels(l),
		NewFlights(l),
	}
}

// NewRegistry returns a tool registry holding All(l).
func NewRegistry(l Lookups) *agent.ToolRegistry {
	reg := agent.NewToolRegistry()
	for _, t := range All(l) {
		reg.Register(t)
	}
	return reg
}

// --- get_weather_info ---

type weatherArgs struct {
	City         string `json:"city"`
	NumberOfDays int    `json:"number_of_days"`
}

// Weather is the get_weather_info tool.
type Weather struct {
	lookups Lookups
	v       *validator
}

var weatherSchema = object([]string{"city", "number_of_days"}, map[string]any{
	"city": stringProp("Name of the city to search for."),
	"number_of_days": map[string]any{
		"type":        "integer",
		"description": "Number of forecast days. 1 means today only; the maximum is 4.",
		"enum":        []int{1, 2, 3, 4},
	},
})

// NewWeather returns the get_weather_info tool backed by l.
func NewWeather(l Lookups) *Weather {
	return &Weather{lookups: l, v: mustValidator(WeatherName, weatherSchema)}
}

// Name returns the tool name the model calls.
func (t *Weather) Name() string { return WeatherName }

// Description tells the model when to use the tool.
func (t *Weather) Description() string {
	return "Get the daily weather forecast for a city: temperature, condition, precipitation and humidity."
}

// InputSchema returns the JSON Schema of the tool arguments.
func (t *Weather) InputSchema() map[string]any { return weatherSchema }

// Execute validates input and looks up the forecast. An unknown city or upstream failure yields null.
func (t *Weather) Execute(ctx context.Context, input string) (string, error) {
	var args weatherArgs
	if err := t.v.decode(input, &args); err != nil {
		return "", err
	}
	return encode(t.lookups.Forecast(ctx, args.City, args.NumberOfDays))
}

// --- get_recent_news ---

type newsArgs struct {
	Query string `json:"query"`
}

// News is the get_recent_news tool.
type News struct {
	lookups Lookups
	v       *validator
}

var newsSchema = object([]string{"query"}, map[string]any{
	"query": map[string]any{
		"type":        "string",
		"description": "The news to search for on the internet.",
		"minLength":   1,
	},
})

// NewNews returns the get_recent_news tool backed by l.
func NewNews(l Lookups) *News {
	return &News{lookups: l, v: mustValidator(NewsName, newsSchema)}
}

// Name returns the tool name the model calls.
func (t *News) Name() string { return NewsName }

// Description tells the model when to use the tool.
func (t *News) Description() string {
	return "Get the most relevant recent news for a place, aimed at tourists."
}

// InputSchema returns the JSON Schema of the tool arguments.
func (t *News) InputSchema() map[string]any { return newsSchema }

// Execute validates input and searches recent news. Search failures are returned as errors.
func (t *News) Execute(ctx context.Context, input string) (string, error) {
	var args newsArgs
	if err := t.v.decode(input, &args); err != nil {
		return "", err
	}
	results, err := t.lookups.News(ctx, args.Query)
	if err != nil {
		return "", err
	}
	return encode(results)
}

// --- get_hotels ---

type hotelsArgs struct {
	City         string   `json:"city"`
	KMFromCenter int      `json:"km_from_center"`
	Amenities    []string `json:"amenities"`
	Ratings      []string `json:"ratings"`
}

// Hotels is the get_hotels tool.
type Hotels struct {
	lookups Lookups
	v       *validator
}

var hotelsSchema = object([]string{"city", "km_from_center"}, map[string]any{
	"city": iataProp("IATA code of the city, for example ROM (Rome) or PAR (Paris)."),
	"km_from_center": map[string]any{
		"type":        "integer",
		"description": "Search radius from the city center in kilometers.",
		"minimum":     1,
	},
	"amenities": enumList("Optional amenities the hotel must offer, for example [\"PARKING\"].", travel.Amenities),
	"ratings":   enumList("Optional star ratings to include, as strings.", travel.Ratings),
})

// NewHotels returns the get_hotels tool backed by l.
func NewHotels(l Lookups) *Hotels {
	return &Hotels{lookups: l, v: mustValidator(HotelsName, hotelsSchema)}
}

// Name returns the tool name the model calls.
func (t *Hotels) Name() string { return HotelsName }

// Description tells the model when to use the tool.
func (t *Hotels) Description() string {
	return "Search hotels around a city center and return their names and distance from the center."
}

// InputSchema returns the JSON Schema of the tool arguments.
func (t *Hotels) InputSchema() map[string]any { return hotelsSchema }

// Execute validates input and searches hotels around the city center.
func (t *Hotels) Execute(ctx context.Context, input string) (string, error) {
	var args hotelsArgs
	if err := t.v.decode(input, &args); err != nil {
		return "", err
	}
	hotels, err := t.lookups.Hotels(ctx, travel.HotelQuery{
		CityCode:  strings.ToUpper(args.City),
		RadiusKM:  args.KMFromCenter,
		Amenities: args.Amenities,
		Ratings:   args.Ratings,
	})
	if err != nil {
		return "", err
	}
	return encode(hotels)
}

// --- get_flights ---

type flightsArgs struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date"`
	ReturnDate    *string `json:"return_date"`
	Adults        int     `json:"adults"`
}

// Flights is the get_flights tool.
type Flights struct {
	lookups Lookups
	v       *validator
}

var flightsSchema = object([]string{"origin", "destination", "departure_date", "adults"}, map[string]any{
	"origin":         iataProp("IATA code of the departure city, e.g. ROM or PAR."),
	"destination":    iataProp("IATA code of the arrival city, e.g. ROM or PAR."),
	"departure_date": dateProp("Departure date in the format yyyy-mm-dd.", false),
	"return_date":    dateProp("Optional return date in the format yyyy-mm-dd. Omit for a one-way trip.", true),
	"adults": map[string]any{
		"type":        "integer",
		"description": "Number of adults to book for.",
		"minimum":     1,
	},
})

// NewFlights returns the get_flights tool backed by l.
func NewFlights(l Lookups) *Flights {
	return &Flights{lookups: l, v: mustValidator(FlightsName, flightsSchema)}
}

// Name returns the tool name the model calls.
func (t *Flights) Name() string { return FlightsName }

// Description tells the model when to use the tool.
func (t *Flights) Description() string {
	return "Find a flight offer from an origin to a destination with its price in euro. " +
		"Use it only when the user asks about flights."
}

// InputSchema returns the JSON Schema of the tool arguments.
func (t *Flights) InputSchema() map[string]any { return flightsSchema }

// Execute validates input and searches a flight offer. A missing return_date means a one-way trip.
func (t *Flights) Execute(ctx context.Context, input string) (string, error) {
	var args flightsArgs
	if err := t.v.decode(input, &args); err != nil {
		return "", err
	}
	q := travel.FlightQuery{
		Origin:        strings.ToUpper(args.Origin),
		Destination:   strings.ToUpper(args.Destination),
		DepartureDate: args.DepartureDate,
		Adults:        args.Adults,
	}
	if args.ReturnDate != nil {
		q.ReturnDate = *args.ReturnDate
	}
	flights, err := t.lookups.Flights(ctx, q)
	if err != nil {
		return "", err
	}
	return encode(flights)
}
