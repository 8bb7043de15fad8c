package travel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Upstream payloads. Fields the normalizers depend on are pointers or
// slices so a missing field can be told apart from a zero value.

type forecastResponse struct {
	Location *struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Forecast *struct {
		ForecastDay []forecastDayPayload `json:"forecastday"`
	} `json:"forecast"`
}

type forecastDayPayload struct {
	Date *string `json:"date"`
	Day  *struct {
		AvgTempC      *float64 `json:"avgtemp_c"`
		TotalPrecipMM *float64 `json:"totalprecip_mm"`
		AvgHumidity   *float64 `json:"avghumidity"`
		FeelsLikeC    *float64 `json:"feelslike_c"`
		Condition     *struct {
			Text *string `json:"text"`
		} `json:"condition"`
	} `json:"day"`
}

type hotelsResponse struct {
	Data *[]hotelPayload `json:"data"`
}

type hotelPayload struct {
	Name     *string `json:"name"`
	Distance *struct {
		Value *float64 `json:"value"`
		Unit  string   `json:"unit"`
	} `json:"distance"`
}

type offersResponse struct {
	Data *[]offerPayload `json:"data"`
}

type offerPayload struct {
	Itineraries []struct {
		Duration string           `json:"duration"`
		Segments []segmentPayload `json:"segments"`
	} `json:"itineraries"`
	Price *struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
}

type segmentPayload struct {
	Departure     *endpointPayload `json:"departure"`
	Arrival       *endpointPayload `json:"arrival"`
	CarrierCode   *string          `json:"carrierCode"`
	Number        *string          `json:"number"`
	Duration      *string          `json:"duration"`
	NumberOfStops int              `json:"numberOfStops"`
}

type endpointPayload struct {
	IATACode *string `json:"iataCode"`
	At       *string `json:"at"`
}

func (e *endpointPayload) complete() bool {
	return e != nil && e.IATACode != nil && e.At != nil
}

// ErrNoOffers is returned when a flight search yields no offers.
var ErrNoOffers = errors.New("no flight offers")

// ErrMalformed marks an upstream payload missing a required envelope.
var ErrMalformed = errors.New("malformed upstream response")

func malformed(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformed, field)
}

// decodeForecast parses a forecast.json body and checks its envelope.
func decodeForecast(body []byte) (*forecastResponse, error) {
	var r forecastResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	if r.Location == nil {
		return nil, malformed("location")
	}
	if r.Forecast == nil || r.Forecast.ForecastDay == nil {
		return nil, malformed("forecast.forecastday")
	}
	return &r, nil
}

// decodeHotels parses a hotels-by-city body and checks its envelope.
func decodeHotels(body []byte) (*hotelsResponse, error) {
	var r hotelsResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decoding hotels: %w", err)
	}
	if r.Data == nil {
		return nil, malformed("data")
	}
	return &r, nil
}

// decodeOffers parses a flight-offers body and checks its envelope.
func decodeOffers(body []byte) (*offersResponse, error) {
	var r offersResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decoding flight offers: %w", err)
	}
	if r.Data == nil {
		return nil, malformed("data")
	}
	return &r, nil
}
