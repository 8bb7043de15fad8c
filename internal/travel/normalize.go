package travel

import (
	"fmt"
	"math"
	"strconv"
)

// Selection picks which flight offer becomes the itinerary.
type Selection string

const (
	// FirstOffer keeps the first offer in upstream order.
	FirstOffer Selection = "first"
	// CheapestOffer keeps the offer with the lowest total price. Ties go to
	// the earlier offer.
	CheapestOffer Selection = "cheapest"
)

// NormalizeForecast maps a forecast.json body to one ForecastDay per
// forecast day. A day without feelslike_c reports its average temperature;
// any other missing day field makes the whole payload malformed.
func NormalizeForecast(body []byte) ([]ForecastDay, error) {
	r, err := decodeForecast(body)
	if err != nil {
		return nil, err
	}

	days := make([]ForecastDay, 0, len(r.Forecast.ForecastDay))
	for i, d := range r.Forecast.ForecastDay {
		if err := checkForecastDay(i, d); err != nil {
			return nil, err
		}
		feels := *d.Day.AvgTempC
		if d.Day.FeelsLikeC != nil {
			feels = *d.Day.FeelsLikeC
		}
		days = append(days, ForecastDay{
			PlaceName:     r.Location.Name,
			Region:        r.Location.Region,
			Country:       r.Location.Country,
			Date:          *d.Date,
			AvgTempC:      *d.Day.AvgTempC,
			ConditionText: *d.Day.Condition.Text,
			PrecipMM:      *d.Day.TotalPrecipMM,
			HumidityPct:   *d.Day.AvgHumidity,
			FeelsLikeC:    feels,
		})
	}
	return days, nil
}

func checkForecastDay(i int, d forecastDayPayload) error {
	field := func(name string) error {
		return malformed(fmt.Sprintf("forecastday[%d].%s", i, name))
	}
	switch {
	case d.Date == nil:
		return field("date")
	case d.Day == nil:
		return field("day")
	case d.Day.AvgTempC == nil:
		return field("day.avgtemp_c")
	case d.Day.TotalPrecipMM == nil:
		return field("day.totalprecip_mm")
	case d.Day.AvgHumidity == nil:
		return field("day.avghumidity")
	case d.Day.Condition == nil || d.Day.Condition.Text == nil:
		return field("day.condition.text")
	}
	return nil
}

// NormalizeHotels maps a hotels-by-city body to one HotelSummary per hotel,
// preserving upstream order.
func NormalizeHotels(body []byte) ([]HotelSummary, error) {
	r, err := decodeHotels(body)
	if err != nil {
		return nil, err
	}

	hotels := make([]HotelSummary, 0, len(*r.Data))
	for i, h := range *r.Data {
		if h.Name == nil {
			return nil, malformed(fmt.Sprintf("data[%d].name", i))
		}
		if h.Distance == nil || h.Distance.Value == nil {
			return nil, malformed(fmt.Sprintf("data[%d].distance.value", i))
		}
		hotels = append(hotels, HotelSummary{
			HotelName:            *h.Name,
			DistanceFromCenterKM: *h.Distance.Value,
		})
	}
	return hotels, nil
}

// NormalizeFlights maps a flight-offers body to a single itinerary built
// from the offer chosen by sel. An empty offer list is ErrNoOffers.
func NormalizeFlights(body []byte, sel Selection) ([]FlightItinerary, error) {
	r, err := decodeOffers(body)
	if err != nil {
		return nil, err
	}
	offers := *r.Data
	if len(offers) == 0 {
		return nil, ErrNoOffers
	}

	offer := offers[selectOffer(offers, sel)]
	if offer.Price == nil {
		return nil, malformed("price")
	}

	var steps []Segment
	for i, it := range offer.Itineraries {
		for j, s := range it.Segments {
			if err := checkSegment(i, j, s); err != nil {
				return nil, err
			}
			steps = append(steps, Segment{
				DepartureAirport: *s.Departure.IATACode,
				DepartureTime:    *s.Departure.At,
				ArrivalAirport:   *s.Arrival.IATACode,
				ArrivalTime:      *s.Arrival.At,
				FlightNumber:     *s.CarrierCode + " " + *s.Number,
				Duration:         *s.Duration,
				NumberOfStops:    s.NumberOfStops,
			})
		}
	}
	if steps == nil {
		steps = []Segment{}
	}

	return []FlightItinerary{{
		TravelSteps: steps,
		PriceInEuro: offer.Price.Total,
	}}, nil
}

func checkSegment(i, j int, s segmentPayload) error {
	field := func(name string) error {
		return malformed(fmt.Sprintf("itineraries[%d].segments[%d].%s", i, j, name))
	}
	switch {
	case !s.Departure.complete():
		return field("departure")
	case !s.Arrival.complete():
		return field("arrival")
	case s.CarrierCode == nil:
		return field("carrierCode")
	case s.Number == nil:
		return field("number")
	case s.Duration == nil:
		return field("duration")
	}
	return nil
}

func selectOffer(offers []offerPayload, sel Selection) int {
	if sel != CheapestOffer {
		return 0
	}
	best, bestPrice := 0, math.Inf(1)
	for i, o := range offers {
		if o.Price == nil {
			continue
		}
		p, err := strconv.ParseFloat(o.Price.Total, 64)
		if err != nil {
			continue
		}
		if p < bestPrice {
			best, bestPrice = i, p
		}
	}
	return best
}
