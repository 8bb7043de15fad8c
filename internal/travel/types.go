package travel

// ForecastDay is one day of a city forecast, flattened with the place fields.
type ForecastDay struct {
	PlaceName     string  `json:"place_name"`
	Region        string  `json:"region"`
	Country       string  `json:"country"`
	Date          string  `json:"date"`
	AvgTempC      float64 `json:"avg_temp_c"`
	ConditionText string  `json:"condition_text"`
	PrecipMM      float64 `json:"precip_mm"`
	HumidityPct   float64 `json:"humidity_pct"`
	FeelsLikeC    float64 `json:"feelslike_c"`
}

// NewsResult is a search result record passed through from the provider.
type NewsResult = map[string]any

// HotelSummary is one hotel from a search-by-city response.
type HotelSummary struct {
	HotelName            string  `json:"hotel_name"`
	DistanceFromCenterKM float64 `json:"distance_from_center_km"`
}

// Segment is one flight leg of an offer.
type Segment struct {
	DepartureAirport string `json:"departure_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalAirport   string `json:"arrival_airport"`
	ArrivalTime      string `json:"arrival_time"`
	FlightNumber     string `json:"flight_number"`
	Duration         string `json:"duration"`
	NumberOfStops    int    `json:"number_of_stops"`
}

// FlightItinerary is the single selected offer. TravelSteps holds the
// segments of every itinerary of that offer in order; outbound and return
// legs are not separated.
type FlightItinerary struct {
	TravelSteps []Segment `json:"travel_steps"`
	PriceInEuro string    `json:"price_in_euro"`
}

// HotelQuery holds the arguments of a hotel search. Nil or empty
// Amenities/Ratings are left out of the upstream request entirely.
type HotelQuery struct {
	CityCode  string
	RadiusKM  int
	Amenities []string
	Ratings   []string
}

// FlightQuery holds the arguments of a flight offer search. An empty
// ReturnDate means one-way and is not sent upstream.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
}

// Amenities lists the amenity codes accepted by the hotel search.
var Amenities = []string{
	"SWIMMING_POOL", "SPA", "FITNESS_CENTER", "AIR_CONDITIONING", "RESTAURANT",
	"PARKING", "PETS_ALLOWED", "AIRPORT_SHUTTLE", "BUSINESS_CENTER", "DISABLED_FACILITIES",
	"WIFI", "MEETING_ROOMS", "NO_KID_ALLOWED", "TENNIS", "GOLF", "KITCHEN",
	"ANIMAL_WATCHING", "BABY-SITTING", "BEACH", "CASINO", "JACUZZI", "SAUNA",
	"SOLARIUM", "MASSAGE", "VALET_PARKING", "BAR or LOUNGE", "KIDS_WELCOME",
	"NO_PORN_FILMS", "MINIBAR", "TELEVISION", "WI-FI_IN_ROOM", "ROOM_SERVICE",
	"GUARDED_PARKG", "SERV_SPEC_MENU",
}

// Ratings lists the star ratings accepted by the hotel search.
var Ratings = []string{"1", "2", "3", "4", "5"}

// MaxForecastDays is the longest forecast the weather tool serves.
const MaxForecastDays = 4
