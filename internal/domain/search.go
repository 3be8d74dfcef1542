package domain

// Envelope is the {status, response} wrapper returned for every API result.
type Envelope struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

// SearchResult is the raw outcome of an upstream call before envelope shaping.
// Payload is nil for the empty-result statuses (400/404).
type SearchResult struct {
	Status  int
	Payload map[string]any
}

type HotelSearchQuery struct {
	Latitude   float64
	Longitude  float64
	Radius     int
	RadiusUnit string // KM|MILE
	Amenities  []string
	Ratings    []int
}

type RoomOffersQuery struct {
	HotelIDs     []string // upstream accepts at most 20
	Adults       int
	CheckInDate  string // YYYY-MM-DD
	CheckOutDate string
	RoomQuantity int
	Currency     string
}
