package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_search/internal/app"
	"hotel_search/internal/domain"
)

type Handlers struct {
	S *app.SearchService
	V *validator.Validate
}

func NewHandlers(s *app.SearchService) *Handlers {
	return &Handlers{S: s, V: validator.New(validator.WithRequiredStructEnabled())}
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/api/hotels", h.listHotels)
	s.mux.Post("/api/hotels/room-offers", h.roomOffers)
	s.mux.Post("/api/hotels/hotels-and-rooms", h.hotelsAndRooms)
}

// ---- request schemas ----

type hotelSearchRequest struct {
	Latitude   *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude  *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Radius     *int     `json:"radius" validate:"required,min=0"`
	RadiusUnit string   `json:"radiusUnit" validate:"omitempty,oneof=KM MILE"`
	Amenities  []string `json:"amenities"`
	Ratings    []int    `json:"ratings" validate:"omitempty,dive,min=1,max=5"`
}

func (r hotelSearchRequest) toQuery() domain.HotelSearchQuery {
	unit := r.RadiusUnit
	if unit == "" {
		unit = "KM"
	}
	return domain.HotelSearchQuery{
		Latitude:   *r.Latitude,
		Longitude:  *r.Longitude,
		Radius:     *r.Radius,
		RadiusUnit: unit,
		Amenities:  r.Amenities,
		Ratings:    r.Ratings,
	}
}

type roomOffersRequest struct {
	HotelIDs     []string `json:"hotelIds" validate:"required,min=1,dive,required"`
	Adults       int      `json:"adults" validate:"omitempty,min=1,max=9"`
	CheckInDate  string   `json:"checkInDate" validate:"required,datetime=2006-01-02"`
	CheckOutDate string   `json:"checkOutDate" validate:"omitempty,datetime=2006-01-02"`
	RoomQuantity int      `json:"roomQuantity" validate:"omitempty,min=1,max=9"`
	Currency     string   `json:"currency" validate:"omitempty,len=3"`
}

func (r roomOffersRequest) toQuery() domain.RoomOffersQuery {
	q := domain.RoomOffersQuery{
		HotelIDs:     r.HotelIDs,
		Adults:       r.Adults,
		CheckInDate:  r.CheckInDate,
		CheckOutDate: r.CheckOutDate,
		RoomQuantity: r.RoomQuantity,
		Currency:     r.Currency,
	}
	if q.Adults == 0 {
		q.Adults = 1
	}
	if q.Currency == "" {
		q.Currency = "USD"
	}
	return q
}

type hotelsAndRoomsRequest struct {
	Latitude     *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Radius       *int     `json:"radius" validate:"required,min=0"`
	RadiusUnit   string   `json:"radiusUnit" validate:"omitempty,oneof=KM MILE"`
	Amenities    []string `json:"amenities"`
	Ratings      []int    `json:"ratings" validate:"omitempty,dive,min=1,max=5"`
	Adults       int      `json:"adults" validate:"omitempty,min=1,max=9"`
	CheckInDate  string   `json:"checkInDate" validate:"omitempty,datetime=2006-01-02"`
	CheckOutDate string   `json:"checkOutDate" validate:"omitempty,datetime=2006-01-02"`
	RoomQuantity int      `json:"roomQuantity" validate:"omitempty,min=1,max=9"`
	Currency     string   `json:"currency" validate:"omitempty,len=3"`
}

// ---- handlers ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	var req hotelSearchRequest
	if !h.decode(w, r, &req) {
		return
	}
	env, err := h.S.ListHotels(r.Context(), req.toQuery())
	if err != nil {
		writeUpstreamProblem(w, err)
		return
	}
	writeJSON(w, env)
}

func (h *Handlers) roomOffers(w http.ResponseWriter, r *http.Request) {
	var req roomOffersRequest
	if !h.decode(w, r, &req) {
		return
	}
	env, err := h.S.RoomOffers(r.Context(), req.toQuery())
	if err != nil {
		writeUpstreamProblem(w, err)
		return
	}
	writeJSON(w, env)
}

func (h *Handlers) hotelsAndRooms(w http.ResponseWriter, r *http.Request) {
	var req hotelsAndRoomsRequest
	if !h.decode(w, r, &req) {
		return
	}
	search := hotelSearchRequest{
		Latitude: req.Latitude, Longitude: req.Longitude,
		Radius: req.Radius, RadiusUnit: req.RadiusUnit,
		Amenities: req.Amenities, Ratings: req.Ratings,
	}
	offers := roomOffersRequest{
		Adults:       req.Adults,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
		RoomQuantity: req.RoomQuantity,
		Currency:     req.Currency,
	}
	oq := offers.toQuery()
	if oq.CheckInDate == "" {
		oq.CheckInDate = time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	}
	env, err := h.S.HotelsWithRooms(r.Context(), search.toQuery(), oq)
	if err != nil {
		writeUpstreamProblem(w, err)
		return
	}
	writeJSON(w, env)
}

// decode parses and validates the JSON body, writing the problem response
// itself on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be valid JSON")
		return false
	}
	if err := h.V.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

// ---- response helpers ----

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeUpstreamProblem maps the error taxonomy onto HTTP: upstream statuses
// pass through, network-level failures become 500s.
func writeUpstreamProblem(w http.ResponseWriter, err error) {
	var ae *domain.AuthError
	var ue *domain.UpstreamError
	switch {
	case errors.As(err, &ae):
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		log.Error().Err(err).Msg("token acquisition failed")
		writeProblem(w, status, "Upstream Auth Failed", ae.Body)
	case errors.As(err, &ue):
		status := ue.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		log.Error().Err(err).Msg("hotel search failed")
		writeProblem(w, status, "Upstream Error", ue.Body)
	default:
		log.Error().Err(err).Msg("unexpected search failure")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "failed to fetch hotels")
	}
}
