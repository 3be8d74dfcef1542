package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_search/internal/domain"
)

const (
	noHotelsTitle          = "NO HOTELS FOUND FOR REQUESTED LOCATION"
	noOffersTitle          = "NO ROOM OFFERS FOUND FOR REQUESTED HOTELS"
	noHotelsForOffersTitle = "NO HOTELS FOUND, NO ROOM OFFERS FETCHED"
	noValidHotelIDsTitle   = "NO VALID HOTEL IDS FOUND"
)

// SearchService is the core-facing contract for the routing layer: validated
// query in, {status, response} envelope out. Token acquisition, retries, and
// placeholder filtering happen behind it.
type SearchService struct {
	tokens   domain.TokenSource
	api      domain.SearchClient
	filter   *ListingFilter
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewSearchService(tokens domain.TokenSource, api domain.SearchClient, filter *ListingFilter, cache domain.Cache, ttl time.Duration) *SearchService {
	return &SearchService{tokens: tokens, api: api, filter: filter, cache: cache, cacheTTL: ttl}
}

// ListHotels searches hotels by geocode. 400/404 from upstream are empty
// results, not errors; anything else surfaces as AuthError/UpstreamError.
func (s *SearchService) ListHotels(ctx context.Context, q domain.HotelSearchQuery) (domain.Envelope, error) {
	key := hotelsCacheKey(q)
	if s.cache != nil {
		var env domain.Envelope
		if ok, _ := s.cache.Get(ctx, key, &env); ok {
			return env, nil
		}
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return domain.Envelope{}, err
	}
	res, err := s.api.SearchHotels(ctx, token, q)
	if err != nil {
		return domain.Envelope{}, err
	}

	if res.Status != http.StatusOK {
		return domain.Envelope{
			Status:   res.Status,
			Response: map[string]any{"title": noHotelsTitle},
		}, nil
	}

	cleaned := s.filter.Apply(res.Payload)
	if data, _ := cleaned["data"].([]any); len(data) == 0 {
		log.Info().
			Float64("lat", q.Latitude).
			Float64("lon", q.Longitude).
			Msg("no hotels found for given coordinates")
	}
	env := domain.Envelope{Status: http.StatusOK, Response: cleaned}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, env, int(s.cacheTTL.Seconds()))
	}
	return env, nil
}

// RoomOffers fetches room offers for up to 20 hotel ids. No filtering here;
// offer payloads pass through as-is.
func (s *SearchService) RoomOffers(ctx context.Context, q domain.RoomOffersQuery) (domain.Envelope, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return domain.Envelope{}, err
	}
	res, err := s.api.SearchRoomOffers(ctx, token, q)
	if err != nil {
		return domain.Envelope{}, err
	}
	if res.Status != http.StatusOK {
		return domain.Envelope{
			Status:   res.Status,
			Response: map[string]any{"title": noOffersTitle},
		}, nil
	}
	return domain.Envelope{Status: http.StatusOK, Response: res.Payload}, nil
}

// HotelsWithRooms chains the two searches: hotels by geocode, then offers for
// the ids that survived filtering.
func (s *SearchService) HotelsWithRooms(ctx context.Context, q domain.HotelSearchQuery, offers domain.RoomOffersQuery) (domain.Envelope, error) {
	hotels, err := s.ListHotels(ctx, q)
	if err != nil {
		return domain.Envelope{}, err
	}

	items := envelopeData(hotels)
	if len(items) == 0 {
		return domain.Envelope{
			Status:   http.StatusOK,
			Response: map[string]any{"title": noHotelsForOffersTitle},
		}, nil
	}

	ids := hotelIDs(items, 20)
	if len(ids) == 0 {
		return domain.Envelope{
			Status:   http.StatusOK,
			Response: map[string]any{"title": noValidHotelIDsTitle},
		}, nil
	}

	offers.HotelIDs = ids
	offerEnv, err := s.RoomOffers(ctx, offers)
	if err != nil {
		return domain.Envelope{}, err
	}

	return domain.Envelope{
		Status: http.StatusOK,
		Response: map[string]any{
			"hotels":      items,
			"room_offers": offerEnv.Response,
		},
	}, nil
}

func envelopeData(env domain.Envelope) []any {
	resp, _ := env.Response.(map[string]any)
	data, _ := resp["data"].([]any)
	return data
}

func hotelIDs(items []any, limit int) []string {
	ids := make([]string, 0, limit)
	for _, item := range items {
		if len(ids) == limit {
			break
		}
		m, _ := item.(map[string]any)
		if id, _ := m["hotelId"].(string); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func hotelsCacheKey(q domain.HotelSearchQuery) string {
	rs := make([]string, len(q.Ratings))
	for i, r := range q.Ratings {
		rs[i] = strconv.Itoa(r)
	}
	return fmt.Sprintf("hotels:%g:%g:%d:%s:%s:%s",
		q.Latitude, q.Longitude, q.Radius, q.RadiusUnit,
		strings.ToUpper(strings.Join(q.Amenities, ",")), strings.Join(rs, ","))
}
