package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_search/internal/adapters/observability"
	"hotel_search/internal/domain"
	"hotel_search/internal/retry"
)

const (
	hotelsByGeocodePath = "/v1/reference-data/locations/hotels/by-geocode"
	hotelOffersPath     = "/v3/shopping/hotel-offers"

	// upstream rejects offer requests with more than 20 hotel ids
	maxOfferHotelIDs = 20
)

// Client executes authenticated searches against the Amadeus API with
// client-side rate limiting and the shared upstream retry policy.
type Client struct {
	base   string
	hc     *http.Client
	rl     *rate.Limiter
	policy retry.Policy
}

func New(base string, timeout time.Duration, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		hc:     &http.Client{Timeout: timeout},
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
		policy: retry.Upstream,
	}
}

func (c *Client) SearchHotels(ctx context.Context, token string, q domain.HotelSearchQuery) (domain.SearchResult, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.Radius))
	params.Set("radiusUnit", q.RadiusUnit)
	if len(q.Amenities) > 0 {
		params.Set("amenities", strings.ToUpper(strings.Join(q.Amenities, ",")))
	}
	if len(q.Ratings) > 0 {
		rs := make([]string, len(q.Ratings))
		for i, r := range q.Ratings {
			rs[i] = strconv.Itoa(r)
		}
		params.Set("ratings", strings.Join(rs, ","))
	}
	return c.get(ctx, token, hotelsByGeocodePath, "by-geocode", params)
}

func (c *Client) SearchRoomOffers(ctx context.Context, token string, q domain.RoomOffersQuery) (domain.SearchResult, error) {
	ids := q.HotelIDs
	if len(ids) > maxOfferHotelIDs {
		ids = ids[:maxOfferHotelIDs]
	}
	params := url.Values{}
	params.Set("hotelIds", strings.Join(ids, ","))
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("checkInDate", q.CheckInDate)
	if q.CheckOutDate != "" {
		params.Set("checkOutDate", q.CheckOutDate)
	}
	if q.RoomQuantity > 0 {
		params.Set("roomQuantity", strconv.Itoa(q.RoomQuantity))
	}
	if q.Currency != "" {
		params.Set("currency", q.Currency)
	}
	return c.get(ctx, token, hotelOffersPath, "hotel-offers", params)
}

// get performs the authenticated GET. 200 parses into the payload, 400/404
// are valid empty-result outcomes, anything else is retried on the shared
// policy and surfaces as *domain.UpstreamError once attempts run out.
func (c *Client) get(ctx context.Context, token, path, endpoint string, params url.Values) (domain.SearchResult, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.SearchResult{}, err
	}

	target := c.base + path + "?" + params.Encode()
	var out domain.SearchResult
	err := retry.Do(ctx, c.policy, func() error {
		// fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-search/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		defer resp.Body.Close()
		observability.ObserveExternal("amadeus", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			var payload map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return err
			}
			out = domain.SearchResult{Status: http.StatusOK, Payload: payload}
			return nil

		case http.StatusBadRequest, http.StatusNotFound:
			io.Copy(io.Discard, resp.Body)
			out = domain.SearchResult{Status: resp.StatusCode}
			return nil

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &retry.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
	})
	if err != nil {
		var se *retry.StatusError
		if errors.As(err, &se) {
			return domain.SearchResult{}, &domain.UpstreamError{Status: se.Status, Body: se.Body, Err: err}
		}
		return domain.SearchResult{}, &domain.UpstreamError{Err: err}
	}
	return out, nil
}
