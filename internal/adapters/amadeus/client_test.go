package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hotel_search/internal/domain"
	"hotel_search/internal/retry"
)

// millisecond backoff so retry tests stay fast
func testPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retryable:   retry.IsStatus,
	}
}

func testClient(base string) *Client {
	c := New(base, 2*time.Second, 100)
	c.policy = testPolicy()
	return c
}

func TestClient_SearchHotels_BuildsQueryAndAuth(t *testing.T) {
	var gotAuth string
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer ts.Close()

	res, err := testClient(ts.URL).SearchHotels(context.Background(), "tok-123", domain.HotelSearchQuery{
		Latitude:   48.8584,
		Longitude:  2.2945,
		Radius:     5,
		RadiusUnit: "KM",
		Amenities:  []string{"pool", "spa"},
		Ratings:    []int{3, 4},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Status != 200 {
		t.Fatalf("status: %d", res.Status)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("auth header: %q", gotAuth)
	}
	want := map[string]string{
		"latitude":   "48.8584",
		"longitude":  "2.2945",
		"radius":     "5",
		"radiusUnit": "KM",
		"amenities":  "POOL,SPA",
		"ratings":    "3,4",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Fatalf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestClient_SearchHotels_EmptyResultStatuses(t *testing.T) {
	for _, code := range []int{400, 404} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		res, err := testClient(ts.URL).SearchHotels(context.Background(), "tok", domain.HotelSearchQuery{RadiusUnit: "KM"})
		ts.Close()
		if err != nil {
			t.Fatalf("status %d should not be an error, got %v", code, err)
		}
		if res.Status != code || res.Payload != nil {
			t.Fatalf("want empty result {%d nil}, got %+v", code, res)
		}
	}
}

func TestClient_SearchHotels_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{map[string]any{"name": "Grand Plaza"}}})
	}))
	defer ts.Close()

	res, err := testClient(ts.URL).SearchHotels(context.Background(), "tok", domain.HotelSearchQuery{RadiusUnit: "KM"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Status != 200 || len(res.Payload) == 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestClient_SearchHotels_UpstreamErrorAfterRetries(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(502)
		fmt.Fprint(w, "bad gateway")
	}))
	defer ts.Close()

	_, err := testClient(ts.URL).SearchHotels(context.Background(), "tok", domain.HotelSearchQuery{RadiusUnit: "KM"})
	ue, ok := err.(*domain.UpstreamError)
	if !ok {
		t.Fatalf("want *domain.UpstreamError, got %T: %v", err, err)
	}
	if ue.Status != 502 || !strings.Contains(ue.Body, "bad gateway") {
		t.Fatalf("unexpected error detail: %+v", ue)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
}

func TestClient_SearchRoomOffers_CapsHotelIDs(t *testing.T) {
	var gotIDs, gotAdults, gotCheckIn string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("hotelIds")
		gotAdults = r.URL.Query().Get("adults")
		gotCheckIn = r.URL.Query().Get("checkInDate")
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer ts.Close()

	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("H%02d", i)
	}
	_, err := testClient(ts.URL).SearchRoomOffers(context.Background(), "tok", domain.RoomOffersQuery{
		HotelIDs:    ids,
		Adults:      2,
		CheckInDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := len(strings.Split(gotIDs, ",")); got != 20 {
		t.Fatalf("hotelIds should be capped at 20, got %d", got)
	}
	if gotAdults != "2" || gotCheckIn != "2026-09-01" {
		t.Fatalf("params: adults=%q checkInDate=%q", gotAdults, gotCheckIn)
	}
}
