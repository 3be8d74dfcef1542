package domain

import "context"

// TokenSource yields a valid bearer token for the upstream API, refreshing
// behind the scenes when the cached one has expired.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type SearchClient interface {
	SearchHotels(ctx context.Context, token string, q HotelSearchQuery) (SearchResult, error)
	SearchRoomOffers(ctx context.Context, token string, q RoomOffersQuery) (SearchResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
