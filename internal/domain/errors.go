package domain

import "fmt"

// AuthError means the identity endpoint could not produce a token after
// retries. Status is 0 when the failure was network-level.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("amadeus auth: %v", e.Err)
	}
	return fmt.Sprintf("amadeus auth: status %d: %s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError means the search endpoint returned an unexpected status after
// retries. Body keeps the upstream payload for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("amadeus search: %v", e.Err)
	}
	return fmt.Sprintf("amadeus search: status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
