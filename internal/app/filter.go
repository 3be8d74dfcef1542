package app

import "strings"

// Denylist holds the case-insensitive substrings that mark a listing as a
// test/placeholder record. Vendors carries known placeholder vendor names
// (kept configurable rather than baked into the match loop).
type Denylist struct {
	Name    []string
	Address []string
	Vendors []string
}

// DefaultDenylist matches the placeholder patterns the upstream provider is
// known to ship in its sandbox data.
func DefaultDenylist() Denylist {
	return Denylist{
		Name:    []string{"TEST", "PROPERTY", "VALIDATION"},
		Address: []string{"TEST", "ADDRESS"},
		Vendors: []string{"HOUSE OF TRAVEL"},
	}
}

// ListingFilter removes incomplete and placeholder hotel records from a
// search payload. Pure and stable: surviving records keep their order, and
// malformed records are exclusions, never errors.
type ListingFilter struct {
	deny Denylist
}

func NewListingFilter(d Denylist) *ListingFilter {
	norm := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return &ListingFilter{deny: Denylist{
		Name:    norm(d.Name),
		Address: norm(d.Address),
		Vendors: norm(d.Vendors),
	}}
}

// Apply replaces the payload's top-level "data" list with the surviving
// subset. The rest of the payload passes through untouched.
func (f *ListingFilter) Apply(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	hotels, _ := payload["data"].([]any)
	filtered := make([]any, 0, len(hotels))
	for _, item := range hotels {
		hotel, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if f.keep(hotel) {
			filtered = append(filtered, item)
		}
	}
	payload["data"] = filtered
	return payload
}

func (f *ListingFilter) keep(hotel map[string]any) bool {
	name, _ := hotel["name"].(string)
	if name == "" {
		return false
	}
	lines, ok := addressLines(hotel)
	if !ok {
		return false
	}

	upperName := strings.ToUpper(name)
	if containsAny(upperName, f.deny.Name) || containsAny(upperName, f.deny.Vendors) {
		return false
	}
	return !containsAny(strings.ToUpper(strings.Join(lines, " ")), f.deny.Address)
}

// addressLines pulls address.lines out of the record, requiring every entry
// to be a string.
func addressLines(hotel map[string]any) ([]string, bool) {
	addr, ok := hotel["address"].(map[string]any)
	if !ok {
		return nil, false
	}
	raw, ok := addr["lines"].([]any)
	if !ok {
		return nil, false
	}
	lines := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		lines = append(lines, s)
	}
	return lines, true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
