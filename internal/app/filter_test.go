package app_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"hotel_search/internal/app"
)

func defaultFilter() *app.ListingFilter {
	return app.NewListingFilter(app.DefaultDenylist())
}

func hotel(name string, lines ...string) map[string]any {
	ls := make([]any, len(lines))
	for i, l := range lines {
		ls[i] = l
	}
	return map[string]any{"name": name, "address": map[string]any{"lines": ls}}
}

func names(payload map[string]any) []string {
	data, _ := payload["data"].([]any)
	out := make([]string, 0, len(data))
	for _, it := range data {
		m, _ := it.(map[string]any)
		n, _ := m["name"].(string)
		out = append(out, n)
	}
	return out
}

func TestFilter_SpecExample(t *testing.T) {
	payload := map[string]any{"data": []any{
		hotel("Test Hotel", "1 Main St"),
		hotel("Grand Plaza", "5 King St"),
	}}
	got := defaultFilter().Apply(payload)
	if want := []string{"Grand Plaza"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
}

func TestFilter_ExcludesIncompleteRecords(t *testing.T) {
	payload := map[string]any{"data": []any{
		map[string]any{"address": map[string]any{"lines": []any{"1 Main St"}}}, // no name
		map[string]any{"name": "No Address Inn"},
		map[string]any{"name": "No Lines Lodge", "address": map[string]any{"cityName": "Paris"}},
		map[string]any{"name": ""}, // empty name
		hotel("Hotel Lutetia", "45 Boulevard Raspail"),
	}}
	got := defaultFilter().Apply(payload)
	if want := []string{"Hotel Lutetia"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
}

func TestFilter_ForbiddenSubstringsAreCaseInsensitive(t *testing.T) {
	payload := map[string]any{"data": []any{
		hotel("my test hotel", "1 Main St"),
		hotel("Sample Property", "1 Main St"),
		hotel("validation suite", "1 Main St"),
		hotel("Hilton Paris", "10 test street"),
		hotel("Novotel", "1 Fake Address Rd"),
		hotel("House Of Travel Lodge", "1 Main St"),
		hotel("Le Meurice", "228 Rue de Rivoli"),
	}}
	got := defaultFilter().Apply(payload)
	if want := []string{"Le Meurice"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
}

func TestFilter_VendorDenylistIsConfigurable(t *testing.T) {
	deny := app.DefaultDenylist()
	deny.Vendors = []string{"ACME STAYS"}
	f := app.NewListingFilter(deny)

	payload := map[string]any{"data": []any{
		hotel("Acme Stays Downtown", "1 Main St"),
		hotel("House of Travel Lodge", "1 Main St"), // no longer denied
	}}
	got := f.Apply(payload)
	if want := []string{"House of Travel Lodge"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
}

func TestFilter_PreservesOrderAndOtherFields(t *testing.T) {
	payload := map[string]any{
		"meta": map[string]any{"count": 4.0},
		"data": []any{
			hotel("Alpha", "1 First St"),
			hotel("Test Hotel", "2 Second St"),
			hotel("Bravo", "3 Third St"),
			hotel("Charlie", "4 Fourth St"),
		},
	}
	got := defaultFilter().Apply(payload)
	if want := []string{"Alpha", "Bravo", "Charlie"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
	if meta, _ := got["meta"].(map[string]any); meta["count"] != 4.0 {
		t.Fatalf("meta must pass through untouched, got %v", got["meta"])
	}
}

func TestFilter_Idempotent(t *testing.T) {
	payload := map[string]any{"data": []any{
		hotel("Test Hotel", "1 Main St"),
		hotel("Grand Plaza", "5 King St"),
		hotel("Delta Inn", "7 Queen St"),
	}}
	once := defaultFilter().Apply(payload)
	onceJSON, _ := json.Marshal(once)
	twice := defaultFilter().Apply(once)
	twiceJSON, _ := json.Marshal(twice)
	if string(onceJSON) != string(twiceJSON) {
		t.Fatalf("filter not idempotent:\n%s\n%s", onceJSON, twiceJSON)
	}
}

func TestFilter_MalformedRecordsAreExclusionsNotErrors(t *testing.T) {
	payload := map[string]any{"data": []any{
		"not a record",
		42.0,
		map[string]any{"name": "Mixed Lines", "address": map[string]any{"lines": []any{"1 Main St", 7.0}}},
		map[string]any{"name": "List Address", "address": []any{"1 Main St"}},
		hotel("Survivor Suites", "9 Ninth Ave"),
	}}
	got := defaultFilter().Apply(payload)
	if want := []string{"Survivor Suites"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("names = %v, want %v", names(got), want)
	}
}

func TestFilter_NoDataKey(t *testing.T) {
	got := defaultFilter().Apply(map[string]any{"warnings": []any{}})
	data, ok := got["data"].([]any)
	if !ok || len(data) != 0 {
		t.Fatalf("missing data should become an empty list, got %v", got["data"])
	}
}
