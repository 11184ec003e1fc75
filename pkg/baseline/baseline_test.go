package baseline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPFetcher_BasicGET(t *testing.T) {
	json := `{
        "months": [
            {"year": 2024, "month": 2, "total": 110.2},
            {"year": 2024, "month": 1, "total": 100.5},
            {"year": 2024, "month": 3, "total": 120.8}
        ]
    }`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept: application/json header")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, json)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		URL:       server.URL,
		ValuePath: "months.#.total",
		YearPath:  "months.#.year",
		MonthPath: "months.#.month",
	}

	got, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if got.StartYear != 2024 || got.StartMonth != 1 {
		t.Errorf("anchor = (%d, %d), want (2024, 1)", got.StartYear, got.StartMonth)
	}

	want := []float64{100.5, 110.2, 120.8}
	if len(got.Series) != len(want) {
		t.Fatalf("len(Series) = %d, want %d", len(got.Series), len(want))
	}
	for i, v := range want {
		if got.Series[i] != v {
			t.Errorf("Series[%d] = %v, want %v (entries should be sorted by calendar order)", i, got.Series[i], v)
		}
	}
}

func TestHTTPFetcher_POSTWithBody(t *testing.T) {
	var receivedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		receivedBody = string(buf[:n])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"months":[{"year":2023,"month":12,"total":42.0}]}`)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		URL:       server.URL,
		Method:    "POST",
		Body:      `{"token": "{{.Token}}"}`,
		ValuePath: "months.#.total",
		YearPath:  "months.#.year",
		MonthPath: "months.#.month",
		TemplateVars: map[string]string{
			"Token": "abc123",
		},
	}

	got, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if receivedBody != `{"token": "abc123"}` {
		t.Errorf("body = %q, want token rendered", receivedBody)
	}
	if len(got.Series) != 1 || got.Series[0] != 42.0 {
		t.Errorf("Series = %v, want [42.0]", got.Series)
	}
}

func TestHTTPFetcher_Headers_Rendered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer s3cr3t" {
			t.Errorf("Authorization header = %q, want %q", got, "Bearer s3cr3t")
		}
		fmt.Fprint(w, `{"months":[{"year":2024,"month":1,"total":1}]}`)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		URL:          server.URL,
		ValuePath:    "months.#.total",
		YearPath:     "months.#.year",
		MonthPath:    "months.#.month",
		Headers:      map[string]string{"Authorization": "Bearer {{.Token}}"},
		TemplateVars: map[string]string{"Token": "s3cr3t"},
	}

	if _, err := fetcher.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
}

func TestHTTPFetcher_MissingURL(t *testing.T) {
	fetcher := &HTTPFetcher{ValuePath: "a", YearPath: "b", MonthPath: "c"}
	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing URL, got nil")
	}
}

func TestHTTPFetcher_MissingPaths(t *testing.T) {
	fetcher := &HTTPFetcher{URL: "http://example.com"}
	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing paths, got nil")
	}
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		URL:       server.URL,
		ValuePath: "months.#.total",
		YearPath:  "months.#.year",
		MonthPath: "months.#.month",
	}

	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 500 status, got nil")
	}
}

func TestHTTPFetcher_MismatchedArrayLengths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"totals":[1,2,3],"years":[2024,2024],"months":[1,2]}`)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		URL:       server.URL,
		ValuePath: "totals",
		YearPath:  "years",
		MonthPath: "months",
	}

	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for mismatched array lengths, got nil")
	}
}

func TestHTTPFetcher_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"months":[]}`)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		URL:       server.URL,
		ValuePath: "months.#.total",
		YearPath:  "months.#.year",
		MonthPath: "months.#.month",
	}

	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for empty entries, got nil")
	}
}

func TestHTTPFetcher_LastModifiedHonored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		fmt.Fprint(w, `{"months":[{"year":2024,"month":1,"total":1}]}`)
	}))
	defer server.Close()

	fetcher := &HTTPFetcher{
		URL:       server.URL,
		ValuePath: "months.#.total",
		YearPath:  "months.#.year",
		MonthPath: "months.#.month",
	}

	got, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got.FetchedAt.Year() != 2024 || got.FetchedAt.Month() != 1 || got.FetchedAt.Day() != 1 {
		t.Errorf("FetchedAt = %v, want the Last-Modified header value", got.FetchedAt)
	}
}

func TestHTTPFetcher_ValidateConfig(t *testing.T) {
	fetcher := &HTTPFetcher{}
	if err := fetcher.ValidateConfig(); err == nil {
		t.Error("expected error for empty config")
	}

	fetcher = &HTTPFetcher{
		URL:       "http://example.com",
		ValuePath: "a",
		YearPath:  "b",
		MonthPath: "c",
	}
	if err := fetcher.ValidateConfig(); err != nil {
		t.Errorf("unexpected error for valid config: %v", err)
	}
}

func TestParseHTTPFetcherConfig(t *testing.T) {
	config := map[string]any{
		"url":          "http://example.com",
		"method":       "POST",
		"valuePath":    "months.#.total",
		"yearPath":     "months.#.year",
		"monthPath":    "months.#.month",
		"headers":      map[string]any{"X-Api-Key": "abc"},
		"templateVars": map[string]any{"Token": "xyz"},
	}

	fetcher, err := ParseHTTPFetcherConfig(config)
	if err != nil {
		t.Fatalf("ParseHTTPFetcherConfig error: %v", err)
	}
	if fetcher.URL != "http://example.com" || fetcher.Method != "POST" {
		t.Errorf("fetcher = %+v, want URL/Method set", fetcher)
	}
	if fetcher.Headers["X-Api-Key"] != "abc" {
		t.Errorf("Headers[X-Api-Key] = %q, want %q", fetcher.Headers["X-Api-Key"], "abc")
	}
	if fetcher.TemplateVars["Token"] != "xyz" {
		t.Errorf("TemplateVars[Token] = %q, want %q", fetcher.TemplateVars["Token"], "xyz")
	}
}

func TestMustParseHTTPFetcherConfig(t *testing.T) {
	fetcher := MustParseHTTPFetcherConfig(map[string]any{
		"url":       "http://example.com",
		"valuePath": "a",
		"yearPath":  "b",
		"monthPath": "c",
	})
	if err := fetcher.ValidateConfig(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHTTPFetcher_RenderErrorSurfaced(t *testing.T) {
	fetcher := &HTTPFetcher{
		URL:       "http://example.com",
		ValuePath: "a",
		YearPath:  "b",
		MonthPath: "c",
		Headers:   map[string]string{"X-Bad": "{{.Unclosed"},
	}

	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected render error for malformed header template, got nil")
	}
}
