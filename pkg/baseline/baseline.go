// Package baseline fetches the monthly series the forecasting pipeline
// runs against. The transport is opaque to the engine: a Fetcher is
// handed a context and returns a storage.Baseline or an error, leaving
// caching, freshness validation, and stale-copy fallback to the caller
// wrapping it.
package baseline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lindqvist-sales/forecastd/pkg/storage"
)

// Fetcher retrieves the current baseline monthly series from an external
// system. Implementations must respect context cancellation and must not
// panic on malformed upstream responses.
type Fetcher interface {
	Fetch(ctx context.Context) (storage.Baseline, error)
}

// HTTPFetcher is a generic HTTP fetcher that calls a REST endpoint and
// extracts a monthly series using JSON path expressions. It expects the
// response to contain parallel arrays of values and calendar anchors
// (year and month), identified by gjson paths.
//
// Example configuration against a ledger-export API:
//
//	fetcher := &HTTPFetcher{
//	    URL: "https://ledger.example.com/monthly-totals",
//	    Headers: map[string]string{
//	        "Authorization": "Bearer {{.Token}}",
//	    },
//	    ValuePath: "months.#.total",
//	    YearPath:  "months.#.year",
//	    MonthPath: "months.#.month",
//	    TemplateVars: map[string]string{"Token": "..."},
//	}
type HTTPFetcher struct {
	// URL is the endpoint to call (required).
	URL string

	// Method is the HTTP method. Defaults to GET if empty.
	Method string

	// Headers are custom HTTP headers. Values may use template
	// variables drawn from TemplateVars.
	Headers map[string]string

	// Body is an optional request body template (for POST/PUT).
	Body string

	// ValuePath is the gjson path to the monthly totals array.
	ValuePath string

	// YearPath and MonthPath are the gjson paths to each entry's
	// calendar year and 1-12 month. Both must return one element per
	// ValuePath entry, in the same order.
	YearPath  string
	MonthPath string

	// HTTPClient is optional; a default client with a 10s timeout is
	// used when nil.
	HTTPClient *http.Client

	// TemplateVars are variables available to Body and Headers
	// templates, e.g. API tokens.
	TemplateVars map[string]string
}

func (h *HTTPFetcher) Fetch(ctx context.Context) (storage.Baseline, error) {
	if h.URL == "" {
		return storage.Baseline{}, errors.New("http fetcher: URL is required")
	}
	if h.ValuePath == "" || h.YearPath == "" || h.MonthPath == "" {
		return storage.Baseline{}, errors.New("http fetcher: ValuePath, YearPath, and MonthPath are required")
	}

	templateData := map[string]any{}
	for k, v := range h.TemplateVars {
		templateData[k] = v
	}

	method := h.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if h.Body != "" {
		rendered, err := renderTemplate(h.Body, templateData)
		if err != nil {
			return storage.Baseline{}, fmt.Errorf("render body template: %w", err)
		}
		bodyReader = bytes.NewBufferString(rendered)
	}

	cli := h.HTTPClient
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, method, h.URL, bodyReader)
	if err != nil {
		return storage.Baseline{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range h.Headers {
		rendered, err := renderTemplate(value, templateData)
		if err != nil {
			return storage.Baseline{}, fmt.Errorf("render header %s: %w", key, err)
		}
		req.Header.Set(key, rendered)
	}

	resp, err := cli.Do(req)
	if err != nil {
		return storage.Baseline{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return storage.Baseline{}, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return storage.Baseline{}, fmt.Errorf("read response: %w", err)
	}

	values := gjson.GetBytes(respBody, h.ValuePath)
	years := gjson.GetBytes(respBody, h.YearPath)
	months := gjson.GetBytes(respBody, h.MonthPath)

	if !values.Exists() {
		return storage.Baseline{}, fmt.Errorf("value path %q not found in response", h.ValuePath)
	}
	if !years.Exists() || !months.Exists() {
		return storage.Baseline{}, fmt.Errorf("year path %q or month path %q not found in response", h.YearPath, h.MonthPath)
	}

	valArray := values.Array()
	yearArray := years.Array()
	monthArray := months.Array()

	if len(valArray) != len(yearArray) || len(valArray) != len(monthArray) {
		return storage.Baseline{}, fmt.Errorf("value count (%d), year count (%d), and month count (%d) must match", len(valArray), len(yearArray), len(monthArray))
	}
	if len(valArray) == 0 {
		return storage.Baseline{}, errors.New("response contained no monthly entries")
	}

	type entry struct {
		year, month int
		value       float64
	}
	entries := make([]entry, len(valArray))
	for i := range valArray {
		entries[i] = entry{
			year:  int(yearArray[i].Int()),
			month: int(monthArray[i].Int()),
			value: valArray[i].Float(),
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].year != entries[j].year {
			return entries[i].year < entries[j].year
		}
		return entries[i].month < entries[j].month
	})

	series := make([]float64, len(entries))
	for i, e := range entries {
		series[i] = e.value
	}

	lastModified := time.Now().UTC()
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if parsed, err := http.ParseTime(lm); err == nil {
			lastModified = parsed
		}
	}

	return storage.Baseline{
		Series:     series,
		StartYear:  entries[0].year,
		StartMonth: entries[0].month,
		FetchedAt:  lastModified,
	}, nil
}

// renderTemplate renders a text template with the given data, skipping
// template parsing entirely for plain strings.
func renderTemplate(tmplStr string, data map[string]any) (string, error) {
	if !strings.Contains(tmplStr, "{{") {
		return tmplStr, nil
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ValidateConfig checks that the fetcher has enough configuration to
// run. Errors surfaced here are configuration bugs, not transport
// failures.
func (h *HTTPFetcher) ValidateConfig() error {
	if h.URL == "" {
		return errors.New("url is required")
	}
	if h.ValuePath == "" {
		return errors.New("valuePath is required")
	}
	if h.YearPath == "" {
		return errors.New("yearPath is required")
	}
	if h.MonthPath == "" {
		return errors.New("monthPath is required")
	}
	return nil
}

// ParseHTTPFetcherConfig builds an HTTPFetcher from a generic config map,
// for callers wiring it up from YAML/JSON configuration.
func ParseHTTPFetcherConfig(config map[string]any) (*HTTPFetcher, error) {
	fetcher := &HTTPFetcher{
		TemplateVars: make(map[string]string),
	}

	if v, ok := config["url"].(string); ok {
		fetcher.URL = v
	}
	if v, ok := config["method"].(string); ok {
		fetcher.Method = v
	}
	if v, ok := config["body"].(string); ok {
		fetcher.Body = v
	}
	if v, ok := config["valuePath"].(string); ok {
		fetcher.ValuePath = v
	}
	if v, ok := config["yearPath"].(string); ok {
		fetcher.YearPath = v
	}
	if v, ok := config["monthPath"].(string); ok {
		fetcher.MonthPath = v
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		fetcher.Headers = make(map[string]string)
		for k, v := range headers {
			if str, ok := v.(string); ok {
				fetcher.Headers[k] = str
			}
		}
	}

	if vars, ok := config["templateVars"].(map[string]any); ok {
		for k, v := range vars {
			if str, ok := v.(string); ok {
				fetcher.TemplateVars[k] = str
			} else {
				fetcher.TemplateVars[k] = fmt.Sprint(v)
			}
		}
	}

	return fetcher, nil
}

// MustParseHTTPFetcherConfig is like ParseHTTPFetcherConfig but panics on
// error. Useful for static configuration where errors indicate a
// programmer bug rather than bad input.
func MustParseHTTPFetcherConfig(config map[string]any) *HTTPFetcher {
	fetcher, err := ParseHTTPFetcherConfig(config)
	if err != nil {
		panic(fmt.Sprintf("parse http fetcher config: %v", err))
	}
	return fetcher
}
