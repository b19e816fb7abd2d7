package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deepshard/hyphae/pkg/config"
)

func testTrends(t *testing.T, baseURL string) *GoogleTrends {
	t.Helper()
	g, err := NewGoogleTrends(config.SearchEngineConfig{
		BaseURL:    baseURL,
		RateLimit:  6000,
		BurstLimit: 100,
	})
	if err != nil {
		t.Fatalf("NewGoogleTrends() failed: %v", err)
	}
	return g
}

// TestTrendsSuggestionsStripsPrefix verifies the anti-hijacking prefix
// is removed before parsing.
func TestTrendsSuggestionsStripsPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/autocomplete/") {
			t.Errorf("path = %q, want /autocomplete/...", r.URL.Path)
		}
		fmt.Fprint(w, `)]}'
{"default": {"topics": [
	{"mid": "/m/1", "title": "Golang", "type": "Programming language"},
	{"mid": "/m/2", "title": "Go", "type": "Board game"}
]}}`)
	}))
	defer srv.Close()

	keywords, err := testTrends(t, srv.URL).Suggestions(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Suggestions() failed: %v", err)
	}
	if len(keywords) != 2 {
		t.Fatalf("got %d keywords, want 2", len(keywords))
	}
	if keywords[0].Title != "Golang" || keywords[0].Type != "Programming language" {
		t.Errorf("keywords[0] = %+v", keywords[0])
	}
}

// TestTrendsInterestOverTime verifies the explore → multiline token flow.
func TestTrendsInterestOverTime(t *testing.T) {
	var multilineReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/explore":
			if !strings.Contains(r.URL.Query().Get("req"), `"keyword":"golang"`) {
				t.Errorf("explore req = %q, missing keyword", r.URL.Query().Get("req"))
			}
			fmt.Fprint(w, `)]}'
{"widgets": [
	{"id": "TIMESERIES", "token": "tok-1", "request": {"time": "now 7-d"}},
	{"id": "GEO_MAP", "token": "tok-2", "request": {}}
]}`)
		case "/widgetdata/multiline":
			multilineReq = r.Clone(context.Background())
			fmt.Fprint(w, `)]}'
{"default": {"timelineData": [
	{"formattedTime": "Aug 21, 2026", "value": [42, 7]},
	{"formattedTime": "Aug 22, 2026", "value": [55, 9]}
]}}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	points, err := testTrends(t, srv.URL).InterestOverTime(context.Background(), []string{"golang", "rust"})
	if err != nil {
		t.Fatalf("InterestOverTime() failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Time != "Aug 21, 2026" || points[0].Values[0] != 42 {
		t.Errorf("points[0] = %+v", points[0])
	}
	if multilineReq == nil {
		t.Fatal("multiline endpoint was not called")
	}
	if got := multilineReq.URL.Query().Get("token"); got != "tok-1" {
		t.Errorf("token = %q, want tok-1 (TIMESERIES widget)", got)
	}
}

// TestTrendsTopicLimit verifies topics over the API limit are dropped.
func TestTrendsTopicLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/explore":
			if n := strings.Count(r.URL.Query().Get("req"), `"keyword"`); n != maxTrendTopics {
				t.Errorf("explore req has %d keywords, want %d", n, maxTrendTopics)
			}
			fmt.Fprint(w, `)]}'
{"widgets": [{"id": "TIMESERIES", "token": "t", "request": {}}]}`)
		default:
			fmt.Fprint(w, `)]}'
{"default": {"timelineData": []}}`)
		}
	}))
	defer srv.Close()

	topics := []string{"a", "b", "c", "d", "e", "f", "g"}
	if _, err := testTrends(t, srv.URL).InterestOverTime(context.Background(), topics); err != nil {
		t.Fatalf("InterestOverTime() failed: %v", err)
	}
}

// TestTrendsMissingTimeseriesWidget verifies a useful error when the
// explore response lacks the widget.
func TestTrendsMissingTimeseriesWidget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"widgets": []}`)
	}))
	defer srv.Close()

	_, err := testTrends(t, srv.URL).InterestOverTime(context.Background(), []string{"golang"})
	if err == nil || !strings.Contains(err.Error(), "TIMESERIES") {
		t.Fatalf("err = %v, want TIMESERIES widget error", err)
	}
}
