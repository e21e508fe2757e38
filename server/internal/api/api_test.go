package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/docrat/docrat/server/internal/api"
	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/scheduler"
	"github.com/docrat/docrat/server/internal/store"
	"github.com/docrat/docrat/server/internal/ws"
	"github.com/docrat/docrat/server/internal/youtube"
)

// --- test helpers -----------------------------------------------------------

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeHub struct{ stats ws.Stats }

func (f fakeHub) Stats() ws.Stats { return f.stats }

type fakeScheduler struct {
	stats  scheduler.Stats
	maxAge map[reading.Kind]time.Duration
}

func (f fakeScheduler) Stats() scheduler.Stats { return f.stats }

func (f fakeScheduler) MaxAge(k reading.Kind) time.Duration { return f.maxAge[k] }

type fakeInsights uint64

func (f fakeInsights) Fired() uint64 { return uint64(f) }

type fakeFinder struct {
	gotURL   string
	gotQuery youtube.SearchQuery
	err      error
}

func (f *fakeFinder) Extract(_ context.Context, u string) (youtube.Extraction, error) {
	f.gotURL = u
	if f.err != nil {
		return youtube.Extraction{}, f.err
	}
	if strings.TrimSpace(u) == "" {
		return youtube.Extraction{}, youtube.ErrNoURL
	}
	return youtube.Extraction{ID: 7, Title: "Extracted", Source: u, IsYouTube: true}, nil
}

func (f *fakeFinder) Search(_ context.Context, q youtube.SearchQuery) ([]youtube.Video, error) {
	f.gotQuery = q
	if f.err != nil {
		return nil, f.err
	}
	if q.Keywords == "" {
		return nil, youtube.ErrNoKeywords
	}
	return []youtube.Video{{ID: "v1", Title: "Parks Board Meeting"}}, nil
}

func newStore(rs ...reading.Reading) *store.Store {
	st := store.New()
	for _, r := range rs {
		st.Put(r)
	}
	return st
}

func newHandler(st *store.Store, finder api.MeetingFinder) http.Handler {
	return api.New(api.Deps{
		Store:     st,
		Hub:       fakeHub{stats: ws.Stats{Connected: 3, Accepted: 5, Broadcasts: 12, SendFailures: 1}},
		Scheduler: fakeScheduler{stats: scheduler.Stats{Iterations: 9, Fallbacks: 4}},
		Insights:  fakeInsights(2),
		Meetings:  finder,
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rr.Code != code {
		t.Fatalf("status: got %d, want %d (body: %s)", rr.Code, code, rr.Body.String())
	}
}

// --- /health ----------------------------------------------------------------

func TestHealth_EmptyStore(t *testing.T) {
	rr := get(t, newHandler(newStore(), nil), "/health")
	wantStatus(t, rr, http.StatusOK)

	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "degraded" {
		t.Errorf("status: got %q, want degraded", resp.Status)
	}
	if resp.Kinds != 0 {
		t.Errorf("kinds: got %d, want 0", resp.Kinds)
	}
	if resp.Connections != 3 {
		t.Errorf("connections: got %d, want 3", resp.Connections)
	}
	if resp.Process.Goroutines < 1 {
		t.Errorf("goroutines: got %d, want > 0", resp.Process.Goroutines)
	}
}

func TestHealth_Populated(t *testing.T) {
	st := newStore(reading.AirQuality{AQI: 40, Timestamp: t0}, reading.News{Timestamp: t0})
	rr := get(t, newHandler(st, nil), "/health")

	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" {
		t.Errorf("status: got %q, want ok", resp.Status)
	}
	if resp.Kinds != 2 {
		t.Errorf("kinds: got %d, want 2", resp.Kinds)
	}
	if len(resp.Stale) != 0 {
		t.Errorf("stale: got %v, want none", resp.Stale)
	}
}

func TestHealth_StaleUsesSchedulerMaxAge(t *testing.T) {
	st := newStore(reading.AirQuality{AQI: 40, Timestamp: t0}, reading.News{Timestamp: t0})
	sched := fakeScheduler{maxAge: map[reading.Kind]time.Duration{
		reading.KindAirQuality: time.Nanosecond,
		reading.KindNews:       time.Hour,
	}}
	h := api.New(api.Deps{Store: st, Scheduler: sched})
	time.Sleep(2 * time.Millisecond)

	var resp api.HealthResponse
	decode(t, get(t, h, "/health"), &resp)
	if resp.Status != "degraded" {
		t.Errorf("status: got %q, want degraded", resp.Status)
	}
	if len(resp.Stale) != 1 || resp.Stale[0] != "air_quality" {
		t.Errorf("stale: got %v, want [air_quality]", resp.Stale)
	}

	// A kind the scheduler never refreshes on its own is not judged.
	sched.maxAge = map[reading.Kind]time.Duration{reading.KindNews: time.Hour}
	h = api.New(api.Deps{Store: st, Scheduler: sched})
	decode(t, get(t, h, "/health"), &resp)
	if resp.Status != "ok" {
		t.Errorf("status: got %q, want ok (stale %v)", resp.Status, resp.Stale)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHandler(newStore(), &fakeFinder{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/health"},
		{http.MethodPost, "/api/snapshot"},
		{http.MethodDelete, "/api/meetings/1"},
		{http.MethodGet, "/api/extract"},
		{http.MethodPost, "/metrics"},
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: got %d, want 405", tc.method, tc.path, rr.Code)
		}
	}
}

// --- live data --------------------------------------------------------------

func TestRoot(t *testing.T) {
	rr := get(t, newHandler(newStore(), nil), "/api")
	wantStatus(t, rr, http.StatusOK)
	var resp api.MessageResponse
	decode(t, rr, &resp)
	if !strings.HasPrefix(resp.Message, "Welcome") {
		t.Errorf("message: got %q", resp.Message)
	}
}

func TestSnapshot(t *testing.T) {
	st := newStore(reading.AirQuality{AQI: 55, Status: "Moderate", Timestamp: t0})
	rr := get(t, newHandler(st, nil), "/api/snapshot")
	wantStatus(t, rr, http.StatusOK)

	var resp struct {
		Data        map[string]map[string]interface{} `json:"data"`
		GeneratedAt string                            `json:"generated_at"`
	}
	decode(t, rr, &resp)
	aq, ok := resp.Data["air_quality"]
	if !ok {
		t.Fatalf("data: missing air_quality in %v", resp.Data)
	}
	if aq["aqi"].(float64) != 55 {
		t.Errorf("aqi: got %v, want 55", aq["aqi"])
	}
	if resp.GeneratedAt == "" {
		t.Error("generated_at: empty")
	}
}

func TestAirQuality(t *testing.T) {
	st := newStore()
	st.SeedHistory([]store.AQIPoint{
		{Timestamp: t0.Add(-2 * time.Hour), AQI: 40},
		{Timestamp: t0.Add(-time.Hour), AQI: 60},
	})
	st.Put(reading.AirQuality{AQI: 80, Status: "Moderate", Timestamp: t0})

	rr := get(t, newHandler(st, nil), "/api/air-quality")
	wantStatus(t, rr, http.StatusOK)

	var resp api.AirQualityResponse
	decode(t, rr, &resp)
	if resp.AirQuality == nil || resp.AirQuality.AQI != 80 {
		t.Fatalf("air_quality: got %+v, want AQI 80", resp.AirQuality)
	}
	if len(resp.History) != 3 {
		t.Errorf("history: got %d points, want 3", len(resp.History))
	}
	if resp.Stats == nil {
		t.Fatal("stats: got nil")
	}
	if resp.Stats.Mean != 60 || resp.Stats.Min != 40 || resp.Stats.Max != 80 {
		t.Errorf("stats: got %+v, want mean 60 min 40 max 80", *resp.Stats)
	}
}

func TestAirQuality_Empty(t *testing.T) {
	rr := get(t, newHandler(newStore(), nil), "/api/air-quality")
	wantStatus(t, rr, http.StatusOK)

	var resp map[string]interface{}
	decode(t, rr, &resp)
	if resp["air_quality"] != nil {
		t.Errorf("air_quality: got %v, want null", resp["air_quality"])
	}
	if resp["stats"] != nil {
		t.Errorf("stats: got %v, want null", resp["stats"])
	}
}

func TestNews(t *testing.T) {
	st := newStore(reading.News{
		Articles:  []reading.Article{{Headline: "River cleanup finished", Source: "Gazette"}},
		Timestamp: t0,
	})
	rr := get(t, newHandler(st, nil), "/api/news")
	var resp api.NewsResponse
	decode(t, rr, &resp)
	if resp.News == nil || len(resp.News.Articles) != 1 {
		t.Fatalf("news: got %+v, want 1 article", resp.News)
	}
	if resp.News.Articles[0].Headline != "River cleanup finished" {
		t.Errorf("headline: got %q", resp.News.Articles[0].Headline)
	}
}

func TestInsights_LiveFirst(t *testing.T) {
	st := newStore(
		reading.Insight{ID: "a", Text: "older", Timestamp: t0},
		reading.Insight{ID: "b", Text: "newest", Timestamp: t0.Add(time.Minute)},
	)
	rr := get(t, newHandler(st, nil), "/api/insights")
	wantStatus(t, rr, http.StatusOK)

	var resp struct {
		Insights []map[string]interface{} `json:"insights"`
	}
	decode(t, rr, &resp)
	if len(resp.Insights) != 7 {
		t.Fatalf("insights: got %d, want 2 live + 5 curated", len(resp.Insights))
	}
	if resp.Insights[0]["text"] != "newest" {
		t.Errorf("first insight: got %v, want newest live", resp.Insights[0])
	}
	if resp.Insights[2]["title"] == nil {
		t.Errorf("third insight: got %v, want a curated entry", resp.Insights[2])
	}
}

func TestInsights_Capped(t *testing.T) {
	st := newStore()
	for i := 0; i < 8; i++ {
		st.Put(reading.Insight{ID: string(rune('a' + i)), Text: "live", Timestamp: t0})
	}
	rr := get(t, newHandler(st, nil), "/api/insights")
	var resp struct {
		Insights []map[string]interface{} `json:"insights"`
	}
	decode(t, rr, &resp)
	if len(resp.Insights) != 10 {
		t.Errorf("insights: got %d, want 10", len(resp.Insights))
	}
}

func TestMeetingInsights(t *testing.T) {
	h := newHandler(newStore(), nil)

	rr := get(t, h, "/api/insights/53")
	wantStatus(t, rr, http.StatusOK)
	var resp youtube.MeetingInsights
	decode(t, rr, &resp)
	if resp.SentimentAnalysis.ControversyLevel != "2/10" {
		t.Errorf("controversy: got %q, want 2/10", resp.SentimentAnalysis.ControversyLevel)
	}

	rr = get(t, h, "/api/insights/1")
	wantStatus(t, rr, http.StatusOK)

	rr = get(t, h, "/api/insights/abc")
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestScore(t *testing.T) {
	st := newStore(reading.SustainabilityScore{OverallScore: 88, State: "good", Timestamp: t0})
	rr := get(t, newHandler(st, nil), "/api/sustainability/score")
	wantStatus(t, rr, http.StatusOK)

	var resp api.ScoreResponse
	decode(t, rr, &resp)
	if resp.Score == nil || resp.Score.OverallScore != 88 {
		t.Fatalf("score: got %+v, want 88", resp.Score)
	}
	if resp.PreviousScore != 85 {
		t.Errorf("previous_score: got %d, want 85", resp.PreviousScore)
	}
	if resp.ChangePercentage != 3.5 {
		t.Errorf("change_percentage: got %v, want 3.5", resp.ChangePercentage)
	}
	if len(resp.Trend) != 7 {
		t.Errorf("trend: got %d points, want 7", len(resp.Trend))
	}
}

// --- catalog ----------------------------------------------------------------

func TestMeetings(t *testing.T) {
	h := newHandler(newStore(), nil)

	rr := get(t, h, "/api/meetings")
	wantStatus(t, rr, http.StatusOK)
	var list []map[string]interface{}
	decode(t, rr, &list)
	if len(list) != 5 {
		t.Errorf("meetings: got %d, want 5", len(list))
	}

	rr = get(t, h, "/api/meetings/1")
	wantStatus(t, rr, http.StatusOK)
	var m map[string]interface{}
	decode(t, rr, &m)
	if m["title"] != "City Council - Environmental Policy Review" {
		t.Errorf("title: got %v", m["title"])
	}
	if _, ok := m["key_points"]; !ok {
		t.Error("detail: missing key_points")
	}

	wantStatus(t, get(t, h, "/api/meetings/99"), http.StatusNotFound)
	wantStatus(t, get(t, h, "/api/meetings/abc"), http.StatusBadRequest)
}

func TestPermitsAndSensors(t *testing.T) {
	h := newHandler(newStore(), nil)

	for _, tc := range []struct {
		path string
		code int
	}{
		{"/api/permits", http.StatusOK},
		{"/api/permits/P-23418", http.StatusOK},
		{"/api/permits/P-23108", http.StatusOK},
		{"/api/permits/P-00000", http.StatusNotFound},
		{"/api/sensors", http.StatusOK},
		{"/api/sensors/S001", http.StatusOK},
		{"/api/sensors/S999", http.StatusNotFound},
		{"/api/map/markers", http.StatusOK},
	} {
		rr := get(t, h, tc.path)
		if rr.Code != tc.code {
			t.Errorf("%s: got %d, want %d", tc.path, rr.Code, tc.code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: content-type %q", tc.path, ct)
		}
	}
}

// --- meeting extraction -----------------------------------------------------

func TestExtract_JSON(t *testing.T) {
	f := &fakeFinder{}
	h := newHandler(newStore(), f)

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"url":"https://youtu.be/abc"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	wantStatus(t, rr, http.StatusOK)

	var x youtube.Extraction
	decode(t, rr, &x)
	if x.Source != "https://youtu.be/abc" || f.gotURL != "https://youtu.be/abc" {
		t.Errorf("source: got %q (finder saw %q)", x.Source, f.gotURL)
	}
}

func TestExtract_Form(t *testing.T) {
	f := &fakeFinder{}
	h := newHandler(newStore(), f)

	form := url.Values{"url": {"https://example.gov/minutes.pdf"}}
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	wantStatus(t, rr, http.StatusOK)
	if f.gotURL != "https://example.gov/minutes.pdf" {
		t.Errorf("url: got %q", f.gotURL)
	}
}

func TestExtract_BadRequests(t *testing.T) {
	h := newHandler(newStore(), &fakeFinder{})

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	wantStatus(t, rr, http.StatusBadRequest)

	req = httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	wantStatus(t, rr, http.StatusBadRequest)

	h = newHandler(newStore(), &fakeFinder{err: youtube.ErrInvalidURL})
	req = httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"url":"https://youtube.com/channel/x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestExtract_NotConfigured(t *testing.T) {
	h := api.New(api.Deps{Store: newStore()})
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"url":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	wantStatus(t, rr, http.StatusServiceUnavailable)
}

func TestSearch(t *testing.T) {
	f := &fakeFinder{}
	h := newHandler(newStore(), f)

	rr := get(t, h, "/api/youtube/search?q=parks&org=Springfield&type=Regular&max=3")
	wantStatus(t, rr, http.StatusOK)
	var resp api.SearchResponse
	decode(t, rr, &resp)
	if len(resp.Results) != 1 || resp.Results[0].ID != "v1" {
		t.Errorf("results: got %+v", resp.Results)
	}
	if resp.Query != "Springfield Regular parks meeting" {
		t.Errorf("query: got %q", resp.Query)
	}
	if f.gotQuery.MaxResults != 3 || f.gotQuery.Organization != "Springfield" {
		t.Errorf("finder query: got %+v", f.gotQuery)
	}

	wantStatus(t, get(t, h, "/api/youtube/search?q=parks&max=500"), http.StatusOK)
	if f.gotQuery.MaxResults != youtube.MaxSearchResults {
		t.Errorf("max clamp: got %d, want %d", f.gotQuery.MaxResults, youtube.MaxSearchResults)
	}

	wantStatus(t, get(t, h, "/api/youtube/search?q=parks&max=abc"), http.StatusBadRequest)
	wantStatus(t, get(t, h, "/api/youtube/search"), http.StatusBadRequest)
}

// --- /metrics ---------------------------------------------------------------

func TestMetrics(t *testing.T) {
	st := newStore(reading.AirQuality{AQI: 151, Timestamp: t0})
	rr := get(t, newHandler(st, nil), "/metrics")
	wantStatus(t, rr, http.StatusOK)

	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content-type: got %q, want text/plain", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"# TYPE docrat_ws_connections gauge",
		"docrat_ws_connections 3",
		"docrat_ws_broadcasts_total 12",
		"# TYPE docrat_scheduler_fallbacks_total counter",
		"docrat_scheduler_fallbacks_total 4",
		"docrat_insights_fired_total 2",
		"docrat_air_quality_index 151",
		"docrat_snapshot_kinds 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics: missing %q in\n%s", want, body)
		}
	}
}

func TestMetrics_StoreOnly(t *testing.T) {
	h := api.New(api.Deps{Store: newStore()})
	rr := get(t, h, "/metrics")
	wantStatus(t, rr, http.StatusOK)
	if strings.Contains(rr.Body.String(), "docrat_ws_connections") {
		t.Error("metrics: hub families emitted without a hub")
	}
}
