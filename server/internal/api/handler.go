package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docrat/docrat/server/internal/catalog"
	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/scheduler"
	"github.com/docrat/docrat/server/internal/store"
	"github.com/docrat/docrat/server/internal/ws"
	"github.com/docrat/docrat/server/internal/youtube"
)

const (
	maxInsights = 10

	// staleAfter marks a kind stale in /health when no scheduler is wired.
	staleAfter = 5 * time.Minute

	maxBodyBytes = 1 << 16
)

// HubStats is the connection registry view the API needs. *ws.Hub satisfies it.
type HubStats interface {
	Stats() ws.Stats
}

// SchedulerStats is satisfied by *scheduler.Scheduler. MaxAge sets how old a
// kind may get before /health reports it stale.
type SchedulerStats interface {
	Stats() scheduler.Stats
	MaxAge(kind reading.Kind) time.Duration
}

// InsightCounter is satisfied by *insight.Engine.
type InsightCounter interface {
	Fired() uint64
}

// MeetingFinder extracts and searches meeting recordings. *youtube.Client
// satisfies it.
type MeetingFinder interface {
	Extract(ctx context.Context, url string) (youtube.Extraction, error)
	Search(ctx context.Context, q youtube.SearchQuery) ([]youtube.Video, error)
}

// Deps are the collaborators the handler reads from. Only Store is required.
type Deps struct {
	Store     *store.Store
	Hub       HubStats
	Scheduler SchedulerStats
	Insights  InsightCounter
	Meetings  MeetingFinder
}

// Handler is the HTTP handler for /health, /metrics and all /api/* endpoints.
type Handler struct {
	deps Deps
	proc *procSampler
	mux  *http.ServeMux
	now  func() time.Time
}

// New creates a Handler wired to deps and registers all routes.
func New(deps Deps) http.Handler {
	h := &Handler{
		deps: deps,
		proc: newProcSampler(),
		mux:  http.NewServeMux(),
		now:  time.Now,
	}

	h.mux.HandleFunc("/health", h.health)
	h.mux.HandleFunc("/metrics", h.metrics)
	h.mux.HandleFunc("/api", h.root)
	h.mux.HandleFunc("/api/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/air-quality", h.airQuality)
	h.mux.HandleFunc("/api/news", h.news)
	h.mux.HandleFunc("/api/insights", h.insights)
	h.mux.HandleFunc("/api/insights/", h.meetingInsights) // subtree, extracts {meeting_id}
	h.mux.HandleFunc("/api/sustainability/score", h.score)
	h.mux.HandleFunc("/api/meetings", h.listMeetings)
	h.mux.HandleFunc("/api/meetings/", h.getMeeting)
	h.mux.HandleFunc("/api/permits", h.listPermits)
	h.mux.HandleFunc("/api/permits/", h.getPermit)
	h.mux.HandleFunc("/api/sensors", h.listSensors)
	h.mux.HandleFunc("/api/sensors/", h.getSensor)
	h.mux.HandleFunc("/api/map/markers", h.markers)
	h.mux.HandleFunc("/api/extract", h.extract)
	h.mux.HandleFunc("/api/youtube/search", h.search)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- live data --------------------------------------------------------------

// health returns GET /health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Kinds:     h.deps.Store.Count(),
		Stale:     []string{},
		Process:   h.proc.sample(r.Context()),
	}
	if h.deps.Hub != nil {
		resp.Connections = h.deps.Hub.Stats().Connected
	}
	maxAge := func(reading.Kind) time.Duration { return staleAfter }
	if h.deps.Scheduler != nil {
		maxAge = h.deps.Scheduler.MaxAge
	}
	for _, k := range h.deps.Store.StaleBy(maxAge) {
		resp.Stale = append(resp.Stale, string(k))
	}
	if resp.Kinds == 0 || len(resp.Stale) > 0 {
		resp.Status = "degraded"
	}
	jsonResp(w, http.StatusOK, resp)
}

// root returns GET /api.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, MessageResponse{Message: "Welcome to the DOCRAT Sustainability Monitoring API"})
}

// snapshot returns GET /api/snapshot.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, SnapshotResponse{
		Data:        h.deps.Store.Latest(),
		GeneratedAt: h.now().UTC().Format(time.RFC3339),
	})
}

// airQuality returns GET /api/air-quality.
func (h *Handler) airQuality(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	resp := AirQualityResponse{History: h.deps.Store.History()}
	if e, ok := h.deps.Store.Get(reading.KindAirQuality); ok {
		if aq, ok := e.Reading.(reading.AirQuality); ok {
			resp.AirQuality = &aq
		}
	}
	if len(resp.History) > 0 {
		st, err := store.Summarize(resp.History)
		if err != nil {
			slog.Warn("api: summarize air quality history", "err", err)
		} else {
			resp.Stats = &st
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// news returns GET /api/news.
func (h *Handler) news(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	var resp NewsResponse
	if e, ok := h.deps.Store.Get(reading.KindNews); ok {
		if n, ok := e.Reading.(reading.News); ok {
			resp.News = &n
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// insights returns GET /api/insights: live insights newest first, then the
// curated list, capped at maxInsights.
func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	out := make([]any, 0, maxInsights)
	for _, in := range h.deps.Store.Insights() {
		out = append(out, in)
	}
	for _, in := range catalog.Insights() {
		out = append(out, in)
	}
	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	jsonResp(w, http.StatusOK, InsightsResponse{Insights: out})
}

// score returns GET /api/sustainability/score.
func (h *Handler) score(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	trend := catalog.ScoreTrend()
	resp := ScoreResponse{Trend: trend}
	if n := len(trend); n > 0 {
		resp.PreviousScore = trend[n-1].Score
	}
	if e, ok := h.deps.Store.Get(reading.KindScore); ok {
		if sc, ok := e.Reading.(reading.SustainabilityScore); ok {
			resp.Score = &sc
			if resp.PreviousScore > 0 {
				pct := float64(sc.OverallScore-resp.PreviousScore) / float64(resp.PreviousScore) * 100
				resp.ChangePercentage = math.Round(pct*10) / 10
			}
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// --- catalog ----------------------------------------------------------------

func (h *Handler) listMeetings(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, catalog.Meetings())
}

// getMeeting returns GET /api/meetings/{id}.
func (h *Handler) getMeeting(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/meetings/")
	if raw == "" {
		h.listMeetings(w, r)
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "meeting id must be an integer")
		return
	}
	m, ok := catalog.MeetingByID(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "meeting not found")
		return
	}
	jsonResp(w, http.StatusOK, m)
}

// meetingInsights returns GET /api/insights/{meeting_id}. Meetings outside
// the catalog still get the generic bundle.
func (h *Handler) meetingInsights(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/insights/")
	if raw == "" {
		h.insights(w, r)
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "meeting id must be an integer")
		return
	}
	var title string
	var topics []string
	if m, ok := catalog.MeetingByID(id); ok {
		title, topics = m.Title, m.Topics
	}
	jsonResp(w, http.StatusOK, youtube.Insights(id, title, topics))
}

func (h *Handler) listPermits(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, catalog.Permits())
}

// getPermit returns GET /api/permits/{id}.
func (h *Handler) getPermit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/permits/")
	if id == "" {
		h.listPermits(w, r)
		return
	}
	p, ok := catalog.PermitByID(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "permit not found")
		return
	}
	jsonResp(w, http.StatusOK, p)
}

func (h *Handler) listSensors(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, catalog.Sensors())
}

// getSensor returns GET /api/sensors/{id}.
func (h *Handler) getSensor(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/sensors/")
	if id == "" {
		h.listSensors(w, r)
		return
	}
	s, ok := catalog.SensorByID(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "sensor not found")
		return
	}
	jsonResp(w, http.StatusOK, s)
}

func (h *Handler) markers(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	jsonResp(w, http.StatusOK, catalog.Markers())
}

// --- meeting extraction -----------------------------------------------------

// extract returns POST /api/extract. The url comes from a JSON body or from
// a form field.
func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if h.deps.Meetings == nil {
		jsonErr(w, http.StatusServiceUnavailable, "meeting extraction is not configured")
		return
	}

	url, err := extractURL(w, r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	x, err := h.deps.Meetings.Extract(r.Context(), url)
	switch {
	case errors.Is(err, youtube.ErrNoURL), errors.Is(err, youtube.ErrInvalidURL):
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("api: extract meeting", "url", url, "err", err)
		jsonErr(w, http.StatusBadGateway, "extraction failed")
		return
	}
	jsonResp(w, http.StatusOK, x)
}

// search returns GET /api/youtube/search?q=&org=&type=&max=.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if h.deps.Meetings == nil {
		jsonErr(w, http.StatusServiceUnavailable, "meeting search is not configured")
		return
	}

	v := r.URL.Query()
	q := youtube.SearchQuery{
		Keywords:     v.Get("q"),
		Organization: v.Get("org"),
		MeetingType:  v.Get("type"),
	}
	if raw := v.Get("max"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			jsonErr(w, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		q.MaxResults = min(n, youtube.MaxSearchResults)
	}

	videos, err := h.deps.Meetings.Search(r.Context(), q)
	switch {
	case errors.Is(err, youtube.ErrNoKeywords):
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("api: search meetings", "query", q.String(), "err", err)
		jsonErr(w, http.StatusBadGateway, "search failed")
		return
	}
	if videos == nil {
		videos = []youtube.Video{}
	}
	jsonResp(w, http.StatusOK, SearchResponse{Query: q.String(), Results: videos})
}

// --- helpers ----------------------------------------------------------------

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// extractURL reads the url field from a JSON body or a (multipart) form.
func extractURL(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", errors.New("invalid JSON body")
		}
		return req.URL, nil
	}
	return r.FormValue("url"), nil
}
