package api

import (
	"github.com/docrat/docrat/server/internal/catalog"
	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/store"
	"github.com/docrat/docrat/server/internal/youtube"
)

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status      string       `json:"status"`
	Timestamp   string       `json:"timestamp"` // RFC3339
	Connections int          `json:"connections"`
	Kinds       int          `json:"kinds"`
	Stale       []string     `json:"stale"`
	Process     ProcessStats `json:"process"`
}

// ProcessStats describes the server process.
type ProcessStats struct {
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
}

// MessageResponse is a plain message body.
type MessageResponse struct {
	Message string `json:"message"`
}

// SnapshotResponse is the payload for GET /api/snapshot.
type SnapshotResponse struct {
	Data        map[reading.Kind]reading.Reading `json:"data"`
	GeneratedAt string                           `json:"generated_at"` // RFC3339
}

// AirQualityResponse is the payload for GET /api/air-quality.
type AirQualityResponse struct {
	AirQuality *reading.AirQuality `json:"air_quality"`
	History    []store.AQIPoint    `json:"history"`
	Stats      *store.HistoryStats `json:"stats"`
}

// NewsResponse is the payload for GET /api/news.
type NewsResponse struct {
	News *reading.News `json:"news"`
}

// InsightsResponse is the payload for GET /api/insights. Items are either
// live reading.Insight values or curated catalog.Insight values.
type InsightsResponse struct {
	Insights []any `json:"insights"`
}

// ScoreResponse is the payload for GET /api/sustainability/score.
type ScoreResponse struct {
	Score            *reading.SustainabilityScore `json:"score"`
	PreviousScore    int                          `json:"previous_score"`
	ChangePercentage float64                      `json:"change_percentage"`
	Trend            []catalog.TrendPoint         `json:"trend"`
}

// SearchResponse is the payload for GET /api/youtube/search.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []youtube.Video `json:"results"`
}

// extractRequest is the JSON body accepted by POST /api/extract.
type extractRequest struct {
	URL string `json:"url"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
