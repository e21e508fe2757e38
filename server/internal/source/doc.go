// Package source provides the DataSource implementations the scheduler pulls
// readings from.
//
// Every Source reports its Kind and fetches one reading under the caller's
// context. Real sources:
//
//   - AirQuality  WAQI feed API (token from AIRQUALITY_API_KEY)
//   - News        NewsAPI /v2/everything, cached for cache_ttl (NEWS_API_KEY)
//   - Sensors     Prometheus text scrape of the sensor agent
//   - Score       weighted sustainability score over drifting category scores
//   - Insights    rotation through canned trend observations
//
// Outgoing API calls are paced by an x/time/rate limiter and bounded by an
// http.Client timeout. A missing key or endpoint returns ErrNoAPIKey or
// ErrNotConfigured; any error tells the scheduler to use the Synth fallback,
// which synthesizes a plausible reading for every kind and never fails.
package source
