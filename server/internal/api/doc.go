// Package api implements the HTTP REST API for docrat-server.
//
// New(deps) returns an http.Handler that serves:
//
//	GET  /health                    status, connection count and process stats
//	GET  /api                       welcome message
//	GET  /api/snapshot              latest reading per kind
//	GET  /api/air-quality           latest AQI, 24-point history and its statistics
//	GET  /api/news                  latest news reading
//	GET  /api/insights              live insights, then curated ones (max 10)
//	GET  /api/insights/{meeting_id} actionable follow-ups for one meeting
//	GET  /api/sustainability/score  latest score and the monthly trend
//	GET  /api/meetings[/{id}]       meeting list and detail
//	GET  /api/permits[/{id}]        permit register and detail
//	GET  /api/sensors[/{id}]        sensor inventory and detail
//	GET  /api/map/markers           map overlay markers
//	POST /api/extract               meeting extraction from a URL (form or JSON "url")
//	GET  /api/youtube/search        likely public meeting videos (?q=&org=&type=&max=)
//	GET  /metrics                   Prometheus text exposition of server counters
//
// All endpoints respond with JSON (except /metrics), return 405 for the
// wrong method and report failures as {"error": msg}.
package api
