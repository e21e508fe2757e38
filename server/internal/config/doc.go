// Package config loads the server-side configuration from the `server:` section
// of config.yaml (the `agent:` key is ignored by the server binary).
//
// Config fields:
//   - Host, HTTPPort     bind address for REST and /ws (default 0.0.0.0:8002)
//   - GRPCPort           gRPC health service, 0 disables (default 50051)
//   - LogLevel           debug | info | warn | error
//   - AllowedOrigins     WebSocket Origin allow-list, empty allows all
//   - Scheduler          mode (random | per_kind), interval bounds, fetch
//     timeout, per-kind weights and intervals
//   - Sources            WAQI air quality, NewsAPI, sensor agent endpoint
//   - Insights           rules ("aqi > 100") and webhook targets
//   - YouTube, Summarizer meeting extraction and language-model summaries
//
// API keys never live in the file: *_key_env fields name the environment
// variable to read. Load(path) applies defaults, the YAML file, then
// DOCRAT_HOST, DOCRAT_PORT (or PORT), DOCRAT_MIN_INTERVAL, DOCRAT_MAX_INTERVAL,
// DOCRAT_LOG_LEVEL and ALLOWED_ORIGINS, then validates. Watch(ctx, path, fn)
// reloads on file changes.
package config
