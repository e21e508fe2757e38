package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	// Only the agent section is present; the server section falls back to defaults.
	p := writeConfig(t, `agent:
  listen: ":9100"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", s.HTTPPort, DefaultHTTPPort)
	}
	if s.GRPCPort != DefaultGRPCPort {
		t.Errorf("grpc_port: got %d, want %d", s.GRPCPort, DefaultGRPCPort)
	}
	if s.Scheduler.Mode != ModeRandom {
		t.Errorf("scheduler.mode: got %q, want random", s.Scheduler.Mode)
	}
	if s.Scheduler.MinInterval != DefaultMinInterval || s.Scheduler.MaxInterval != DefaultMaxInterval {
		t.Errorf("intervals: got %v..%v, want %v..%v",
			s.Scheduler.MinInterval, s.Scheduler.MaxInterval, DefaultMinInterval, DefaultMaxInterval)
	}
	if s.Sources.News.CacheTTL != DefaultNewsCacheTTL {
		t.Errorf("news.cache_ttl: got %v, want %v", s.Sources.News.CacheTTL, DefaultNewsCacheTTL)
	}
	if len(s.Insights.Rules) != 1 || s.Insights.Rules[0].Condition != "aqi > 100" {
		t.Errorf("insights.rules: got %+v, want default aqi rule", s.Insights.Rules)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8002" {
		t.Errorf("Addr: got %q, want 0.0.0.0:8002", got)
	}
}

func TestLoad_FullServer(t *testing.T) {
	p := writeConfig(t, `server:
  host: 127.0.0.1
  http_port: 9091
  grpc_port: 0
  log_level: debug
  allowed_origins: ["http://localhost:3000"]
  scheduler:
    mode: per_kind
    min_interval: 2s
    max_interval: 4s
    weights:
      news: 0
    intervals:
      air_quality: 3s
  insights:
    rules:
      - name: low-score
        kind: sustainability_score
        condition: "overall_score < 50"
        severity: critical
    webhooks:
      - type: slack
        url_env: SLACK_URL
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.Addr() != "127.0.0.1:9091" {
		t.Errorf("Addr: got %q, want 127.0.0.1:9091", s.Addr())
	}
	if s.GRPCPort != 0 {
		t.Errorf("grpc_port: got %d, want 0", s.GRPCPort)
	}
	if s.Scheduler.Mode != ModePerKind {
		t.Errorf("mode: got %q, want per_kind", s.Scheduler.Mode)
	}
	if s.Scheduler.Weights["news"] != 0 {
		t.Errorf("weights.news: got %v, want 0", s.Scheduler.Weights["news"])
	}
	if s.Scheduler.Weights["air_quality"] != 0.40 {
		t.Errorf("weights.air_quality: got %v, want default 0.40 kept", s.Scheduler.Weights["air_quality"])
	}
	if s.Scheduler.Intervals["air_quality"] != 3*time.Second {
		t.Errorf("intervals.air_quality: got %v, want 3s", s.Scheduler.Intervals["air_quality"])
	}
	if len(s.Insights.Rules) != 1 || s.Insights.Rules[0].Name != "low-score" {
		t.Errorf("rules: got %+v, want only low-score", s.Insights.Rules)
	}
	if len(s.AllowedOrigins) != 1 {
		t.Errorf("allowed_origins: got %v", s.AllowedOrigins)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_WAQI_TOKEN", "supersecret")
	p := writeConfig(t, `server:
  sources:
    air_quality:
      key_env: TEST_WAQI_TOKEN
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Sources.AirQuality.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
	if k := (AirQualityConfig{}).Key(); k != "" {
		t.Errorf("Key() with no env name: got %q, want empty", k)
	}

	t.Setenv("DOCRAT_API_KEY", "k1")
	if k := cfg.Server.Auth.Key(); k != "k1" {
		t.Errorf("Auth.Key(): got %q, want k1", k)
	}
	if h := cfg.Server.Auth.Header; h != "x-api-key" {
		t.Errorf("auth.header: got %q, want x-api-key", h)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCRAT_HOST", "localhost")
	t.Setenv("DOCRAT_PORT", "8765")
	t.Setenv("DOCRAT_MIN_INTERVAL", "1s")
	t.Setenv("DOCRAT_MAX_INTERVAL", "3s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load(writeConfig(t, "server:\n  http_port: 9000\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.Addr() != "localhost:8765" {
		t.Errorf("Addr: got %q, want localhost:8765", s.Addr())
	}
	if s.Scheduler.MinInterval != time.Second || s.Scheduler.MaxInterval != 3*time.Second {
		t.Errorf("intervals: got %v..%v, want 1s..3s", s.Scheduler.MinInterval, s.Scheduler.MaxInterval)
	}
	if len(s.AllowedOrigins) != 2 || s.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("allowed_origins: got %v", s.AllowedOrigins)
	}
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "8100")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 8100 {
		t.Errorf("http_port: got %d, want 8100", cfg.Server.HTTPPort)
	}
}

func TestLoad_BadEnvPort(t *testing.T) {
	t.Setenv("DOCRAT_PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric DOCRAT_PORT, got nil")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"port out of range":   "server:\n  http_port: 70000\n",
		"unknown mode":        "server:\n  scheduler:\n    mode: cron\n",
		"max below min":       "server:\n  scheduler:\n    min_interval: 10s\n    max_interval: 5s\n",
		"unknown weight":      "server:\n  scheduler:\n    weights:\n      weather: 1\n",
		"negative weight":     "server:\n  scheduler:\n    weights:\n      news: -1\n",
		"bad log level":       "server:\n  log_level: trace\n",
		"same ports":          "server:\n  http_port: 9000\n  grpc_port: 9000\n",
		"bad rule condition":  "server:\n  insights:\n    rules:\n      - name: x\n        kind: air_quality\n        condition: aqi\n",
		"bad rule kind":       "server:\n  insights:\n    rules:\n      - name: x\n        kind: weather\n        condition: aqi > 1\n",
		"bad webhook type":    "server:\n  insights:\n    webhooks:\n      - type: pagerduty\n",
		"auth without header": "server:\n  auth:\n    header: \"\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [unclosed")); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := writeConfig(t, "server:\n  http_port: 9000\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 16)
	go Watch(ctx, p, func(c *Config) { //nolint:errcheck
		select {
		case got <- c:
		default:
		}
	})

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(p, []byte("server:\n  http_port: 9001\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// A truncate and a write may arrive as separate events; wait for the final one.
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Server.HTTPPort == 9001 {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload with http_port 9001")
		}
	}
}

func TestWatch_MissingFile(t *testing.T) {
	if err := Watch(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}); err == nil {
		t.Fatal("expected error watching a missing file, got nil")
	}
}
