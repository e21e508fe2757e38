package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/docrat/docrat/server/internal/reading"
)

// Default values for the server configuration.
const (
	DefaultHost         = "0.0.0.0"
	DefaultHTTPPort     = 8002
	DefaultGRPCPort     = 50051
	DefaultLogLevel     = "info"
	DefaultMode         = ModeRandom
	DefaultMinInterval  = 5 * time.Second
	DefaultMaxInterval  = 60 * time.Second
	DefaultFetchTimeout = 5 * time.Second
	DefaultNewsCacheTTL = 30 * time.Minute
	DefaultCooldown     = 10 * time.Minute
)

// Scheduler modes.
const (
	// ModeRandom runs one loop that sleeps a jittered interval and refreshes a
	// weighted-random kind each iteration.
	ModeRandom = "random"

	// ModePerKind runs one independent timer per kind.
	ModePerKind = "per_kind"
)

// Config holds the server-side configuration parsed from the `server:` section
// of config.yaml. The `agent:` key in the same file is ignored.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// Host is the interface the HTTP server binds to (default 0.0.0.0).
	Host string `yaml:"host"`

	// HTTPPort serves the REST API and the /ws channel (default 8002).
	HTTPPort int `yaml:"http_port"`

	// GRPCPort serves the gRPC health service. 0 disables it.
	GRPCPort int `yaml:"grpc_port"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// AllowedOrigins restricts WebSocket upgrades by Origin header.
	// Empty allows every origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Auth guards the gRPC health service and POST /api/extract.
	Auth AuthConfig `yaml:"auth"`

	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Sources    SourcesConfig    `yaml:"sources"`
	Insights   InsightsConfig   `yaml:"insights"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.HTTPPort)
}

// SchedulerConfig controls how often each kind is refreshed.
type SchedulerConfig struct {
	// Mode is one of: random | per_kind.
	Mode string `yaml:"mode"`

	// MinInterval and MaxInterval bound the jittered sleep between iterations.
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`

	// FetchTimeout caps a single DataSource call.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// Weights sets the relative chance each kind is picked in random mode.
	// File values merge over the defaults; a weight of 0 disables a kind.
	Weights map[string]float64 `yaml:"weights"`

	// Intervals sets the base cadence per kind in per_kind mode. Kinds absent
	// from the map use MaxInterval.
	Intervals map[string]time.Duration `yaml:"intervals"`
}

// SourcesConfig configures the real DataSource implementations.
type SourcesConfig struct {
	AirQuality AirQualityConfig `yaml:"air_quality"`
	News       NewsConfig       `yaml:"news"`
	Sensors    SensorsConfig    `yaml:"sensors"`
}

// AirQualityConfig configures the WAQI feed source.
type AirQualityConfig struct {
	BaseURL string `yaml:"base_url"`

	// City is the WAQI feed station; "here" geolocates by IP.
	City string `yaml:"city"`

	// KeyEnv is the environment variable holding the WAQI token.
	KeyEnv string `yaml:"key_env"`

	// RatePerMinute caps outgoing requests.
	RatePerMinute int `yaml:"rate_per_minute"`
}

// Key returns the API token resolved from the environment.
func (a AirQualityConfig) Key() string { return lookupEnv(a.KeyEnv) }

// NewsConfig configures the NewsAPI source.
type NewsConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Query    string        `yaml:"query"`
	PageSize int           `yaml:"page_size"`
	KeyEnv   string        `yaml:"key_env"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	RatePerMinute int `yaml:"rate_per_minute"`
}

// Key returns the API key resolved from the environment.
func (n NewsConfig) Key() string { return lookupEnv(n.KeyEnv) }

// SensorsConfig points at the sensor agent's metrics endpoint.
type SensorsConfig struct {
	// Endpoint is the agent's Prometheus text URL. Empty disables the source.
	Endpoint string `yaml:"endpoint"`
}

// InsightsConfig holds insight rules and webhook delivery targets.
type InsightsConfig struct {
	Rules    []InsightRule   `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// InsightRule turns a reading into an insight when its condition holds.
type InsightRule struct {
	// Name identifies the rule and is the cooldown key.
	Name string `yaml:"name"`

	// Kind restricts the rule to readings of one kind.
	Kind string `yaml:"kind"`

	// Condition is a simple expression: "aqi > 100", "overall_score < 60",
	// "status == Hazardous".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Category is copied onto the produced insight (air_quality, energy, ...).
	Category string `yaml:"category"`

	// Message is the insight text; "{value}" is replaced by the observed value.
	Message string `yaml:"message"`

	// Cooldown suppresses re-fires for this duration. Defaults to 10m.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string { return lookupEnv(w.URLEnv) }

// AuthConfig configures the optional shared API key.
type AuthConfig struct {
	// Header carries the key on HTTP requests and in gRPC metadata.
	Header string `yaml:"header"`

	// KeyEnv names the environment variable holding the expected key. An
	// unset or empty variable disables the check.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string { return lookupEnv(a.KeyEnv) }

// YouTubeConfig configures meeting video extraction and search.
type YouTubeConfig struct {
	KeyEnv     string `yaml:"key_env"`
	SearchDays int    `yaml:"search_days"`
	MaxResults int64  `yaml:"max_results"`
}

// Key returns the Data API key resolved from the environment.
func (y YouTubeConfig) Key() string { return lookupEnv(y.KeyEnv) }

// SummarizerConfig configures the language-model summary client.
type SummarizerConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	KeyEnv  string        `yaml:"key_env"`
	Timeout time.Duration `yaml:"timeout"`
}

// Key returns the API key resolved from the environment.
func (s SummarizerConfig) Key() string { return lookupEnv(s.KeyEnv) }

// Load reads and parses the config file at path, returning the server
// configuration. An empty path skips the file and uses defaults. Environment
// overrides are applied after the file and before validation.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     DefaultHost,
			HTTPPort: DefaultHTTPPort,
			GRPCPort: DefaultGRPCPort,
			LogLevel: DefaultLogLevel,
			Auth: AuthConfig{
				Header: "x-api-key",
				KeyEnv: "DOCRAT_API_KEY",
			},
			Scheduler: SchedulerConfig{
				Mode:         DefaultMode,
				MinInterval:  DefaultMinInterval,
				MaxInterval:  DefaultMaxInterval,
				FetchTimeout: DefaultFetchTimeout,
				Weights: map[string]float64{
					string(reading.KindAirQuality): 0.40,
					string(reading.KindScore):      0.25,
					string(reading.KindInsight):    0.15,
					string(reading.KindNews):       0.10,
					string(reading.KindSensors):    0.10,
				},
				Intervals: map[string]time.Duration{
					string(reading.KindAirQuality): 15 * time.Second,
					string(reading.KindScore):      30 * time.Second,
					string(reading.KindSensors):    30 * time.Second,
					string(reading.KindInsight):    60 * time.Second,
					string(reading.KindNews):       5 * time.Minute,
				},
			},
			Sources: SourcesConfig{
				AirQuality: AirQualityConfig{
					BaseURL:       "https://api.waqi.info",
					City:          "here",
					KeyEnv:        "AIRQUALITY_API_KEY",
					RatePerMinute: 30,
				},
				News: NewsConfig{
					BaseURL:       "https://newsapi.org",
					Query:         "sustainability OR climate OR environment",
					PageSize:      5,
					KeyEnv:        "NEWS_API_KEY",
					CacheTTL:      DefaultNewsCacheTTL,
					RatePerMinute: 10,
				},
			},
			Insights: InsightsConfig{
				Rules: []InsightRule{{
					Name:      "elevated-aqi",
					Kind:      string(reading.KindAirQuality),
					Condition: "aqi > 100",
					Severity:  "warning",
					Category:  "air_quality",
					Message:   "Air quality has reached unhealthy levels (AQI {value}). Consider limiting outdoor activities.",
					Cooldown:  DefaultCooldown,
				}},
			},
			YouTube: YouTubeConfig{
				KeyEnv:     "YOUTUBE_API_KEY",
				SearchDays: 90,
				MaxResults: 5,
			},
			Summarizer: SummarizerConfig{
				BaseURL: "https://api.openai.com",
				Model:   "gpt-3.5-turbo",
				KeyEnv:  "OPENAI_API_KEY",
				Timeout: 20 * time.Second,
			},
		},
	}
}

// applyEnv overrides file values from DOCRAT_* variables. PORT is honoured as
// a fallback for DOCRAT_PORT.
func applyEnv(cfg *Config) error {
	s := &cfg.Server
	if v := os.Getenv("DOCRAT_HOST"); v != "" {
		s.Host = v
	}

	port := os.Getenv("DOCRAT_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("DOCRAT_PORT %q: %w", port, err)
		}
		s.HTTPPort = n
	}

	if v := os.Getenv("DOCRAT_MIN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DOCRAT_MIN_INTERVAL %q: %w", v, err)
		}
		s.Scheduler.MinInterval = d
	}
	if v := os.Getenv("DOCRAT_MAX_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DOCRAT_MAX_INTERVAL %q: %w", v, err)
		}
		s.Scheduler.MaxInterval = d
	}
	if v := os.Getenv("DOCRAT_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		s.AllowedOrigins = splitList(v)
	}
	return nil
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if s.GRPCPort < 0 || s.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d is out of range [0, 65535]", s.GRPCPort)
	}
	if s.GRPCPort != 0 && s.GRPCPort == s.HTTPPort {
		return fmt.Errorf("server.grpc_port must differ from server.http_port")
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", s.LogLevel)
	}

	if s.Auth.KeyEnv != "" && s.Auth.Header == "" {
		return errors.New("server.auth.header is required when key_env is set")
	}

	sc := s.Scheduler
	switch sc.Mode {
	case ModeRandom, ModePerKind:
	default:
		return fmt.Errorf("server.scheduler.mode %q unknown: want random|per_kind", sc.Mode)
	}
	if sc.MinInterval <= 0 {
		return errors.New("server.scheduler.min_interval must be positive")
	}
	if sc.MaxInterval < sc.MinInterval {
		return fmt.Errorf("server.scheduler.max_interval %v is below min_interval %v", sc.MaxInterval, sc.MinInterval)
	}
	if sc.FetchTimeout <= 0 {
		return errors.New("server.scheduler.fetch_timeout must be positive")
	}
	var total float64
	for k, w := range sc.Weights {
		if _, err := reading.ParseKind(k); err != nil {
			return fmt.Errorf("server.scheduler.weights: %w", err)
		}
		if w < 0 {
			return fmt.Errorf("server.scheduler.weights.%s must not be negative", k)
		}
		total += w
	}
	if sc.Mode == ModeRandom && total == 0 {
		return errors.New("server.scheduler.weights must give at least one kind a positive weight")
	}
	for k, d := range sc.Intervals {
		if _, err := reading.ParseKind(k); err != nil {
			return fmt.Errorf("server.scheduler.intervals: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("server.scheduler.intervals.%s must be positive", k)
		}
	}

	for i, r := range s.Insights.Rules {
		if r.Name == "" {
			return fmt.Errorf("server.insights.rules[%d]: name is required", i)
		}
		if _, err := reading.ParseKind(r.Kind); err != nil {
			return fmt.Errorf("server.insights.rules[%d]: %w", i, err)
		}
		if len(strings.Fields(r.Condition)) != 3 {
			return fmt.Errorf("server.insights.rules[%d]: condition %q must be \"field op value\"", i, r.Condition)
		}
	}
	for i, w := range s.Insights.Webhooks {
		switch w.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("server.insights.webhooks[%d]: type %q unknown: want slack|teams|http", i, w.Type)
		}
	}
	return nil
}

func lookupEnv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
