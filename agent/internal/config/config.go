package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultListen       = ":9101"
	DefaultTickInterval = 5 * time.Second
	DefaultLogLevel     = "info"
)

// Config holds the agent configuration parsed from the `agent:` section of
// config.yaml. The `server:` key in the same file is ignored.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent-side settings.
type AgentConfig struct {
	// Listen is the address the /metrics endpoint binds to.
	Listen string `yaml:"listen"`

	// TickInterval controls how often every sensor takes a random-walk step.
	TickInterval time.Duration `yaml:"tick_interval"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// Seed fixes the random walk. 0 seeds from the clock.
	Seed int64 `yaml:"seed"`

	// Sensors is the simulated sensor set. Empty uses DefaultSensors.
	Sensors []Sensor `yaml:"sensors"`
}

// Sensor describes one simulated field sensor.
type Sensor struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Location string `yaml:"location"`
	Unit     string `yaml:"unit"`

	// Min and Max bound the random walk.
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`

	// Step is the largest change per tick. 0 uses 5% of the range.
	Step float64 `yaml:"step"`
}

// StepSize returns Step, or 5% of the range when Step is unset.
func (s Sensor) StepSize() float64 {
	if s.Step > 0 {
		return s.Step
	}
	return (s.Max - s.Min) * 0.05
}

// DefaultSensors mirrors the field network shown on the dashboard map.
func DefaultSensors() []Sensor {
	return []Sensor{
		{ID: "S001", Type: "air_quality", Location: "Downtown", Unit: "aqi", Min: 10, Max: 180},
		{ID: "S002", Type: "water_quality", Location: "North River", Unit: "ph", Min: 6.0, Max: 8.5, Step: 0.1},
		{ID: "S003", Type: "noise", Location: "Central Park", Unit: "db", Min: 35, Max: 90},
		{ID: "S004", Type: "air_quality", Location: "Industrial Zone", Unit: "aqi", Min: 40, Max: 220},
		{ID: "S005", Type: "water_quality", Location: "East Lake", Unit: "ph", Min: 6.0, Max: 8.5, Step: 0.1},
		{ID: "S006", Type: "temperature", Location: "Suburban Area", Unit: "celsius", Min: -5, Max: 38, Step: 0.5},
		{ID: "S007", Type: "soil_moisture", Location: "Western Forest", Unit: "percent", Min: 5, Max: 60},
		{ID: "S008", Type: "air_quality", Location: "Harbor", Unit: "aqi", Min: 15, Max: 160},
		{ID: "S009", Type: "noise", Location: "Transit Hub", Unit: "db", Min: 45, Max: 95},
	}
}

// Load reads and parses the YAML config file at path. An empty path skips the
// file. Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("agent config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("agent config: parse yaml: %w", err)
		}
	}
	if len(cfg.Agent.Sensors) == 0 {
		cfg.Agent.Sensors = DefaultSensors()
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("agent config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			Listen:       DefaultListen,
			TickInterval: DefaultTickInterval,
			LogLevel:     DefaultLogLevel,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	a := cfg.Agent
	if a.Listen == "" {
		return errors.New("agent.listen is required")
	}
	if a.TickInterval <= 0 {
		return errors.New("agent.tick_interval must be positive")
	}
	switch a.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("agent.log_level %q unknown: want debug|info|warn|error", a.LogLevel)
	}

	seen := make(map[string]bool, len(a.Sensors))
	for i, s := range a.Sensors {
		if s.ID == "" {
			return fmt.Errorf("sensors[%d]: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("sensors[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
		if s.Type == "" {
			return fmt.Errorf("sensors[%d] %q: type is required", i, s.ID)
		}
		if s.Max <= s.Min {
			return fmt.Errorf("sensors[%d] %q: max %v must exceed min %v", i, s.ID, s.Max, s.Min)
		}
		if s.Step < 0 {
			return fmt.Errorf("sensors[%d] %q: step must not be negative", i, s.ID)
		}
	}
	return nil
}
