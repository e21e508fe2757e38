package reading

import (
	"fmt"
	"time"

	"github.com/docrat/docrat/pkg/types"
)

// Kind identifies one tracked metric.
type Kind string

// Tracked kinds.
const (
	KindAirQuality Kind = "air_quality"
	KindNews       Kind = "news"
	KindScore      Kind = "sustainability_score"
	KindInsight    Kind = "insight"
	KindSensors    Kind = "sensors"
)

// Kinds lists every tracked kind in a stable order.
var Kinds = []Kind{KindAirQuality, KindNews, KindScore, KindInsight, KindSensors}

// ParseKind converts s to a Kind, rejecting names that are not tracked.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// UpdateType returns the envelope type used when a fresh reading of k is
// pushed to clients. Insights go out as plain "insight".
func (k Kind) UpdateType() string {
	if k == KindInsight {
		return TypeInsight
	}
	return string(k) + "_update"
}

// Reading is one immutable, timestamped value for a tracked kind.
type Reading interface {
	Kind() Kind
	Time() time.Time
}

// AirQuality is an air quality index observation.
type AirQuality struct {
	AQI        int                `json:"aqi"`
	Status     string             `json:"status"`
	Location   string             `json:"location"`
	Pollutants map[string]float64 `json:"pollutants,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

func (AirQuality) Kind() Kind        { return KindAirQuality }
func (a AirQuality) Time() time.Time { return a.Timestamp }

// AQIStatus maps an AQI value to its US EPA category label.
func AQIStatus(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

// Article is one news headline.
type Article struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// News is the latest batch of environmental headlines.
type News struct {
	Articles  []Article `json:"articles"`
	Timestamp time.Time `json:"timestamp"`
}

func (News) Kind() Kind        { return KindNews }
func (n News) Time() time.Time { return n.Timestamp }

// SustainabilityScore is the composite score with its per-category inputs.
type SustainabilityScore struct {
	OverallScore int            `json:"overall_score"`
	State        string         `json:"state"`
	Categories   map[string]int `json:"categories"`
	Timestamp    time.Time      `json:"timestamp"`
}

func (SustainabilityScore) Kind() Kind        { return KindScore }
func (s SustainabilityScore) Time() time.Time { return s.Timestamp }

// Insight is a short observation derived from other readings.
type Insight struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Severity  string    `json:"severity,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (Insight) Kind() Kind        { return KindInsight }
func (i Insight) Time() time.Time { return i.Timestamp }

// Sensors is the current value of every field sensor.
type Sensors struct {
	Sensors   []types.SensorReading `json:"sensors"`
	Timestamp time.Time             `json:"timestamp"`
}

func (Sensors) Kind() Kind        { return KindSensors }
func (s Sensors) Time() time.Time { return s.Timestamp }
