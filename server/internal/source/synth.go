package source

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docrat/docrat/pkg/types"
	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/store"
)

// MockLocation labels synthesized air quality readings.
const MockLocation = "City Center"

// Synth produces plausible readings locally. It backs every kind when a real
// source is unavailable and never fails.
type Synth struct {
	kind reading.Kind
	rng  *Rand
	now  func() time.Time
}

// NewSynth returns a fallback source for kind.
func NewSynth(kind reading.Kind, rng *Rand) *Synth {
	return &Synth{kind: kind, rng: rng, now: time.Now}
}

func (s *Synth) Kind() reading.Kind { return s.kind }

// Fetch synthesizes a reading of s.Kind(). It fails only if ctx is done.
func (s *Synth) Fetch(ctx context.Context) (reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	switch s.kind {
	case reading.KindAirQuality:
		return synthAirQuality(s.rng, now), nil
	case reading.KindNews:
		return synthNews(s.rng, now), nil
	case reading.KindScore:
		cats := map[string]int{
			CategoryWater:     s.rng.Between(60, 95),
			CategoryEnergy:    s.rng.Between(60, 95),
			CategoryEmissions: s.rng.Between(50, 90),
			CategoryWaste:     s.rng.Between(60, 95),
		}
		overall, state := ComputeScore(cats)
		return reading.SustainabilityScore{OverallScore: overall, State: state, Categories: cats, Timestamp: now}, nil
	case reading.KindInsight:
		return synthInsight(s.rng, now), nil
	case reading.KindSensors:
		return synthSensors(s.rng, now), nil
	}
	return nil, ErrNotConfigured
}

func synthAirQuality(rng *Rand, now time.Time) reading.AirQuality {
	aqi := rng.Between(30, 180)
	return reading.AirQuality{
		AQI:      aqi,
		Status:   reading.AQIStatus(aqi),
		Location: MockLocation,
		Pollutants: map[string]float64{
			"pm25": float64(aqi) * 0.4,
			"pm10": float64(aqi) * 0.7,
			"o3":   float64(rng.Between(10, 60)),
			"no2":  float64(rng.Between(5, 40)),
		},
		Timestamp: now,
	}
}

// SynthHistory returns n hourly air quality points ending at now, produced by
// a ±10 random walk clamped to 1..300.
func SynthHistory(rng *Rand, n int, now time.Time) []store.AQIPoint {
	out := make([]store.AQIPoint, n)
	aqi := rng.Between(30, 180)
	for i := 0; i < n; i++ {
		aqi = clamp(aqi+rng.Between(-10, 10), 1, 300)
		out[i] = store.AQIPoint{
			Timestamp: now.Add(-time.Duration(n-1-i) * time.Hour).UTC(),
			AQI:       aqi,
		}
	}
	return out
}

var mockHeadlines = []reading.Article{
	{Headline: "City expands urban tree canopy program to five new districts", Source: "Local Environmental News"},
	{Headline: "Regional water authority reports record conservation month", Source: "Water Watch"},
	{Headline: "New solar installations push municipal renewables past 35%", Source: "Clean Energy Daily"},
	{Headline: "Council reviews plan to cut transport emissions by 2030", Source: "Civic Ledger"},
	{Headline: "Recycling contamination drops after curbside education push", Source: "Waste Less Weekly"},
	{Headline: "Air monitors added near industrial corridor after resident complaints", Source: "Local Environmental News"},
}

func synthNews(rng *Rand, now time.Time) reading.News {
	const n = 3
	start := rng.Intn(len(mockHeadlines))
	arts := make([]reading.Article, 0, n)
	for i := 0; i < n; i++ {
		a := mockHeadlines[(start+i)%len(mockHeadlines)]
		a.PublishedAt = now.Add(-time.Duration(i*rng.Between(1, 6)) * time.Hour)
		arts = append(arts, a)
	}
	return reading.News{Articles: arts, Timestamp: now}
}

var cannedInsights = []struct{ text, category string }{
	{"Air quality has improved by 15% compared to last week's measurements.", "air_quality"},
	{"Energy efficiency increased by 3% due to recent solar panel installations.", "energy"},
	{"Water conservation efforts have reduced consumption by 7% month-over-month.", "water"},
	{"Waste recycling rates have exceeded targets by 10% for the second consecutive month.", "waste"},
	{"Carbon emissions are trending downward in line with the annual reduction goals.", "emissions"},
	{"The sustainability score has shown consistent improvement over the last 30 days.", "general"},
	{"Renewable energy sources now account for 35% of total energy consumption.", "energy"},
	{"Sustainable transportation initiatives have reduced traffic-related emissions by 12%.", "emissions"},
}

func synthInsight(rng *Rand, now time.Time) reading.Insight {
	c := cannedInsights[rng.Intn(len(cannedInsights))]
	return reading.Insight{
		ID:        uuid.NewString(),
		Text:      c.text,
		Category:  c.category,
		Severity:  "info",
		Source:    "trend",
		Timestamp: now,
	}
}

var mockSensors = []types.SensorReading{
	{ID: "S001", Type: "air_quality", Location: "Downtown", Unit: "aqi"},
	{ID: "S002", Type: "water_ph", Location: "North River", Unit: "pH"},
	{ID: "S003", Type: "noise", Location: "Highway Junction", Unit: "dB"},
	{ID: "S004", Type: "dissolved_oxygen", Location: "East River", Unit: "mg/L"},
	{ID: "S006", Type: "soil_moisture", Location: "City Park", Unit: "%"},
}

func synthSensors(rng *Rand, now time.Time) reading.Sensors {
	ranges := map[string][2]int{
		"air_quality":      {20, 140},
		"water_ph":         {65, 88},
		"noise":            {45, 80},
		"dissolved_oxygen": {30, 90},
		"soil_moisture":    {20, 45},
	}
	out := make([]types.SensorReading, len(mockSensors))
	for i, s := range mockSensors {
		r := ranges[s.Type]
		v := float64(rng.Between(r[0], r[1]))
		if s.Type == "water_ph" || s.Type == "dissolved_oxygen" {
			v /= 10
		}
		s.Value = v
		out[i] = s
	}
	return reading.Sensors{Sensors: out, Timestamp: now}
}
