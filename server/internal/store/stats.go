package store

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// HistoryStats summarises the air quality history.
type HistoryStats struct {
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"stddev"`
}

// Summarize computes descriptive statistics over points. It returns an error
// when points is empty.
func Summarize(points []AQIPoint) (HistoryStats, error) {
	vals := make([]float64, 0, len(points))
	for _, p := range points {
		vals = append(vals, float64(p.AQI))
	}

	mean, err := stats.Mean(vals)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("mean: %w", err)
	}
	median, err := stats.Median(vals)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("median: %w", err)
	}
	lo, err := stats.Min(vals)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("min: %w", err)
	}
	hi, err := stats.Max(vals)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("max: %w", err)
	}
	sd, err := stats.StandardDeviationPopulation(vals)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("stddev: %w", err)
	}

	return HistoryStats{
		Samples: len(vals),
		Mean:    round2(mean),
		Median:  median,
		Min:     lo,
		Max:     hi,
		StdDev:  round2(sd),
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
