package source

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/docrat/docrat/server/internal/reading"
)

// Score categories.
const (
	CategoryWater     = "water"
	CategoryEnergy    = "energy"
	CategoryEmissions = "emissions"
	CategoryWaste     = "waste"
)

// Category weights for the overall score. They must sum to 1.0.
const (
	weightEnergy    = 0.30
	weightEmissions = 0.30
	weightWater     = 0.20
	weightWaste     = 0.20
)

// Score states.
const (
	StateExcellent = "excellent"
	StateFair      = "fair"
	StatePoor      = "poor"
)

// Thresholds that map an overall score to a state.
const (
	ThresholdExcellent = 80
	ThresholdFair      = 60
)

// ComputeScore combines category scores (0..100) into the overall score.
//
//	overall = energy*0.30 + emissions*0.30 + water*0.20 + waste*0.20
//
// Missing categories count as 0.
func ComputeScore(categories map[string]int) (overall int, state string) {
	v := float64(clamp(categories[CategoryEnergy], 0, 100))*weightEnergy +
		float64(clamp(categories[CategoryEmissions], 0, 100))*weightEmissions +
		float64(clamp(categories[CategoryWater], 0, 100))*weightWater +
		float64(clamp(categories[CategoryWaste], 0, 100))*weightWaste
	overall = int(math.Round(v))
	return overall, stateFromScore(overall)
}

// stateFromScore maps an overall score to a named state.
func stateFromScore(score int) string {
	switch {
	case score >= ThresholdExcellent:
		return StateExcellent
	case score >= ThresholdFair:
		return StateFair
	default:
		return StatePoor
	}
}

// Score simulates slowly drifting category scores. Each Fetch moves every
// category by -2..+3 points, clamped to 0..100.
type Score struct {
	rng *Rand
	now func() time.Time

	mu         sync.Mutex
	categories map[string]int
}

// NewScore starts the walk from a plausible baseline.
func NewScore(rng *Rand) *Score {
	return &Score{
		rng: rng,
		now: time.Now,
		categories: map[string]int{
			CategoryWater:     82,
			CategoryEnergy:    78,
			CategoryEmissions: 64,
			CategoryWaste:     80,
		},
	}
}

func (s *Score) Kind() reading.Kind { return reading.KindScore }

// Fetch advances the walk one step. It never fails.
func (s *Score) Fetch(ctx context.Context) (reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	cats := make(map[string]int, len(s.categories))
	for k, v := range s.categories {
		v = clamp(v+s.rng.Between(-2, 3), 0, 100)
		s.categories[k] = v
		cats[k] = v
	}
	s.mu.Unlock()

	overall, state := ComputeScore(cats)
	return reading.SustainabilityScore{
		OverallScore: overall,
		State:        state,
		Categories:   cats,
		Timestamp:    s.now().UTC(),
	}, nil
}
