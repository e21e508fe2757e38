package source

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docrat/docrat/server/internal/reading"
)

// Insights rotates through the canned trend observations in order, so every
// one is shown before any repeats.
type Insights struct {
	now func() time.Time

	mu   sync.Mutex
	next int
}

// NewInsights starts the rotation at offset start.
func NewInsights(start int) *Insights {
	return &Insights{now: time.Now, next: start}
}

func (s *Insights) Kind() reading.Kind { return reading.KindInsight }

// Fetch returns the next insight in the rotation. It never fails.
func (s *Insights) Fetch(ctx context.Context) (reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	c := cannedInsights[s.next%len(cannedInsights)]
	s.next++
	s.mu.Unlock()

	return reading.Insight{
		ID:        uuid.NewString(),
		Text:      c.text,
		Category:  c.category,
		Severity:  "info",
		Source:    "trend",
		Timestamp: s.now().UTC(),
	}, nil
}
