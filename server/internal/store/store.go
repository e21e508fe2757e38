package store

import (
	"sync"
	"time"

	"github.com/docrat/docrat/server/internal/reading"
)

// Retention limits.
const (
	// HistoryLen is the number of air quality points kept for charts.
	HistoryLen = 24

	// MaxInsights is the number of live insights kept, newest first.
	MaxInsights = 10
)

// Entry is a reading together with the time it was stored.
type Entry struct {
	Reading   reading.Reading
	UpdatedAt time.Time
}

// AQIPoint is one air quality history sample.
type AQIPoint struct {
	Timestamp time.Time `json:"timestamp"`
	AQI       int       `json:"aqi"`
}

// Store is the thread-safe in-memory snapshot: the latest reading per kind,
// a bounded air quality history and the most recent insights.
type Store struct {
	mu       sync.RWMutex
	latest   map[reading.Kind]*Entry
	history  []AQIPoint
	insights []reading.Insight
	now      func() time.Time // injectable for deterministic tests
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		latest: make(map[reading.Kind]*Entry),
		now:    time.Now,
	}
}

// Put records r as the latest reading for its kind. Air quality readings are
// also appended to the history and insights are prepended to the recent list.
func (s *Store) Put(r reading.Reading) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[r.Kind()] = &Entry{Reading: r, UpdatedAt: s.now()}

	switch v := r.(type) {
	case reading.AirQuality:
		s.appendHistory(AQIPoint{Timestamp: v.Timestamp, AQI: v.AQI})
	case reading.Insight:
		s.insights = append([]reading.Insight{v}, s.insights...)
		if len(s.insights) > MaxInsights {
			s.insights = s.insights[:MaxInsights]
		}
	}
}

// SeedHistory replaces the air quality history with points (oldest first),
// keeping at most the newest HistoryLen.
func (s *Store) SeedHistory(points []AQIPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = s.history[:0]
	for _, p := range points {
		s.appendHistory(p)
	}
}

// Get returns the entry for kind k and whether one has been stored.
func (s *Store) Get(k reading.Kind) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.latest[k]
	return e, ok
}

// Latest returns a copy of the snapshot keyed by kind.
func (s *Store) Latest() map[reading.Kind]reading.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[reading.Kind]reading.Reading, len(s.latest))
	for k, e := range s.latest {
		out[k] = e.Reading
	}
	return out
}

// History returns a copy of the air quality history, oldest first.
func (s *Store) History() []AQIPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AQIPoint, len(s.history))
	copy(out, s.history)
	return out
}

// Insights returns a copy of the recent insights, newest first.
func (s *Store) Insights() []reading.Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]reading.Insight, len(s.insights))
	copy(out, s.insights)
	return out
}

// Count returns the number of kinds that have a stored reading.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.latest)
}

// Stale returns the kinds whose latest reading was stored more than maxAge ago.
func (s *Store) Stale(maxAge time.Duration) []reading.Kind {
	return s.StaleBy(func(reading.Kind) time.Duration { return maxAge })
}

// StaleBy is Stale with a per-kind limit. A kind whose limit is zero or
// negative is never reported.
func (s *Store) StaleBy(maxAge func(reading.Kind) time.Duration) []reading.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	var out []reading.Kind
	for _, k := range reading.Kinds {
		e, ok := s.latest[k]
		if !ok {
			continue
		}
		if limit := maxAge(k); limit > 0 && now.Sub(e.UpdatedAt) > limit {
			out = append(out, k)
		}
	}
	return out
}

// appendHistory must be called with s.mu held for writing.
func (s *Store) appendHistory(p AQIPoint) {
	s.history = append(s.history, p)
	if len(s.history) > HistoryLen {
		s.history = s.history[len(s.history)-HistoryLen:]
	}
}
