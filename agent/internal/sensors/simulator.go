package sensors

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/docrat/docrat/agent/internal/config"
	"github.com/docrat/docrat/pkg/types"
)

type sensorState struct {
	cfg   config.Sensor
	value float64
}

// Simulator holds the simulated sensor values.
//
// All exported methods are safe for concurrent use.
type Simulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	sensors  []*sensorState // sorted by ID
	ticks    uint64
	lastTick time.Time
	now      func() time.Time
}

// New returns a Simulator for sensors. A zero seed seeds from the clock.
// Every sensor starts at the midpoint of its range.
func New(sensors []config.Sensor, seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Simulator{
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
		now: time.Now,
	}
	s.Reconfigure(sensors)
	return s
}

// Reconfigure replaces the sensor set. Sensors whose ID survives keep their
// current value, clamped to the new range.
func (s *Simulator) Reconfigure(sensors []config.Sensor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]float64, len(s.sensors))
	for _, st := range s.sensors {
		prev[st.cfg.ID] = st.value
	}

	next := make([]*sensorState, 0, len(sensors))
	for _, c := range sensors {
		v, ok := prev[c.ID]
		if !ok {
			v = (c.Min + c.Max) / 2
		}
		next = append(next, &sensorState{cfg: c, value: clamp(v, c.Min, c.Max)})
	}
	sort.Slice(next, func(i, j int) bool { return next[i].cfg.ID < next[j].cfg.ID })
	s.sensors = next
}

// Tick moves every sensor by a uniform step in [-step, +step].
func (s *Simulator) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.sensors {
		step := st.cfg.StepSize()
		st.value = clamp(st.value+(s.rng.Float64()*2-1)*step, st.cfg.Min, st.cfg.Max)
	}
	s.ticks++
	s.lastTick = s.now()
}

// Readings returns the current value of every sensor, sorted by ID.
func (s *Simulator) Readings() []types.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.SensorReading, 0, len(s.sensors))
	for _, st := range s.sensors {
		out = append(out, types.SensorReading{
			ID:       st.cfg.ID,
			Type:     st.cfg.Type,
			Location: st.cfg.Location,
			Unit:     st.cfg.Unit,
			Value:    st.value,
		})
	}
	return out
}

// Ticks returns the number of completed ticks and the time of the last one.
func (s *Simulator) Ticks() (uint64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks, s.lastTick
}

// Run ticks every interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Tick()
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
