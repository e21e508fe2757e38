package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/source"
	"github.com/docrat/docrat/server/internal/store"
)

// --- fakes ---

type fakeHub struct {
	mu    sync.Mutex
	conns int
	sent  []reading.Envelope
}

func (h *fakeHub) Broadcast(env reading.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, env)
}

func (h *fakeHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns
}

func (h *fakeHub) envelopes() []reading.Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]reading.Envelope(nil), h.sent...)
}

type fakeSource struct {
	kind  reading.Kind
	r     reading.Reading
	err   error
	block bool
	panic bool
}

func (f *fakeSource) Kind() reading.Kind { return f.kind }

func (f *fakeSource) Fetch(ctx context.Context) (reading.Reading, error) {
	if f.panic {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.r, f.err
}

type fakeEval struct{ out []reading.Insight }

func (e fakeEval) Evaluate(r reading.Reading) []reading.Insight {
	if r.Kind() == reading.KindInsight {
		return nil
	}
	return e.out
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func aq(v int) reading.AirQuality {
	return reading.AirQuality{AQI: v, Status: reading.AQIStatus(v), Location: "Test", Timestamp: t0}
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Mode:         config.ModeRandom,
		MinInterval:  5 * time.Millisecond,
		MaxInterval:  10 * time.Millisecond,
		FetchTimeout: time.Second,
		Weights:      map[string]float64{"air_quality": 1},
	}
}

func newTest(conns int) (*Scheduler, *store.Store, *fakeHub) {
	st := store.New()
	hub := &fakeHub{conns: conns}
	return New(testConfig(), st, hub, source.NewRand(1)), st, hub
}

// --- Refresh ---

func TestRefresh_BroadcastsPrimary(t *testing.T) {
	s, st, hub := newTest(2)
	s.Use(&fakeSource{kind: reading.KindAirQuality, r: aq(55)}, nil)

	require.NoError(t, s.Refresh(context.Background(), reading.KindAirQuality))

	sent := hub.envelopes()
	require.Len(t, sent, 1, "one broadcast reaches every client via the hub")
	assert.Equal(t, "air_quality_update", sent[0].Type)
	assert.Equal(t, aq(55), sent[0].Data)

	e, ok := st.Get(reading.KindAirQuality)
	require.True(t, ok)
	assert.Equal(t, 55, e.Reading.(reading.AirQuality).AQI)
	assert.Len(t, st.History(), 1)
	assert.Equal(t, uint64(1), s.Stats().Broadcasts)
}

func TestRefresh_FallbackOnError(t *testing.T) {
	s, st, hub := newTest(1)
	s.Use(
		&fakeSource{kind: reading.KindAirQuality, err: errors.New("upstream 500")},
		&fakeSource{kind: reading.KindAirQuality, r: aq(99)},
	)

	require.NoError(t, s.Refresh(context.Background(), reading.KindAirQuality))

	sent := hub.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, 99, sent[0].Data.(reading.AirQuality).AQI)
	e, _ := st.Get(reading.KindAirQuality)
	assert.Equal(t, 99, e.Reading.(reading.AirQuality).AQI)

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.FetchErrors)
	assert.Equal(t, uint64(1), stats.Fallbacks)
}

func TestRefresh_NoAPIKeyUsesFallback(t *testing.T) {
	s, _, hub := newTest(1)
	s.Use(
		&fakeSource{kind: reading.KindNews, err: source.ErrNoAPIKey},
		source.NewSynth(reading.KindNews, source.NewRand(2)),
	)

	require.NoError(t, s.Refresh(context.Background(), reading.KindNews))
	sent := hub.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, "news_update", sent[0].Type)
}

func TestRefresh_FetchTimeoutUsesFallback(t *testing.T) {
	s, _, hub := newTest(1)
	cfg := testConfig()
	cfg.FetchTimeout = 20 * time.Millisecond
	s.Reconfigure(cfg)
	s.Use(
		&fakeSource{kind: reading.KindAirQuality, block: true},
		&fakeSource{kind: reading.KindAirQuality, r: aq(12)},
	)

	start := time.Now()
	require.NoError(t, s.Refresh(context.Background(), reading.KindAirQuality))
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, hub.envelopes(), 1)
}

func TestRefresh_NoFallbackReturnsError(t *testing.T) {
	s, st, hub := newTest(1)
	s.Use(&fakeSource{kind: reading.KindAirQuality, err: errors.New("down")}, nil)

	err := s.Refresh(context.Background(), reading.KindAirQuality)
	require.Error(t, err)
	assert.Empty(t, hub.envelopes())
	assert.Equal(t, 0, st.Count())
}

func TestRefresh_NoClientsUpdatesSnapshotOnly(t *testing.T) {
	s, st, hub := newTest(0)
	s.Use(&fakeSource{kind: reading.KindAirQuality, r: aq(70)}, nil)

	require.NoError(t, s.Refresh(context.Background(), reading.KindAirQuality))

	assert.Empty(t, hub.envelopes())
	_, ok := st.Get(reading.KindAirQuality)
	assert.True(t, ok, "snapshot must still be updated")
	assert.Equal(t, uint64(1), s.Stats().Skipped)
}

func TestRefresh_CancelledNothingPublished(t *testing.T) {
	s, st, hub := newTest(1)
	s.Use(
		&fakeSource{kind: reading.KindAirQuality, block: true},
		&fakeSource{kind: reading.KindAirQuality, r: aq(1)},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := s.Refresh(ctx, reading.KindAirQuality)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, hub.envelopes())
	assert.Equal(t, 0, st.Count())
}

func TestRefresh_UnknownKind(t *testing.T) {
	s, _, _ := newTest(1)
	assert.Error(t, s.Refresh(context.Background(), reading.KindSensors))
}

func TestRefresh_PublishesEvaluatedInsights(t *testing.T) {
	s, st, hub := newTest(1)
	s.Use(&fakeSource{kind: reading.KindAirQuality, r: aq(150)}, nil)
	s.SetEvaluator(fakeEval{out: []reading.Insight{{ID: "i1", Text: "AQI high", Severity: "warning", Timestamp: t0}}})

	require.NoError(t, s.Refresh(context.Background(), reading.KindAirQuality))

	sent := hub.envelopes()
	require.Len(t, sent, 2)
	assert.Equal(t, "air_quality_update", sent[0].Type)
	assert.Equal(t, "insight", sent[1].Type)
	require.Len(t, st.Insights(), 1)
	assert.Equal(t, "i1", st.Insights()[0].ID)
}

// --- iterate ---

func TestRefresh_PanickingPrimaryUsesFallback(t *testing.T) {
	s, st, hub := newTest(1)
	s.Use(
		&fakeSource{kind: reading.KindAirQuality, panic: true},
		&fakeSource{kind: reading.KindAirQuality, r: aq(42)},
	)

	require.NoError(t, s.Refresh(context.Background(), reading.KindAirQuality))

	sent := hub.envelopes()
	require.Len(t, sent, 1)
	assert.Equal(t, aq(42), sent[0].Data)
	e, ok := st.Get(reading.KindAirQuality)
	require.True(t, ok)
	assert.Equal(t, 42, e.Reading.(reading.AirQuality).AQI)

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Panics)
	assert.Equal(t, uint64(1), stats.FetchErrors)
	assert.Equal(t, uint64(1), stats.Fallbacks)
}

func TestIterate_PanickingSourceWithoutFallback(t *testing.T) {
	s, _, hub := newTest(1)
	s.Use(&fakeSource{kind: reading.KindAirQuality, panic: true}, nil)

	assert.NotPanics(t, func() { s.iterate(context.Background(), reading.KindAirQuality) })
	assert.Equal(t, uint64(1), s.Stats().Panics)
	assert.Equal(t, uint64(1), s.Stats().Iterations)
	assert.Empty(t, hub.envelopes())
}

type panicEval struct{}

func (panicEval) Evaluate(reading.Reading) []reading.Insight { panic("rule bug") }

func TestIterate_RecoversEvaluatorPanic(t *testing.T) {
	s, st, _ := newTest(1)
	s.Use(&fakeSource{kind: reading.KindAirQuality, r: aq(30)}, nil)
	s.SetEvaluator(panicEval{})

	assert.NotPanics(t, func() { s.iterate(context.Background(), reading.KindAirQuality) })
	assert.Equal(t, uint64(1), s.Stats().Iterations)
	_, ok := st.Get(reading.KindAirQuality)
	assert.True(t, ok, "reading is stored before evaluation")
}

// --- pick / intervals ---

func TestPick_SingleWeight(t *testing.T) {
	s, _, _ := newTest(1)
	for _, k := range reading.Kinds {
		s.Use(source.NewSynth(k, source.NewRand(1)), nil)
	}
	for i := 0; i < 100; i++ {
		k, ok := s.pick()
		require.True(t, ok)
		require.Equal(t, reading.KindAirQuality, k)
	}
}

func TestPick_Distribution(t *testing.T) {
	s, _, _ := newTest(1)
	cfg := testConfig()
	cfg.Weights = map[string]float64{"air_quality": 3, "news": 1}
	s.Reconfigure(cfg)
	s.Use(source.NewSynth(reading.KindAirQuality, nil), nil)
	s.Use(source.NewSynth(reading.KindNews, nil), nil)
	s.Use(source.NewSynth(reading.KindScore, nil), nil)

	counts := map[reading.Kind]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		k, ok := s.pick()
		require.True(t, ok)
		counts[k]++
	}
	assert.Zero(t, counts[reading.KindScore], "unweighted kind must never be picked")
	assert.InDelta(t, 0.75, float64(counts[reading.KindAirQuality])/n, 0.03)
}

func TestPick_NoPositiveWeight(t *testing.T) {
	s, _, _ := newTest(1)
	s.Use(source.NewSynth(reading.KindNews, nil), nil)
	_, ok := s.pick()
	assert.False(t, ok)
}

func TestNextInterval_Bounds(t *testing.T) {
	s, _, _ := newTest(1)
	cfg := testConfig()
	cfg.MinInterval = 5 * time.Second
	cfg.MaxInterval = 60 * time.Second
	s.Reconfigure(cfg)
	for i := 0; i < 1000; i++ {
		d := s.nextInterval()
		require.GreaterOrEqual(t, d, 5*time.Second)
		require.LessOrEqual(t, d, 60*time.Second)
	}

	cfg.MaxInterval = cfg.MinInterval
	s.Reconfigure(cfg)
	assert.Equal(t, 5*time.Second, s.nextInterval())
}

func TestIntervalFor(t *testing.T) {
	s, _, _ := newTest(1)
	cfg := testConfig()
	cfg.Intervals = map[string]time.Duration{"news": 5 * time.Minute}
	s.Reconfigure(cfg)
	assert.Equal(t, 5*time.Minute, s.intervalFor(reading.KindNews))
	assert.Equal(t, cfg.MaxInterval, s.intervalFor(reading.KindScore))
}

// --- freshness ---

func TestMaxAge(t *testing.T) {
	s, _, _ := newTest(1)
	cfg := testConfig()
	cfg.MaxInterval = time.Minute
	cfg.FetchTimeout = 5 * time.Second
	cfg.Weights = map[string]float64{"air_quality": 0.75, "news": 0.25}
	s.Reconfigure(cfg)
	s.Use(&fakeSource{kind: reading.KindAirQuality}, nil)
	s.Use(&fakeSource{kind: reading.KindNews}, nil)
	s.Use(&fakeSource{kind: reading.KindScore}, nil)

	// total weight 1: four expected gaps of 1/weight iterations.
	assert.Equal(t, 4*time.Minute*4/3+5*time.Second, s.MaxAge(reading.KindAirQuality))
	assert.Equal(t, 16*time.Minute+5*time.Second, s.MaxAge(reading.KindNews))
	assert.Zero(t, s.MaxAge(reading.KindScore), "zero weight is never refreshed")
	assert.Zero(t, s.MaxAge(reading.KindSensors), "unregistered")

	perKind := New(config.SchedulerConfig{
		Mode:         config.ModePerKind,
		MaxInterval:  time.Minute,
		FetchTimeout: 5 * time.Second,
		Intervals:    map[string]time.Duration{"news": 5 * time.Minute},
	}, store.New(), &fakeHub{}, source.NewRand(1))
	perKind.Use(&fakeSource{kind: reading.KindNews}, nil)
	perKind.Use(&fakeSource{kind: reading.KindScore}, nil)
	assert.Equal(t, 10*time.Minute+5*time.Second, perKind.MaxAge(reading.KindNews))
	assert.Equal(t, 2*time.Minute+5*time.Second, perKind.MaxAge(reading.KindScore))
}

// TestMaxAge_DefaultCadenceStaysFresh replays a day of the default random
// schedule on a simulated clock and measures how long any kind spends past
// its MaxAge.
func TestMaxAge_DefaultCadenceStaysFresh(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	s := New(cfg.Server.Scheduler, store.New(), &fakeHub{}, source.NewRand(7))
	for _, k := range reading.Kinds {
		s.Use(&fakeSource{kind: k}, nil)
	}

	const day = 24 * time.Hour
	last := make(map[reading.Kind]time.Duration) // primed at zero
	var clock, stale time.Duration
	for clock < day {
		step := s.nextInterval()
		for _, k := range reading.Kinds {
			limit := s.MaxAge(k)
			require.Positive(t, limit, "kind %s", k)
			if end := clock + step - last[k]; end > limit {
				stale += end - max(limit, clock-last[k])
			}
		}
		clock += step
		k, ok := s.pick()
		require.True(t, ok)
		last[k] = clock
	}

	frac := float64(stale) / float64(clock)
	assert.Less(t, frac, 0.01, "stale %v of %v", stale, clock)
}

func TestMaxAge_PerKindDefaultIntervals(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.Scheduler.Mode = config.ModePerKind

	s := New(cfg.Server.Scheduler, store.New(), &fakeHub{}, source.NewRand(7))
	for _, k := range reading.Kinds {
		s.Use(&fakeSource{kind: k}, nil)
		assert.Greater(t, s.MaxAge(k), s.intervalFor(k), "kind %s", k)
	}
}

// --- Prime / Run ---

func TestPrime_FillsSnapshot(t *testing.T) {
	s, st, _ := newTest(0)
	rng := source.NewRand(5)
	for _, k := range reading.Kinds {
		s.Use(source.NewSynth(k, rng), nil)
	}
	s.Prime(context.Background())
	assert.Equal(t, len(reading.Kinds), st.Count())
}

func TestRun_RandomMode(t *testing.T) {
	s, _, hub := newTest(1)
	s.Use(source.NewSynth(reading.KindAirQuality, source.NewRand(3)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(hub.envelopes()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	for _, env := range hub.envelopes() {
		assert.Equal(t, "air_quality_update", env.Type)
	}
}

func TestRun_PerKindMode(t *testing.T) {
	st := store.New()
	hub := &fakeHub{conns: 1}
	cfg := testConfig()
	cfg.Mode = config.ModePerKind
	cfg.Intervals = map[string]time.Duration{"air_quality": 5 * time.Millisecond, "news": 5 * time.Millisecond}
	s := New(cfg, st, hub, source.NewRand(1))
	rng := source.NewRand(9)
	s.Use(source.NewSynth(reading.KindAirQuality, rng), nil)
	s.Use(source.NewSynth(reading.KindNews, rng), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		seen := map[string]bool{}
		for _, env := range hub.envelopes() {
			seen[env.Type] = true
		}
		return seen["air_quality_update"] && seen["news_update"]
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
