package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
	"github.com/docrat/docrat/server/internal/source"
	"github.com/docrat/docrat/server/internal/store"
)

const (
	staleFactor        = 4
	perKindMissedTicks = 2
)

// Broadcaster fans an envelope out to every connected client.
// *ws.Hub satisfies it.
type Broadcaster interface {
	Broadcast(env reading.Envelope)
	Count() int
}

// Evaluator derives insights from a fresh reading.
// *insight.Engine satisfies it.
type Evaluator interface {
	Evaluate(r reading.Reading) []reading.Insight
}

// Stats is a point-in-time copy of the scheduler counters.
type Stats struct {
	Iterations  uint64 `json:"iterations"`
	Broadcasts  uint64 `json:"broadcasts"`
	Skipped     uint64 `json:"skipped_no_clients"`
	FetchErrors uint64 `json:"fetch_errors"`
	Fallbacks   uint64 `json:"fallbacks"`
	Panics      uint64 `json:"panics"`
}

type pair struct {
	primary  source.Source
	fallback source.Source
}

// Scheduler owns the refresh loop. Use and SetEvaluator must be called before
// Run; Refresh, Reconfigure and Stats are safe for concurrent use.
type Scheduler struct {
	st   *store.Store
	hub  Broadcaster
	rng  *source.Rand
	mode string

	mu      sync.RWMutex
	cfg     config.SchedulerConfig
	sources map[reading.Kind]pair
	eval    Evaluator

	iterations  atomic.Uint64
	broadcasts  atomic.Uint64
	skipped     atomic.Uint64
	fetchErrors atomic.Uint64
	fallbacks   atomic.Uint64
	panics      atomic.Uint64
}

// New returns a Scheduler writing to st and broadcasting through hub.
func New(cfg config.SchedulerConfig, st *store.Store, hub Broadcaster, rng *source.Rand) *Scheduler {
	mode := cfg.Mode
	if mode == "" {
		mode = config.ModeRandom
	}
	return &Scheduler{
		st:      st,
		hub:     hub,
		rng:     rng,
		mode:    mode,
		cfg:     cfg,
		sources: make(map[reading.Kind]pair),
	}
}

// Use registers the sources for primary.Kind(). fallback may be nil, in which
// case a failed fetch skips the refresh.
func (s *Scheduler) Use(primary, fallback source.Source) {
	s.mu.Lock()
	s.sources[primary.Kind()] = pair{primary: primary, fallback: fallback}
	s.mu.Unlock()
}

// SetEvaluator installs the insight evaluator. nil disables evaluation.
func (s *Scheduler) SetEvaluator(e Evaluator) {
	s.mu.Lock()
	s.eval = e
	s.mu.Unlock()
}

// Reconfigure applies new weights, intervals and timeouts. A changed mode is
// logged and ignored until restart.
func (s *Scheduler) Reconfigure(cfg config.SchedulerConfig) {
	if cfg.Mode != "" && cfg.Mode != s.mode {
		slog.Warn("scheduler: mode change requires restart", "running", s.mode, "configured", cfg.Mode)
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	slog.Info("scheduler: reconfigured",
		"min_interval", cfg.MinInterval,
		"max_interval", cfg.MaxInterval,
		"fetch_timeout", cfg.FetchTimeout,
	)
}

// Stats returns the current counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Iterations:  s.iterations.Load(),
		Broadcasts:  s.broadcasts.Load(),
		Skipped:     s.skipped.Load(),
		FetchErrors: s.fetchErrors.Load(),
		Fallbacks:   s.fallbacks.Load(),
		Panics:      s.panics.Load(),
	}
}

// Prime refreshes every registered kind once so the snapshot is complete
// before the first client connects.
func (s *Scheduler) Prime(ctx context.Context) {
	for _, k := range s.kinds() {
		if err := s.Refresh(ctx, k); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("scheduler: prime failed", "kind", k, "err", err)
		}
	}
}

// Refresh fetches one reading of kind, stores it and broadcasts it.
//
// The primary source runs under the configured fetch timeout. Any error,
// including a timeout, switches to the fallback. If ctx is cancelled while
// fetching nothing is stored or broadcast and ctx.Err() is returned.
func (s *Scheduler) Refresh(ctx context.Context, kind reading.Kind) error {
	s.mu.RLock()
	p, ok := s.sources[kind]
	timeout := s.cfg.FetchTimeout
	eval := s.eval
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("scheduler: no source registered for %q", kind)
	}

	r, err := s.fetch(ctx, p.primary, timeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.fetchErrors.Add(1)
		logFetchError(kind, err)
		if p.fallback == nil {
			return fmt.Errorf("scheduler: fetch %s: %w", kind, err)
		}
		r, err = s.fetch(ctx, p.fallback, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("scheduler: fallback %s: %w", kind, err)
		}
		s.fallbacks.Add(1)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.publish(r)
	if eval == nil {
		return nil
	}
	for _, in := range eval.Evaluate(r) {
		s.publish(in)
	}
	return nil
}

// MaxAge is how long kind may go without a refresh before it counts as stale
// under the current cadence. Zero means the scheduler never refreshes kind on
// its own.
//
// In random mode a kind is picked with probability weight/total per
// iteration, so its expected gap is total/weight iterations of at most
// max_interval each; staleFactor such gaps are allowed. In per_kind mode two
// missed ticks are allowed.
func (s *Scheduler) MaxAge(kind reading.Kind) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sources[kind]; !ok {
		return 0
	}
	slack := s.cfg.FetchTimeout
	if s.mode == config.ModePerKind {
		return perKindMissedTicks*s.intervalLocked(kind) + slack
	}

	var total float64
	for k := range s.sources {
		if w := s.cfg.Weights[string(k)]; w > 0 {
			total += w
		}
	}
	w := s.cfg.Weights[string(kind)]
	if w <= 0 || total <= 0 {
		return 0
	}
	hi := s.cfg.MaxInterval
	if hi <= 0 {
		hi = config.DefaultMaxInterval
	}
	return time.Duration(staleFactor*float64(hi)*total/w) + slack
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("scheduler: started", "mode", s.mode, "kinds", len(s.kinds()))
	if s.mode == config.ModePerKind {
		s.runPerKind(ctx)
	} else {
		s.runRandom(ctx)
	}
	slog.Info("scheduler: stopped")
}

// --- loops ---

func (s *Scheduler) runRandom(ctx context.Context) {
	for {
		if !sleepCtx(ctx, s.nextInterval()) {
			return
		}
		k, ok := s.pick()
		if !ok {
			slog.Debug("scheduler: no kind has a positive weight")
			continue
		}
		s.iterate(ctx, k)
	}
}

func (s *Scheduler) runPerKind(ctx context.Context) {
	var wg sync.WaitGroup
	for _, k := range s.kinds() {
		wg.Add(1)
		go func(k reading.Kind) {
			defer wg.Done()
			for {
				if !sleepCtx(ctx, s.intervalFor(k)) {
					return
				}
				s.iterate(ctx, k)
			}
		}(k)
	}
	wg.Wait()
}

// iterate runs one refresh. Source panics become fetch errors inside Refresh;
// anything else that panics, such as an evaluator, is logged and the loop
// continues.
func (s *Scheduler) iterate(ctx context.Context, k reading.Kind) {
	defer func() {
		if rec := recover(); rec != nil {
			s.panics.Add(1)
			slog.Error("scheduler: iteration panicked", "kind", k, "panic", rec)
		}
	}()
	s.iterations.Add(1)
	if err := s.Refresh(ctx, k); err != nil && ctx.Err() == nil {
		slog.Warn("scheduler: refresh failed", "kind", k, "err", err)
	}
}

// --- helpers ---

func (s *Scheduler) publish(r reading.Reading) {
	s.st.Put(r)
	if s.hub.Count() == 0 {
		s.skipped.Add(1)
		return
	}
	s.hub.Broadcast(reading.Update(r))
	s.broadcasts.Add(1)
	slog.Debug("scheduler: broadcast", "type", r.Kind().UpdateType())
}

// kinds returns the registered kinds in reading.Kinds order.
func (s *Scheduler) kinds() []reading.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]reading.Kind, 0, len(s.sources))
	for _, k := range reading.Kinds {
		if _, ok := s.sources[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// pick chooses a registered kind with probability proportional to its weight.
func (s *Scheduler) pick() (reading.Kind, bool) {
	kinds := s.kinds()
	s.mu.RLock()
	weights := make([]float64, len(kinds))
	var total float64
	for i, k := range kinds {
		if w := s.cfg.Weights[string(k)]; w > 0 {
			weights[i] = w
			total += w
		}
	}
	s.mu.RUnlock()
	if total <= 0 {
		return "", false
	}

	x := s.rng.Float64() * total
	for i, w := range weights {
		if w == 0 {
			continue
		}
		if x < w {
			return kinds[i], true
		}
		x -= w
	}
	// Float rounding can leave x at the very top of the range.
	for i := len(kinds) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return kinds[i], true
		}
	}
	return "", false
}

// nextInterval returns a uniformly jittered duration in [min, max].
func (s *Scheduler) nextInterval() time.Duration {
	s.mu.RLock()
	lo, hi := s.cfg.MinInterval, s.cfg.MaxInterval
	s.mu.RUnlock()
	if lo <= 0 {
		lo = config.DefaultMinInterval
	}
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.rng.Float64()*float64(hi-lo))
}

func (s *Scheduler) intervalFor(k reading.Kind) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intervalLocked(k)
}

// intervalLocked must be called with s.mu held.
func (s *Scheduler) intervalLocked(k reading.Kind) time.Duration {
	if d, ok := s.cfg.Intervals[string(k)]; ok && d > 0 {
		return d
	}
	if s.cfg.MaxInterval > 0 {
		return s.cfg.MaxInterval
	}
	return config.DefaultMaxInterval
}

// fetch runs src under timeout. A panicking source is reported as an error
// so the caller can still use the fallback.
func (s *Scheduler) fetch(ctx context.Context, src source.Source, timeout time.Duration) (r reading.Reading, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.panics.Add(1)
			r, err = nil, fmt.Errorf("source %s panicked: %v", src.Kind(), rec)
		}
	}()
	r, err = src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("source %s returned no reading", src.Kind())
	}
	return r, nil
}

// logFetchError logs an unconfigured source quietly; it is the normal state
// of a deployment without API keys.
func logFetchError(k reading.Kind, err error) {
	if errors.Is(err, source.ErrNoAPIKey) || errors.Is(err, source.ErrNotConfigured) {
		slog.Debug("scheduler: source unavailable, using fallback", "kind", k, "err", err)
		return
	}
	slog.Warn("scheduler: fetch failed, using fallback", "kind", k, "err", err)
}

// sleepCtx waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
