package insight

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
)

const (
	defaultCooldown  = config.DefaultCooldown
	defaultSeverity  = "info"
	valuePlaceholder = "{value}"
)

// Engine evaluates insight rules against fresh readings and delivers webhook
// notifications for every insight it produces.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	rules    []config.InsightRule
	webhooks []config.WebhookConfig
	lastFire map[string]time.Time // last fire time per rule name (for cooldown)

	client *http.Client
	now    func() time.Time // injectable for deterministic tests
	fired  atomic.Uint64
}

// New creates an Engine from the insight configuration.
// An Engine with no rules is valid; Evaluate becomes a no-op.
func New(cfg config.InsightsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Reload swaps in new rules and webhooks. Cooldown state is kept for rules
// whose name survives the reload.
func (e *Engine) Reload(cfg config.InsightsConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = cfg.Rules
	e.webhooks = cfg.Webhooks

	keep := make(map[string]time.Time, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if t, ok := e.lastFire[r.Name]; ok {
			keep[r.Name] = t
		}
	}
	e.lastFire = keep
	slog.Info("insight: rules reloaded", "rules", len(cfg.Rules), "webhooks", len(cfg.Webhooks))
}

// Fired returns the number of insights produced since start.
func (e *Engine) Fired() uint64 { return e.fired.Load() }

// Evaluate tests every rule for r's kind and returns the insights that fired.
// A rule that fired within its cooldown is skipped. Insights never trigger
// further rules.
func (e *Engine) Evaluate(r reading.Reading) []reading.Insight {
	if r == nil || r.Kind() == reading.KindInsight {
		return nil
	}

	now := e.now().UTC()
	var out []reading.Insight

	e.mu.Lock()
	webhooks := e.webhooks
	for _, rule := range e.rules {
		if rule.Kind != string(r.Kind()) {
			continue
		}
		fires, value := evalCondition(rule.Condition, r)
		if !fires {
			continue
		}

		cooldown := rule.Cooldown
		if cooldown <= 0 {
			cooldown = defaultCooldown
		}
		if last, ok := e.lastFire[rule.Name]; ok && now.Sub(last) < cooldown {
			continue
		}
		e.lastFire[rule.Name] = now

		sev := rule.Severity
		if sev == "" {
			sev = defaultSeverity
		}
		out = append(out, reading.Insight{
			ID:        uuid.NewString(),
			Text:      renderMessage(rule, value),
			Category:  rule.Category,
			Severity:  sev,
			Source:    "rule:" + rule.Name,
			Timestamp: now,
		})
	}
	e.mu.Unlock()

	for _, in := range out {
		e.fired.Add(1)
		slog.Info("insight fired",
			"source", in.Source,
			"severity", in.Severity,
			"category", in.Category,
		)
		if len(webhooks) > 0 {
			go e.deliver(webhooks, in)
		}
	}
	return out
}

// renderMessage fills the rule message template. An empty template falls back
// to the rule name and condition.
func renderMessage(rule config.InsightRule, value string) string {
	msg := rule.Message
	if msg == "" {
		msg = rule.Name + ": " + rule.Condition + " (observed " + valuePlaceholder + ")"
	}
	return strings.ReplaceAll(msg, valuePlaceholder, value)
}
