package api

import (
	"log/slog"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/docrat/docrat/server/internal/reading"
)

// metrics returns GET /metrics in the Prometheus text format.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range h.families() {
		if err := enc.Encode(mf); err != nil {
			slog.Warn("api: encode metric family", "name", mf.GetName(), "err", err)
			return
		}
	}
}

// families snapshots every server counter as a metric family.
func (h *Handler) families() []*dto.MetricFamily {
	st := h.deps.Store
	out := []*dto.MetricFamily{
		gauge("docrat_snapshot_kinds", "Kinds with a stored reading.", float64(st.Count())),
		gauge("docrat_live_insights", "Live insights held for the REST API.", float64(len(st.Insights()))),
	}
	if e, ok := st.Get(reading.KindAirQuality); ok {
		if aq, ok := e.Reading.(reading.AirQuality); ok {
			out = append(out, gauge("docrat_air_quality_index", "Latest air quality index.", float64(aq.AQI)))
		}
	}
	if e, ok := st.Get(reading.KindScore); ok {
		if sc, ok := e.Reading.(reading.SustainabilityScore); ok {
			out = append(out, gauge("docrat_sustainability_score", "Latest overall sustainability score.", float64(sc.OverallScore)))
		}
	}

	if h.deps.Hub != nil {
		hs := h.deps.Hub.Stats()
		out = append(out,
			gauge("docrat_ws_connections", "Connected WebSocket clients.", float64(hs.Connected)),
			counter("docrat_ws_accepted_total", "WebSocket sessions accepted.", hs.Accepted),
			counter("docrat_ws_broadcasts_total", "Envelopes broadcast by the hub.", hs.Broadcasts),
			counter("docrat_ws_send_failures_total", "Sends that failed and deregistered a client.", hs.SendFailures),
			counter("docrat_ws_malformed_total", "Client frames that were not valid JSON.", hs.Malformed),
		)
	}
	if h.deps.Scheduler != nil {
		ss := h.deps.Scheduler.Stats()
		out = append(out,
			counter("docrat_scheduler_iterations_total", "Scheduler loop iterations.", ss.Iterations),
			counter("docrat_scheduler_broadcasts_total", "Readings broadcast by the scheduler.", ss.Broadcasts),
			counter("docrat_scheduler_skipped_total", "Readings stored without a broadcast because no client was connected.", ss.Skipped),
			counter("docrat_scheduler_fetch_errors_total", "Primary source fetch failures.", ss.FetchErrors),
			counter("docrat_scheduler_fallbacks_total", "Readings served by a fallback source.", ss.Fallbacks),
			counter("docrat_scheduler_panics_total", "Recovered scheduler iteration panics.", ss.Panics),
		)
	}
	if h.deps.Insights != nil {
		out = append(out, counter("docrat_insights_fired_total", "Insight rules fired.", h.deps.Insights.Fired()))
	}
	return out
}

// --- helpers ----------------------------------------------------------------

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}

func counter(name, help string, v uint64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(float64(v))}}},
	}
}
