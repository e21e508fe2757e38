package sensors

import (
	"log/slog"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/docrat/docrat/pkg/types"
)

const (
	ticksMetric    = "docrat_agent_ticks_total"
	lastTickMetric = "docrat_agent_last_tick_timestamp_seconds"
)

// Families returns the current sensor values and tick counters as metric
// families.
func (s *Simulator) Families() []*dto.MetricFamily {
	readings := s.Readings()
	values := &dto.MetricFamily{
		Name:   proto.String(types.SensorValueMetric),
		Help:   proto.String("Current value of a simulated field sensor."),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: make([]*dto.Metric, 0, len(readings)),
	}
	for _, r := range readings {
		values.Metric = append(values.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				label(types.LabelID, r.ID),
				label(types.LabelLocation, r.Location),
				label(types.LabelType, r.Type),
				label(types.LabelUnit, r.Unit),
			},
			Gauge: &dto.Gauge{Value: proto.Float64(r.Value)},
		})
	}

	ticks, last := s.Ticks()
	var lastSec float64
	if !last.IsZero() {
		lastSec = float64(last.UnixNano()) / 1e9
	}
	out := []*dto.MetricFamily{
		{
			Name:   proto.String(ticksMetric),
			Help:   proto.String("Random-walk steps taken since start."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(float64(ticks))}}},
		},
		{
			Name:   proto.String(lastTickMetric),
			Help:   proto.String("Unix time of the last random-walk step."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(lastSec)}}},
		},
	}
	// The text encoder rejects families without samples.
	if len(values.Metric) > 0 {
		out = append([]*dto.MetricFamily{values}, out...)
	}
	return out
}

// ServeHTTP writes Families in the Prometheus text format.
func (s *Simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range s.Families() {
		if err := enc.Encode(mf); err != nil {
			slog.Warn("sensors: encode metric family", "name", mf.GetName(), "err", err)
			return
		}
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}
