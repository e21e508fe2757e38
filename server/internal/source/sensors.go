package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/docrat/docrat/pkg/types"
	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
)

// Sensors scrapes the sensor agent's Prometheus text endpoint.
type Sensors struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
}

// NewSensors builds the agent scrape source. An empty endpoint makes every
// Fetch return ErrNotConfigured.
func NewSensors(cfg config.SensorsConfig) *Sensors {
	return &Sensors{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: defaultHTTPTimeout},
		now:      time.Now,
	}
}

func (s *Sensors) Kind() reading.Kind { return reading.KindSensors }

// Fetch scrapes the agent and returns one SensorReading per exposed sample,
// ordered by sensor ID.
func (s *Sensors) Fetch(ctx context.Context) (reading.Reading, error) {
	if s.endpoint == "" {
		return nil, ErrNotConfigured
	}

	mfs, err := fetchMetrics(ctx, s.client, s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("sensors: scrape %s: %w", s.endpoint, err)
	}
	sensors := SensorReadings(mfs[types.SensorValueMetric])
	if len(sensors) == 0 {
		return nil, fmt.Errorf("sensors: no %s samples at %s", types.SensorValueMetric, s.endpoint)
	}
	return reading.Sensors{Sensors: sensors, Timestamp: s.now().UTC()}, nil
}

// SensorReadings converts a sensor gauge family into readings sorted by ID.
// Samples without an id label are skipped.
func SensorReadings(mf *dto.MetricFamily) []types.SensorReading {
	if mf == nil {
		return nil
	}
	out := make([]types.SensorReading, 0, len(mf.GetMetric()))
	for _, m := range mf.GetMetric() {
		labels := make(map[string]string, len(m.GetLabel()))
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels[types.LabelID] == "" {
			continue
		}
		out = append(out, types.SensorReading{
			ID:       labels[types.LabelID],
			Type:     labels[types.LabelType],
			Location: labels[types.LabelLocation],
			Unit:     labels[types.LabelUnit],
			Value:    sampleValue(m),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// fetchMetrics performs an HTTP GET to url and returns parsed metric families.
func fetchMetrics(ctx context.Context, client *http.Client, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetrics(resp.Body)
}

// parseMetrics decodes a Prometheus text exposition from r. A partial result
// with a trailing parse warning still counts as success.
func parseMetrics(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

func sampleValue(m *dto.Metric) float64 {
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Untyped != nil:
		return m.Untyped.GetValue()
	}
	return 0
}
