package insight

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docrat/docrat/pkg/types"
	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func aqRule() config.InsightRule {
	return config.InsightRule{
		Name:      "elevated-aqi",
		Kind:      "air_quality",
		Condition: "aqi > 100",
		Severity:  "warning",
		Category:  "air_quality",
		Message:   "AQI reached {value}",
		Cooldown:  10 * time.Minute,
	}
}

func newEngine(rules ...config.InsightRule) (*Engine, *time.Time) {
	e := New(config.InsightsConfig{Rules: rules})
	now := t0
	e.now = func() time.Time { return now }
	return e, &now
}

func TestEvaluate_Fires(t *testing.T) {
	e, _ := newEngine(aqRule())

	got := e.Evaluate(reading.AirQuality{AQI: 151, Status: "Unhealthy"})
	require.Len(t, got, 1)
	in := got[0]
	assert.Equal(t, "AQI reached 151", in.Text)
	assert.Equal(t, "warning", in.Severity)
	assert.Equal(t, "air_quality", in.Category)
	assert.Equal(t, "rule:elevated-aqi", in.Source)
	assert.Equal(t, t0, in.Timestamp)
	assert.NotEmpty(t, in.ID)
	assert.Equal(t, uint64(1), e.Fired())
}

func TestEvaluate_BelowThreshold(t *testing.T) {
	e, _ := newEngine(aqRule())
	assert.Empty(t, e.Evaluate(reading.AirQuality{AQI: 100}))
}

func TestEvaluate_Cooldown(t *testing.T) {
	e, now := newEngine(aqRule())

	require.Len(t, e.Evaluate(reading.AirQuality{AQI: 120}), 1)

	*now = t0.Add(5 * time.Minute)
	assert.Empty(t, e.Evaluate(reading.AirQuality{AQI: 130}), "within cooldown")

	*now = t0.Add(11 * time.Minute)
	assert.Len(t, e.Evaluate(reading.AirQuality{AQI: 130}), 1, "after cooldown")
}

func TestEvaluate_OtherKindIgnored(t *testing.T) {
	e, _ := newEngine(aqRule())
	assert.Empty(t, e.Evaluate(reading.SustainabilityScore{OverallScore: 200}))
	assert.Empty(t, e.Evaluate(reading.Insight{Text: "aqi > 100"}))
	assert.Empty(t, e.Evaluate(nil))
}

func TestEvaluate_DefaultsAndTemplate(t *testing.T) {
	e, _ := newEngine(config.InsightRule{
		Name:      "poor-score",
		Kind:      "sustainability_score",
		Condition: "state == poor",
	})
	got := e.Evaluate(reading.SustainabilityScore{OverallScore: 40, State: "poor"})
	require.Len(t, got, 1)
	assert.Equal(t, "info", got[0].Severity)
	assert.Equal(t, "poor-score: state == poor (observed poor)", got[0].Text)
}

func TestReload_KeepsCooldownForSurvivingRules(t *testing.T) {
	e, now := newEngine(aqRule())
	require.Len(t, e.Evaluate(reading.AirQuality{AQI: 150}), 1)

	lower := aqRule()
	lower.Condition = "aqi > 50"
	e.Reload(config.InsightsConfig{Rules: []config.InsightRule{lower}})

	*now = t0.Add(time.Minute)
	assert.Empty(t, e.Evaluate(reading.AirQuality{AQI: 80}), "cooldown survives reload")

	renamed := lower
	renamed.Name = "moderate-aqi"
	e.Reload(config.InsightsConfig{Rules: []config.InsightRule{renamed}})
	assert.Len(t, e.Evaluate(reading.AirQuality{AQI: 80}), 1)
}

func TestEvalCondition(t *testing.T) {
	aq := reading.AirQuality{AQI: 120, Status: "Unhealthy for Sensitive Groups", Pollutants: map[string]float64{"pm25": 40.5}}
	score := reading.SustainabilityScore{OverallScore: 55, State: "poor", Categories: map[string]int{"emissions": 45}}
	news := reading.News{}
	sensors := reading.Sensors{Sensors: []types.SensorReading{
		{ID: "S003", Type: "noise", Value: 72},
		{ID: "S009", Type: "noise", Value: 81},
	}}

	tests := []struct {
		cond      string
		r         reading.Reading
		wantFire  bool
		wantValue string
	}{
		{"aqi > 100", aq, true, "120"},
		{"aqi <= 100", aq, false, ""},
		{"pm25 >= 35", aq, true, "40.5"},
		{"status == unhealthy", aq, false, "Unhealthy for Sensitive Groups"},
		{"overall_score < 60", score, true, "55"},
		{"emissions < 50", score, true, "45"},
		{"state == POOR", score, true, "poor"},
		{"state != poor", score, false, "poor"},
		{"article_count < 1", news, true, "0"},
		{"S003 > 75", sensors, false, ""},
		{"noise > 75", sensors, true, "81"},
		{"unknown > 1", aq, false, ""},
		{"aqi > abc", aq, false, ""},
		{"aqi >", aq, false, ""},
		{"aqi ~ 5", aq, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			fires, v := evalCondition(tt.cond, tt.r)
			assert.Equal(t, tt.wantFire, fires)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestWebhook_Delivery(t *testing.T) {
	type hit struct {
		path string
		body map[string]any
	}
	hits := make(chan hit, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(raw, &m)
		hits <- hit{path: r.URL.Path, body: m}
	}))
	defer srv.Close()

	t.Setenv("TEST_SLACK", srv.URL+"/slack")
	t.Setenv("TEST_TEAMS", srv.URL+"/teams")
	t.Setenv("TEST_HTTP", srv.URL+"/http")

	e := New(config.InsightsConfig{
		Rules: []config.InsightRule{aqRule()},
		Webhooks: []config.WebhookConfig{
			{Type: "slack", URLEnv: "TEST_SLACK"},
			{Type: "teams", URLEnv: "TEST_TEAMS"},
			{Type: "http", URLEnv: "TEST_HTTP"},
			{Type: "http", URLEnv: "TEST_UNSET_WEBHOOK"},
		},
	})
	require.Len(t, e.Evaluate(reading.AirQuality{AQI: 160}), 1)

	got := map[string]map[string]any{}
	for i := 0; i < 3; i++ {
		select {
		case h := <-hits:
			got[h.path] = h.body
		case <-time.After(2 * time.Second):
			t.Fatalf("webhook %d not delivered", i)
		}
	}
	assert.Equal(t, "*[WARNING]* AQI reached 160", got["/slack"]["text"])
	assert.Equal(t, "MessageCard", got["/teams"]["@type"])
	assert.Equal(t, "F9A825", got["/teams"]["themeColor"])
	assert.Equal(t, "insight", got["/http"]["type"])
	require.Contains(t, got["/http"], "data")
	assert.Equal(t, "AQI reached 160", got["/http"]["data"].(map[string]any)["text"])
}

func TestPost_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := New(config.InsightsConfig{})
	err := e.post(context.Background(), srv.URL, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
