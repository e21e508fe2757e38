package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
)

// AirQuality reads the World Air Quality Index feed API.
type AirQuality struct {
	baseURL string
	city    string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewAirQuality builds the WAQI source. An empty token makes every Fetch
// return ErrNoAPIKey.
func NewAirQuality(cfg config.AirQualityConfig) *AirQuality {
	city := cfg.City
	if city == "" {
		city = "here"
	}
	return &AirQuality{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		city:    city,
		token:   cfg.Key(),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		limiter: limiterPerMinute(cfg.RatePerMinute),
		now:     time.Now,
	}
}

func (s *AirQuality) Kind() reading.Kind { return reading.KindAirQuality }

// waqiResponse is the subset of the /feed response we use.
type waqiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type waqiData struct {
	AQI  json.Number `json:"aqi"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	IAQI map[string]struct {
		V float64 `json:"v"`
	} `json:"iaqi"`
}

// Fetch returns the current AQI for the configured station.
func (s *AirQuality) Fetch(ctx context.Context) (reading.Reading, error) {
	if s.token == "" {
		return nil, ErrNoAPIKey
	}

	u := fmt.Sprintf("%s/feed/%s/?token=%s", s.baseURL, url.PathEscape(s.city), url.QueryEscape(s.token))
	var resp waqiResponse
	if err := getJSON(ctx, s.client, s.limiter, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("air quality: %w", err)
	}
	if resp.Status != "ok" {
		// On error WAQI returns the message as a bare string in data.
		var msg string
		_ = json.Unmarshal(resp.Data, &msg)
		return nil, fmt.Errorf("air quality: api status %q: %s", resp.Status, msg)
	}

	var d waqiData
	if err := json.Unmarshal(resp.Data, &d); err != nil {
		return nil, fmt.Errorf("air quality: decode data: %w", err)
	}
	aqi, err := d.AQI.Int64()
	if err != nil {
		return nil, fmt.Errorf("air quality: aqi %q is not a number", d.AQI)
	}

	pollutants := make(map[string]float64, len(d.IAQI))
	for name, v := range d.IAQI {
		pollutants[name] = v.V
	}
	location := d.City.Name
	if location == "" {
		location = s.city
	}

	return reading.AirQuality{
		AQI:        int(aqi),
		Status:     reading.AQIStatus(int(aqi)),
		Location:   location,
		Pollutants: pollutants,
		Timestamp:  s.now().UTC(),
	}, nil
}
