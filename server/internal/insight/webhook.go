package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/reading"
)

const deliveryTimeout = 10 * time.Second

// payloads maps a webhook type to the body it expects.
var payloads = map[string]func(reading.Insight) any{
	"slack": slackPayload,
	"teams": teamsPayload,
	"http":  httpPayload,
}

// deliver posts in to every webhook whose URL resolves. Failures are logged
// per target and never reach the caller.
func (e *Engine) deliver(webhooks []config.WebhookConfig, in reading.Insight) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	for _, wh := range webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}
		build, ok := payloads[wh.Type]
		if !ok {
			slog.Warn("insight: unknown webhook type, skipping", "type", wh.Type)
			continue
		}
		body, err := json.Marshal(build(in))
		if err == nil {
			err = e.post(ctx, url, body)
		}
		if err != nil {
			slog.Error("insight: webhook delivery failed", "type", wh.Type, "source", in.Source, "err", err)
			continue
		}
		slog.Debug("insight: webhook delivered", "type", wh.Type, "id", in.ID)
	}
}

func slackPayload(in reading.Insight) any {
	return map[string]string{
		"text": fmt.Sprintf("*%s* %s", severityLabel(in.Severity), in.Text),
	}
}

func teamsPayload(in reading.Insight) any {
	return map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(in.Severity),
		"summary":    in.Text,
		"title":      "DOCRAT insight: " + in.Category,
		"text":       in.Text,
	}
}

// httpPayload sends the same envelope WebSocket clients receive.
func httpPayload(in reading.Insight) any {
	return reading.Update(in)
}

func (e *Engine) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "docrat-insights")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(s string) string {
	switch s {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	}
	return "[INFO]"
}

// severityColor follows the dashboard's AQI palette.
func severityColor(s string) string {
	switch s {
	case "critical":
		return "D32F2F"
	case "warning":
		return "F9A825"
	}
	return "388E3C"
}
