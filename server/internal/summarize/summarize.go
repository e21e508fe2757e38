package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docrat/docrat/server/internal/config"
	"github.com/docrat/docrat/server/internal/youtube"
)

const (
	systemPrompt = "You are an assistant that summarizes public meeting content."
	defaultModel = openai.GPT3Dot5Turbo
	maxTokens    = 150
	temperature  = 0.3

	// maxDescription bounds the description sent in the prompt, in runes.
	maxDescription = 2000
)

// Summarizer asks a chat completions model for meeting summaries. It
// implements youtube.Summarizer.
type Summarizer struct {
	model  string
	key    string
	client *openai.Client
}

// New builds a Summarizer from cfg. BaseURL is the API host without the /v1
// suffix. An empty key makes every call return the canned summary.
func New(cfg config.SummarizerConfig) *Summarizer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	key := cfg.Key()
	oc := openai.DefaultConfig(key)
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		oc.BaseURL = base + "/v1"
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	return &Summarizer{
		model:  model,
		key:    key,
		client: openai.NewClientWithConfig(oc),
	}
}

// Enabled reports whether a key is configured.
func (s *Summarizer) Enabled() bool { return s.key != "" }

// Summarize returns a 3-4 sentence summary of v. API failures are logged and
// answered with the canned summary, so the error is always nil.
func (s *Summarizer) Summarize(ctx context.Context, v youtube.Video) (string, error) {
	if s.key == "" {
		return Canned(v), nil
	}
	out, err := s.complete(ctx, prompt(v))
	if err != nil {
		slog.Warn("summarize: completion failed, using canned summary", "video_id", v.ID, "err", err)
		return Canned(v), nil
	}
	return out, nil
}

func (s *Summarizer) complete(ctx context.Context, userPrompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("api returned HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("api returned no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("api returned an empty summary")
	}
	return out, nil
}

func prompt(v youtube.Video) string {
	desc := v.Description
	if utf8.RuneCountInString(desc) > maxDescription {
		desc = string([]rune(desc)[:maxDescription])
	}
	return fmt.Sprintf(`Summarize the following YouTube video which appears to be a public meeting or government discussion:

Title: %s
Channel: %s
Description: %s

Please provide a concise 3-4 sentence summary of what this meeting is about, key points discussed,
and any decisions made (if apparent from the information).`, v.Title, v.ChannelTitle, desc)
}

// Canned returns a summary chosen by keywords in the title.
func Canned(v youtube.Video) string {
	title := strings.ToLower(v.Title)
	switch {
	case strings.Contains(title, "finance") || strings.Contains(title, "budget"):
		return "This meeting focuses on financial matters and budget discussions. Key points include budget allocations, financial planning, and expenditure reviews. The committee appears to be working on fiscal policies for the upcoming period."
	case strings.Contains(title, "planning") || strings.Contains(title, "development"):
		return "This meeting covers urban planning and development topics. The discussion includes zoning regulations, development proposals, and community planning initiatives. Several stakeholders presented their perspectives on future growth."
	}
	channel := v.ChannelTitle
	if channel == "" {
		channel = "a local government channel"
	}
	return fmt.Sprintf("This appears to be a public meeting from %s. The meeting likely covers topics related to community governance and public affairs. Multiple agenda items were discussed with input from various stakeholders.", channel)
}
