// Package llm wraps an OpenAI-compatible chat completion service into a
// narrow ticket-analysis adapter. Every failure path returns a nil insight
// so callers always have a deterministic fallback.
package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Limits of the adapter contract.
const (
	maxInputRunes          = 2000
	maxSummaryRunes        = 250
	maxRecommendationRunes = 300
)

const systemPrompt = `Ты — модуль анализа обращений клиентов.

Верни СТРОГО JSON с двумя строковыми полями:

{
  "summary": "краткое содержание обращения (до 250 символов)",
  "recommendation": "рекомендуемое действие для оператора (до 300 символов)"
}

Никакого текста вне JSON.`

// Insight is the successfully parsed model output.
type Insight struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// Config configures the adapter.
type Config struct {
	APIKey      string
	BaseURL     string // optional, OpenAI-compatible endpoint
	Model       string
	MaxTokens   int           // default: 600
	Temperature float32       // default: 0.2
	Timeout     time.Duration // per-call deadline, default: 15s
	RPS         float64       // optional request-rate cap, 0 disables
}

// Adapter is a stateless client over the chat completion API. Safe to call
// from many workers concurrently.
type Adapter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
}

// New creates an adapter. An empty API key returns nil: the adapter is
// disabled and enrichment falls back to the deterministic path.
func New(cfg Config) *Adapter {
	if cfg.APIKey == "" {
		slog.Info("llm: no API key configured, adapter disabled")
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient()

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	return &Adapter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		limiter:     limiter,
	}
}

// Analyze asks the model for a summary and recommendation of the ticket
// body. Returns nil on timeout, transport failure or unparseable output;
// the error carries the cause for logging only.
func (a *Adapter) Analyze(ctx context.Context, text string) (*Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: truncateRunes(text, maxInputRunes)},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Warn("llm: analyze request failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	if len(resp.Choices) == 0 {
		slog.Warn("llm: empty response")
		return nil, errEmptyResponse
	}

	insight := ParseInsight(resp.Choices[0].Message.Content)
	if insight == nil {
		slog.Warn("llm: unparseable model output", "content_length", len(resp.Choices[0].Message.Content))
		return nil, errMalformedOutput
	}

	slog.Debug("llm: analyze ok",
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return insight, nil
}

// ParseInsight applies the tolerance transformations (fence stripping,
// brace extraction, bounded repair) and decodes the insight. Returns nil
// unless both fields are non-empty.
func ParseInsight(content string) *Insight {
	payload := ExtractJSONBlock(content)
	if payload == "" {
		return nil
	}

	var insight Insight
	if err := json.Unmarshal([]byte(payload), &insight); err != nil {
		repaired := RepairJSON(payload)
		if err := json.Unmarshal([]byte(repaired), &insight); err != nil {
			return nil
		}
	}

	insight.Summary = strings.TrimSpace(insight.Summary)
	insight.Recommendation = strings.TrimSpace(insight.Recommendation)
	if insight.Summary == "" || insight.Recommendation == "" {
		return nil
	}
	insight.Summary = truncateRunes(insight.Summary, maxSummaryRunes)
	insight.Recommendation = truncateRunes(insight.Recommendation, maxRecommendationRunes)
	return &insight
}

func truncateRunes(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen])
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
