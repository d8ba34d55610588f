// Package anthropic writes match justifications with the Claude Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/justification"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

const provider = "anthropic"

// Config holds Messages API settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
}

// Synthesizer implements usecase/match.Synthesizer.
type Synthesizer struct {
	client       *anthropic.Client
	hasKey       bool
	model        string
	maxTokens    int
	temperature  float32
	systemPrompt string
}

// NewSynthesizer creates a Claude-backed justification provider.
func NewSynthesizer(cfg *Config) *Synthesizer {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return &Synthesizer{
		client:       anthropic.NewClient(cfg.APIKey, opts...),
		hasKey:       cfg.APIKey != "",
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Explain asks Claude why profile matches query.
func (s *Synthesizer) Explain(ctx context.Context, query, profile string) (string, error) {
	if !s.hasKey {
		metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "error").Inc()
		return "", fmt.Errorf("anthropic: %w: %w", domain.ErrSynthesis, domain.ErrMissingCredential)
	}

	p := justification.Build(s.systemPrompt, query, profile)
	temperature := s.temperature
	start := time.Now()

	resp, err := s.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(s.model),
		System: p.System,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(p.User),
				},
			},
		},
		MaxTokens:   s.maxTokens,
		Temperature: &temperature,
	})
	metrics.SynthesisRequestDuration.WithLabelValues(provider, s.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "error").Inc()
		return "", fmt.Errorf("anthropic messages: %w: %w", domain.ErrSynthesis, err)
	}

	var b strings.Builder
	for _, c := range resp.Content {
		if c.Text != nil {
			b.WriteString(*c.Text)
		}
	}

	text, err := justification.Clean(b.String())
	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "error").Inc()
		return "", fmt.Errorf("anthropic: %w", err)
	}
	metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "success").Inc()
	return text, nil
}
