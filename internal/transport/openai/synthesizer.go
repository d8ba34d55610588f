package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/justification"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

// SynthesizerConfig holds chat-completion settings for justifications.
type SynthesizerConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
}

// Synthesizer writes match justifications with the chat completions API.
type Synthesizer struct {
	client       *openai.Client
	hasKey       bool
	model        string
	maxTokens    int
	temperature  float32
	systemPrompt string
}

// NewSynthesizer creates an OpenAI-compatible justification provider.
func NewSynthesizer(cfg *SynthesizerConfig) *Synthesizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Synthesizer{
		client:       openai.NewClientWithConfig(clientCfg),
		hasKey:       cfg.APIKey != "",
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Explain implements usecase/match.Synthesizer.
func (s *Synthesizer) Explain(ctx context.Context, query, profile string) (string, error) {
	if !s.hasKey {
		metrics.SynthesisRequestsTotal.WithLabelValues("openai", s.model, "error").Inc()
		return "", fmt.Errorf("openai: %w: %w", domain.ErrSynthesis, domain.ErrMissingCredential)
	}

	p := justification.Build(s.systemPrompt, query, profile)
	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	metrics.SynthesisRequestDuration.WithLabelValues("openai", s.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues("openai", s.model, "error").Inc()
		return "", parseAPIError(err, "completion", domain.ErrSynthesis)
	}
	if len(resp.Choices) == 0 {
		metrics.SynthesisRequestsTotal.WithLabelValues("openai", s.model, "error").Inc()
		return "", fmt.Errorf("openai: no choices: %w", domain.ErrSynthesis)
	}

	text, err := justification.Clean(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues("openai", s.model, "error").Inc()
		return "", fmt.Errorf("openai: %w", err)
	}
	metrics.SynthesisRequestsTotal.WithLabelValues("openai", s.model, "success").Inc()
	return text, nil
}
