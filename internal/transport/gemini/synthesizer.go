// Package gemini writes match justifications with the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/justification"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

const (
	provider     = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// contentGenerator is the slice of *genai.Models used here; tests substitute a fake.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Config holds Gemini API settings.
type Config struct {
	APIKey       string
	Model        string
	MaxTokens    int
	Temperature  float32
	SystemPrompt string
}

// Synthesizer implements usecase/match.Synthesizer.
type Synthesizer struct {
	models       contentGenerator
	model        string
	maxTokens    int32
	temperature  float32
	systemPrompt string
}

// NewSynthesizer creates a Gemini-backed justification provider. With an
// empty API key no client is built and every call fails as a synthesis error.
func NewSynthesizer(ctx context.Context, cfg *Config) (*Synthesizer, error) {
	s := newSynthesizer(nil, cfg)

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return s, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	s.models = client.Models
	return s, nil
}

func newSynthesizer(models contentGenerator, cfg *Config) *Synthesizer {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Synthesizer{
		models:       models,
		model:        model,
		maxTokens:    int32(cfg.MaxTokens), //nolint:gosec // bounded by config validation
		temperature:  cfg.Temperature,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Explain asks Gemini why profile matches query.
func (s *Synthesizer) Explain(ctx context.Context, query, profile string) (string, error) {
	if s.models == nil {
		metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "error").Inc()
		return "", fmt.Errorf("gemini: %w: %w", domain.ErrSynthesis, domain.ErrMissingCredential)
	}

	p := justification.Build(s.systemPrompt, query, profile)
	temperature := s.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: p.System}}},
		Temperature:       &temperature,
		MaxOutputTokens:   s.maxTokens,
	}

	start := time.Now()
	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(p.User), config)
	metrics.SynthesisRequestDuration.WithLabelValues(provider, s.model).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "error").Inc()
		return "", describe(err)
	}

	text, err := justification.Clean(collectText(resp))
	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "error").Inc()
		return "", fmt.Errorf("gemini: %w", err)
	}
	metrics.SynthesisRequestsTotal.WithLabelValues(provider, s.model, "success").Inc()
	return text, nil
}

// collectText joins the text parts of every candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(strings.TrimSpace(part.Text))
		}
	}
	return b.String()
}

func describe(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini API error %d %s: %s: %w", apiErr.Code, apiErr.Status, apiErr.Message, domain.ErrSynthesis)
	}
	return fmt.Errorf("gemini generate content: %w: %w", domain.ErrSynthesis, err)
}
