// Package justification holds the provider-independent prompt used to
// explain why a candidate matches a role description.
package justification

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/talentdex/internal/domain"
)

// Generation defaults shared by all providers.
const (
	DefaultMaxTokens   = 150
	DefaultTemperature = 0.7
)

// DefaultSystemPrompt instructs the model to produce a short, grounded rationale.
const DefaultSystemPrompt = "You are a recruiting assistant. Given a role description and a candidate profile, " +
	"explain in 2-3 concise sentences why the candidate matches the role. " +
	"Use only facts stated in the profile. Do not invent experience, employers, or skills. " +
	"Do not use headings, lists, or markdown."

// Prompt is a ready-to-send system/user prompt pair.
type Prompt struct {
	System string
	User   string
}

// Build assembles the prompt for one candidate. An empty system prompt uses DefaultSystemPrompt.
func Build(systemPrompt, query, profile string) Prompt {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	var b strings.Builder
	b.WriteString("Role description:\n")
	b.WriteString(strings.TrimSpace(query))
	b.WriteString("\n\nCandidate profile:\n")
	b.WriteString(strings.TrimSpace(profile))
	b.WriteString("\n\nWhy does this candidate match the role?")
	return Prompt{System: systemPrompt, User: b.String()}
}

// Clean normalizes model output. Blank output is a synthesis failure.
func Clean(output string) (string, error) {
	text := strings.TrimSpace(output)
	if text == "" {
		return "", fmt.Errorf("empty completion: %w", domain.ErrSynthesis)
	}
	return text, nil
}
