package talentdex

import "context"

// Embedder converts query text to a vector. Supply one with WithEmbedder to
// bypass the built-in OpenAI-compatible client.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Synthesizer writes a short justification of why a profile fits a query.
// Failures are not fatal: the candidate's profile text is used instead.
type Synthesizer interface {
	Explain(ctx context.Context, query, profile string) (string, error)
}
