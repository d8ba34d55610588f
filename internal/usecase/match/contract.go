package match

import (
	"context"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// Embedder turns the query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever runs one similarity-search pass.
// Results are ordered by descending similarity and exceed threshold strictly.
type Retriever interface {
	Search(ctx context.Context, vector []float32, threshold float64, limit int) ([]candidate.Scored, error)
}

// Synthesizer explains why a profile matches a role description.
type Synthesizer interface {
	Explain(ctx context.Context, query, profile string) (string, error)
}
