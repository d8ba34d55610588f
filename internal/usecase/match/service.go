package match

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
	"github.com/kailas-cloud/talentdex/internal/domain/retrieval"
	"github.com/kailas-cloud/talentdex/internal/logger"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

// DefaultConcurrency bounds parallel justification calls per request.
const DefaultConcurrency = 5

// Service runs the matching pipeline: embed, retrieve with fallback, justify.
type Service struct {
	embedder    Embedder
	retriever   Retriever
	synthesizer Synthesizer
	policy      retrieval.Policy
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy overrides the default retrieval policy.
func WithPolicy(p retrieval.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithConcurrency caps in-flight justification calls. Values < 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a matching Service. synth may be nil: reasons then fall back to profile text.
func New(emb Embedder, ret Retriever, synth Synthesizer, opts ...Option) *Service {
	s := &Service{
		embedder:    emb,
		retriever:   ret,
		synthesizer: synth,
		policy:      retrieval.DefaultPolicy(),
		concurrency: DefaultConcurrency,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search returns ranked, annotated matches for a role description.
// An empty slice means nothing matched even the most permissive pass.
func (s *Service) Search(ctx context.Context, raw string) ([]match.Result, error) {
	q, err := match.NewQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("validate query: %w", err)
	}

	emb, err := s.embedder.Embed(ctx, q.Text())
	if err != nil {
		return nil, classifyEmbedError(err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(emb.TotalTokens)

	scored, err := s.retrieve(ctx, emb.Embedding)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return []match.Result{}, nil
	}

	return s.justify(ctx, q.Text(), scored), nil
}

// retrieve walks the policy passes until one yields candidates.
// Only the first pass is authoritative: a failure in a later, permissive
// pass is reported as no match and flagged on the request usage.
func (s *Service) retrieve(ctx context.Context, vector []float32) ([]candidate.Scored, error) {
	log := logger.FromContext(ctx)

	for i, pass := range s.policy.Passes() {
		found, err := s.retriever.Search(ctx, vector, pass.Threshold, s.policy.Limit())
		if err != nil {
			metrics.RetrievalPassesTotal.WithLabelValues(string(pass.Name), "error").Inc()
			if i == 0 {
				return nil, classifyStoreError(err)
			}
			log.Warn("retrieval pass failed, reporting no match",
				zap.String("pass", string(pass.Name)),
				zap.Float64("threshold", pass.Threshold),
				zap.Error(err),
			)
			domain.UsageFromContext(ctx).MarkRetrievalDegraded()
			return nil, nil
		}

		if len(found) == 0 {
			metrics.RetrievalPassesTotal.WithLabelValues(string(pass.Name), "empty").Inc()
			log.Debug("retrieval pass empty",
				zap.String("pass", string(pass.Name)),
				zap.Float64("threshold", pass.Threshold),
			)
			continue
		}

		metrics.RetrievalPassesTotal.WithLabelValues(string(pass.Name), "hit").Inc()
		metrics.RetrievedCandidates.Observe(float64(len(found)))
		if i > 0 {
			log.Info("fallback retrieval used",
				zap.String("pass", string(pass.Name)),
				zap.Float64("threshold", pass.Threshold),
				zap.Int("candidates", len(found)),
			)
		}
		if len(found) > s.policy.Limit() {
			found = found[:s.policy.Limit()]
		}
		return found, nil
	}
	return nil, nil
}

// classifyEmbedError keeps configuration errors as they are and files
// everything else under ErrEmbeddingService.
func classifyEmbedError(err error) error {
	if errors.Is(err, domain.ErrConfiguration) || errors.Is(err, domain.ErrEmbeddingService) {
		return fmt.Errorf("embed query: %w", err)
	}
	return fmt.Errorf("embed query: %w: %w", domain.ErrEmbeddingService, err)
}

func classifyStoreError(err error) error {
	if errors.Is(err, domain.ErrConfiguration) || errors.Is(err, domain.ErrStore) {
		return fmt.Errorf("retrieve candidates: %w", err)
	}
	return fmt.Errorf("retrieve candidates: %w: %w", domain.ErrStore, err)
}
