// Package app wires the matching pipeline from configuration. The CLI and the
// embeddable SDK both build through it so they never drift apart.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/config"
	"github.com/kailas-cloud/talentdex/internal/db"
	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/retrieval"
	candidaterepo "github.com/kailas-cloud/talentdex/internal/repository/candidate"
	healthuc "github.com/kailas-cloud/talentdex/internal/usecase/health"
	matchuc "github.com/kailas-cloud/talentdex/internal/usecase/match"
)

// Pipeline is the wired matching pipeline.
type Pipeline struct {
	Store    db.Store
	Embedder domain.Embedder
	Matcher  *matchuc.Service
	Health   *healthuc.Service
}

// Close releases the store connection.
func (p *Pipeline) Close() {
	if p.Store != nil {
		p.Store.Close()
	}
}

// Option replaces a component that Build would otherwise create from config.
type Option func(*overrides)

type overrides struct {
	store       db.Store
	embedder    domain.Embedder
	synthesizer matchuc.Synthesizer
	synthSet    bool
}

// WithStore uses an already connected store. Build takes ownership: it waits
// for readiness, closes the store if wiring fails, and Pipeline.Close closes it.
func WithStore(s db.Store) Option {
	return func(o *overrides) { o.store = s }
}

// WithEmbedder replaces the configured embedding provider. The instruction
// prefix and instrumentation are still applied on top.
func WithEmbedder(e domain.Embedder) Option {
	return func(o *overrides) { o.embedder = e }
}

// WithSynthesizer replaces the configured synthesis provider. nil disables
// synthesis so reasons fall back to profile text.
func WithSynthesizer(s matchuc.Synthesizer) Option {
	return func(o *overrides) {
		o.synthesizer = s
		o.synthSet = true
	}
}

func (o *overrides) closeStore() {
	if o.store != nil {
		o.store.Close()
	}
}

// Build connects to the store and assembles the pipeline. cfg must already
// have defaults applied and be validated.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	var o overrides
	for _, opt := range opts {
		opt(&o)
	}

	policy, err := retrieval.NewPolicy(cfg.Match.Primary(), cfg.Match.Fallback(), cfg.Match.Limit)
	if err != nil {
		o.closeStore()
		return nil, fmt.Errorf("match policy: %w", err)
	}

	synth := o.synthesizer
	if !o.synthSet {
		synth, err = NewSynthesizer(ctx, &cfg.Synthesis)
		if err != nil {
			o.closeStore()
			return nil, err
		}
	}

	store := o.store
	if store == nil {
		store, err = NewStore(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	// A missing routine is reported per search as a configuration error; warn early too.
	routine := cfg.Database.Routine()
	if ok, err := store.SearchRoutineExists(ctx, routine); err != nil {
		logger.Warn("Could not verify search routine", zap.String("routine", routine), zap.Error(err))
	} else if !ok {
		logger.Warn("Search routine is not deployed, searches will fail", zap.String("routine", routine))
	}

	var embedder domain.Embedder
	if o.embedder != nil {
		embedder = decorateEmbedder(o.embedder, &cfg.Embedding, logger)
	} else {
		if cfg.Embedding.APIKey == "" {
			logger.Warn("Embedding API key is not set, searches will fail with a configuration error")
		}
		embedder = NewEmbedder(&cfg.Embedding, logger)
	}

	repo := candidaterepo.New(store, routine, cfg.Database.KeyPrefix)
	matcher := matchuc.New(embedder, repo, synth,
		matchuc.WithPolicy(policy),
		matchuc.WithConcurrency(cfg.Synthesis.Concurrency),
	)

	logger.Info("Pipeline ready",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("synthesis_provider", cfg.Synthesis.Provider),
		zap.Float64("primary_threshold", cfg.Match.Primary()),
		zap.Float64("fallback_threshold", cfg.Match.Fallback()),
		zap.Int("limit", cfg.Match.Limit),
	)

	return &Pipeline{
		Store:    store,
		Embedder: embedder,
		Matcher:  matcher,
		Health:   healthuc.New(store, EmbeddingHealthChecker(embedder)),
	}, nil
}

// EmbeddingHealthChecker returns nil when the embedder cannot report health,
// so the health report omits the embedding check.
func EmbeddingHealthChecker(e any) healthuc.EmbeddingChecker {
	if hc, ok := e.(healthuc.EmbeddingChecker); ok {
		return hc
	}
	return nil
}
