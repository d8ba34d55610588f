package talentdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	internalapp "github.com/kailas-cloud/talentdex/internal/app"
	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
	logpkg "github.com/kailas-cloud/talentdex/internal/logger"
)

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, raw string) ([]match.Result, error)
}

type closer interface {
	Close()
}

// Client is the talentdex SDK entry point.
type Client struct {
	pipeline  closer
	searchSvc searchUseCase
	healthSvc healthUseCase
	logger    *zap.Logger
	obs       *observer
}

// New creates a Client and connects to the candidate store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}

	cfg := &cc.cfg
	if cc.store == nil && len(cfg.Database.Addrs) == 0 && cfg.Database.DSN == "" {
		return nil, errors.New("talentdex: database address required (use WithValkey, WithRedis or WithPostgres)")
	}
	cfg.ApplyDefaults()
	if err := cfg.ValidatePipeline(); err != nil {
		return nil, fmt.Errorf("talentdex: %w", err)
	}

	logger := cc.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	var buildOpts []internalapp.Option
	if cc.store != nil {
		buildOpts = append(buildOpts, internalapp.WithStore(cc.store))
	}
	if cc.embedder != nil {
		buildOpts = append(buildOpts, internalapp.WithEmbedder(&embedderAdapter{inner: cc.embedder}))
	}
	if cc.synthSet {
		buildOpts = append(buildOpts, internalapp.WithSynthesizer(cc.synthesizer))
	}

	p, err := internalapp.Build(ctx, cfg, logger, buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("talentdex: %w", err)
	}

	return &Client{
		pipeline:  p,
		searchSvc: p.Matcher,
		healthSvc: p.Health,
		logger:    cc.logger,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.pipeline != nil {
		c.pipeline.Close()
	}
}

// Search embeds the query, retrieves the closest candidates and justifies
// each one. No match is an empty result, not an error.
func (c *Client) Search(ctx context.Context, query string) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	if c.logger != nil {
		ctx = logpkg.ContextWithLogger(ctx, c.logger)
	}
	ctx, usage := domain.NewContextWithUsage(ctx)

	results, err := c.searchSvc.Search(ctx, query)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}

	matches := make([]Match, len(results))
	for i := range results {
		r := &results[i]
		matches[i] = Match{
			ID:          r.ID(),
			Name:        r.Name(),
			Accuracy:    r.Accuracy(),
			Reason:      r.Reason(),
			LinkedinURL: r.LinkedinURL(),
			CVURL:       r.CVURL(),
		}
	}
	return SearchResult{
		Matches: matches,
		Usage: Usage{
			EmbeddingTokens:    usage.EmbeddingTokens(),
			SynthesisCalls:     usage.SynthesisCalls(),
			SynthesisFallbacks: usage.SynthesisFallbacks(),
		},
		Degraded: usage.RetrievalDegraded(),
	}, nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
