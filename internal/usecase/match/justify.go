package match

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/justification"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
	"github.com/kailas-cloud/talentdex/internal/logger"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

// justify annotates every candidate concurrently. Each slot is written by
// exactly one goroutine, so output order is retrieval order.
func (s *Service) justify(ctx context.Context, query string, scored []candidate.Scored) []match.Result {
	results := make([]match.Result, len(scored))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i := range scored {
		g.Go(func() error {
			results[i] = match.New(scored[i], s.reason(ctx, query, &scored[i].Candidate))
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	return results
}

// reason never fails: any synthesis problem degrades to the fallback text.
func (s *Service) reason(ctx context.Context, query string, c *candidate.Candidate) (out string) {
	if !c.HasProfile() {
		metrics.SynthesisFallbacksTotal.WithLabelValues("empty_profile").Inc()
		return match.NoInformationReason
	}
	if s.synthesizer == nil {
		metrics.SynthesisFallbacksTotal.WithLabelValues("disabled").Inc()
		return match.FallbackReason(c)
	}

	usage := domain.UsageFromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			s.fallback(ctx, c, fmt.Errorf("synthesizer panic: %v", r))
			usage.RecordSynthesis(true)
			out = match.FallbackReason(c)
		}
	}()

	text, err := s.synthesizer.Explain(ctx, query, c.Profile())
	if err == nil {
		text, err = justification.Clean(text)
	}
	if err != nil {
		s.fallback(ctx, c, err)
		usage.RecordSynthesis(true)
		return match.FallbackReason(c)
	}
	usage.RecordSynthesis(false)
	return text
}

func (s *Service) fallback(ctx context.Context, c *candidate.Candidate, err error) {
	metrics.SynthesisFallbacksTotal.WithLabelValues("error").Inc()
	logger.FromContext(ctx).Warn("justification failed, using profile text",
		zap.String("candidate_id", c.ID()),
		zap.Error(err),
	)
}
