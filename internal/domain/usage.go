package domain

import (
	"context"
	"sync"
)

type requestUsageKey struct{}

// RequestUsage collects external-service usage for a single search request.
// The handler puts a pointer into the context before calling the pipeline;
// justification fan-out writes from several goroutines, so access is locked.
type RequestUsage struct {
	mu                 sync.Mutex
	embeddingTokens    int
	synthesisCalls     int
	synthesisFallbacks int
	retrievalDegraded  bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RequestUsage) {
	u := &RequestUsage{}
	return context.WithValue(ctx, requestUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *RequestUsage {
	u, _ := ctx.Value(requestUsageKey{}).(*RequestUsage)
	return u
}

// AddEmbeddingTokens records tokens consumed by the query embedding.
func (u *RequestUsage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += n
	u.mu.Unlock()
}

// RecordSynthesis records one justification call and whether it fell back.
func (u *RequestUsage) RecordSynthesis(fallback bool) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.synthesisCalls++
	if fallback {
		u.synthesisFallbacks++
	}
	u.mu.Unlock()
}

// EmbeddingTokens returns the tokens consumed by embedding calls.
func (u *RequestUsage) EmbeddingTokens() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.embeddingTokens
}

// SynthesisCalls returns how many justification calls were issued.
func (u *RequestUsage) SynthesisCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.synthesisCalls
}

// SynthesisFallbacks returns how many justification calls fell back to profile text.
func (u *RequestUsage) SynthesisFallbacks() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.synthesisFallbacks
}

// MarkRetrievalDegraded records that a permissive retrieval pass failed and
// the empty result is not a genuine no-match.
func (u *RequestUsage) MarkRetrievalDegraded() {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.retrievalDegraded = true
	u.mu.Unlock()
}

// RetrievalDegraded reports whether MarkRetrievalDegraded was called.
func (u *RequestUsage) RetrievalDegraded() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.retrievalDegraded
}
