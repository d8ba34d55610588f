package domain

import (
	"context"
	"sync"
	"testing"
)

func TestRequestUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil usage without collector")
	}
	u.AddEmbeddingTokens(10)
	u.RecordSynthesis(true)
	u.MarkRetrievalDegraded()
}

func TestRequestUsage_RetrievalDegraded(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	if u.RetrievalDegraded() {
		t.Fatal("fresh collector must not be degraded")
	}
	UsageFromContext(ctx).MarkRetrievalDegraded()
	if !u.RetrievalDegraded() {
		t.Error("expected degraded after mark")
	}
}

func TestRequestUsage_ConcurrentRecord(t *testing.T) {
	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddEmbeddingTokens(7)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			UsageFromContext(ctx).RecordSynthesis(i%2 == 0)
		}(i)
	}
	wg.Wait()

	if u.EmbeddingTokens() != 7 {
		t.Errorf("embedding tokens: got %d, want 7", u.EmbeddingTokens())
	}
	if u.SynthesisCalls() != 10 {
		t.Errorf("synthesis calls: got %d, want 10", u.SynthesisCalls())
	}
	if u.SynthesisFallbacks() != 5 {
		t.Errorf("synthesis fallbacks: got %d, want 5", u.SynthesisFallbacks())
	}
}
