package talentdex

import (
	"context"
	"time"

	"github.com/kailas-cloud/talentdex/internal/db"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
	healthuc "github.com/kailas-cloud/talentdex/internal/usecase/health"
)

// --- db.Store fake ---

type fakeStore struct {
	// byThreshold answers SearchKNN per pass threshold.
	byThreshold map[float64][]db.SearchEntry
	errs        map[float64]error
	pingErr     error
	closed      bool
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := f.errs[q.Threshold]; err != nil {
		return nil, err
	}
	entries := f.byThreshold[q.Threshold]
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func (f *fakeStore) SearchRoutineExists(context.Context, string) (bool, error) { return true, nil }

func (f *fakeStore) Close() { f.closed = true }

func (f *fakeStore) WaitForReady(context.Context, time.Duration) error { return nil }

func withStore(s db.Store) Option {
	return optionFunc(func(c *clientConfig) {
		c.store = s
	})
}

// --- public interface mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockSynthesizer struct {
	fn func(ctx context.Context, query, profile string) (string, error)
}

func (m *mockSynthesizer) Explain(ctx context.Context, query, profile string) (string, error) {
	return m.fn(ctx, query, profile)
}

// --- use case mocks ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, raw string) ([]match.Result, error)
}

func (m *mockSearchUC) Search(ctx context.Context, raw string) ([]match.Result, error) {
	return m.searchFn(ctx, raw)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

type mockCloser struct{ closed bool }

func (m *mockCloser) Close() { m.closed = true }
