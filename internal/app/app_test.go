package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/config"
	"github.com/kailas-cloud/talentdex/internal/db"
	"github.com/kailas-cloud/talentdex/internal/domain"
	anthropicSynth "github.com/kailas-cloud/talentdex/internal/transport/anthropic"
	geminiSynth "github.com/kailas-cloud/talentdex/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/talentdex/internal/transport/openai"
)

type fakeStore struct {
	readyErr error
	entries  []db.SearchEntry
	queries  []db.KNNQuery
	closed   bool
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.queries = append(f.queries, *q)
	return &db.SearchResult{Total: len(f.entries), Entries: f.entries}, nil
}

func (f *fakeStore) SearchRoutineExists(context.Context, string) (bool, error) { return true, nil }

func (f *fakeStore) Close() { f.closed = true }

func (f *fakeStore) WaitForReady(context.Context, time.Duration) error { return f.readyErr }

type fakeEmbedder struct{ got string }

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.got = text
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}, TotalTokens: 3}, nil
}

func defaultConfig() config.Config {
	cfg := config.Config{Database: config.DatabaseConfig{Addrs: []string{"localhost:6379"}}}
	cfg.ApplyDefaults()
	return cfg
}

func TestBuild_SearchesThroughInjectedComponents(t *testing.T) {
	cfg := defaultConfig()
	store := &fakeStore{entries: []db.SearchEntry{
		{Key: cfg.Database.KeyPrefix + "candidate:ada", Score: 0.8, Fields: map[string]string{
			db.FieldName: "Ada", db.FieldProfile: "Go and Kubernetes",
		}},
	}}
	emb := &fakeEmbedder{}

	p, err := Build(context.Background(), &cfg, zap.NewNop(),
		WithStore(store), WithEmbedder(emb), WithSynthesizer(nil))
	require.NoError(t, err)

	got, err := p.Matcher.Search(context.Background(), "Platform engineer")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "ada", got[0].ID())
	assert.Equal(t, 80, got[0].Accuracy())
	assert.Equal(t, "Go and Kubernetes", got[0].Reason())
	assert.Equal(t, "Platform engineer", emb.got)
	require.Len(t, store.queries, 1)
	assert.Equal(t, "talentdex:candidates:idx", store.queries[0].IndexName)
	assert.Equal(t, 5, store.queries[0].K)

	p.Close()
	assert.True(t, store.closed)
}

func TestBuild_InstructionAppliedToInjectedEmbedder(t *testing.T) {
	cfg := defaultConfig()
	cfg.Embedding.QueryInstruction = "Find candidates for: "
	emb := &fakeEmbedder{}

	p, err := Build(context.Background(), &cfg, zap.NewNop(),
		WithStore(&fakeStore{}), WithEmbedder(emb), WithSynthesizer(nil))
	require.NoError(t, err)

	_, err = p.Matcher.Search(context.Background(), "Go engineer")
	require.NoError(t, err)
	assert.Contains(t, emb.got, "Find candidates for:")
	assert.Contains(t, emb.got, "Go engineer")
}

func TestBuild_NotReadyClosesStore(t *testing.T) {
	cfg := defaultConfig()
	store := &fakeStore{readyErr: errors.New("connection refused")}

	_, err := Build(context.Background(), &cfg, zap.NewNop(), WithStore(store), WithSynthesizer(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not ready")
	assert.True(t, store.closed)
}

func TestBuild_InvalidPolicyClosesStore(t *testing.T) {
	cfg := defaultConfig()
	cfg.Match.Limit = -1
	store := &fakeStore{}

	_, err := Build(context.Background(), &cfg, zap.NewNop(), WithStore(store))
	require.Error(t, err)
	assert.True(t, store.closed)
	assert.Empty(t, store.queries)
}

func TestBuild_HealthIncludesStore(t *testing.T) {
	cfg := defaultConfig()
	p, err := Build(context.Background(), &cfg, zap.NewNop(), WithStore(&fakeStore{}), WithSynthesizer(nil))
	require.NoError(t, err)

	report := p.Health.Check(context.Background())
	assert.Contains(t, report.Checks, "database")
}

func TestNewSynthesizer(t *testing.T) {
	tests := []struct {
		provider string
		check    func(t *testing.T, s any)
	}{
		{config.ProviderNone, func(t *testing.T, s any) { assert.Nil(t, s) }},
		{config.ProviderOpenAI, func(t *testing.T, s any) { assert.IsType(t, &openaiTransport.Synthesizer{}, s) }},
		{config.ProviderAnthropic, func(t *testing.T, s any) { assert.IsType(t, &anthropicSynth.Synthesizer{}, s) }},
		{config.ProviderGemini, func(t *testing.T, s any) { assert.IsType(t, &geminiSynth.Synthesizer{}, s) }},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := config.SynthesisConfig{Provider: tt.provider, MaxTokens: 150}
			s, err := NewSynthesizer(context.Background(), &cfg)
			require.NoError(t, err)
			if s == nil {
				tt.check(t, nil)
				return
			}
			tt.check(t, s)
		})
	}
}

func TestNewSynthesizer_Unknown(t *testing.T) {
	_, err := NewSynthesizer(context.Background(), &config.SynthesisConfig{Provider: "cohere"})
	assert.Error(t, err)
}

func TestNewStore_UnknownDriver(t *testing.T) {
	_, err := NewStore(&config.DatabaseConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestNewEmbedder_MissingKeyIsConfigurationError(t *testing.T) {
	emb := NewEmbedder(&config.EmbeddingConfig{Provider: "openai", Model: "text-embedding-3-small"}, zap.NewNop())

	_, err := emb.Embed(context.Background(), "Senior React Developer")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestEmbeddingHealthChecker(t *testing.T) {
	emb := NewEmbedder(&config.EmbeddingConfig{Provider: "openai"}, zap.NewNop())
	assert.NotNil(t, EmbeddingHealthChecker(emb))
	assert.Nil(t, EmbeddingHealthChecker(struct{}{}))
}
