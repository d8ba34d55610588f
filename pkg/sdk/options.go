package talentdex

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/config"
	"github.com/kailas-cloud/talentdex/internal/db"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	store       db.Store // preconnected store, tests only
	embedder    Embedder
	synthesizer Synthesizer
	synthSet    bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey connects to a Valkey instance with the search module loaded.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverValkey
		c.cfg.Database.Addrs = []string{addr}
		c.cfg.Database.Password = password
	})
}

// WithRedis connects to a Redis Stack instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverRedis
		c.cfg.Database.Addrs = []string{addr}
		c.cfg.Database.Password = password
	})
}

// WithPostgres connects to PostgreSQL with pgvector and the search function deployed.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverPostgres
		c.cfg.Database.DSN = dsn
	})
}

// WithKeyPrefix sets the hash key prefix. Defaults to "talentdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.KeyPrefix = prefix
	})
}

// WithIndex sets the FT index name. Defaults to "<prefix>candidates:idx".
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.Index = name
	})
}

// WithSearchFunction sets the SQL similarity function. Defaults to "match_candidates".
func WithSearchFunction(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Database.SearchFunction = name
	})
}

// WithEmbedding configures the built-in OpenAI-compatible embedding client.
// Empty baseURL and model keep the provider defaults.
func WithEmbedding(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.APIKey = apiKey
		c.cfg.Embedding.BaseURL = baseURL
		c.cfg.Embedding.Model = model
	})
}

// WithQueryInstruction prepends a task instruction to every query before embedding.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Embedding.QueryInstruction = instruction
	})
}

// WithEmbedder replaces the built-in embedding client.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithSynthesis selects the justification provider: "openai", "anthropic",
// "gemini" or "none". An empty model uses the provider's default.
func WithSynthesis(provider, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Synthesis.Provider = provider
		c.cfg.Synthesis.APIKey = apiKey
		c.cfg.Synthesis.Model = model
	})
}

// WithSynthesizer replaces the built-in justification provider.
// Pass nil to skip synthesis and use profile text as the reason.
func WithSynthesizer(s Synthesizer) Option {
	return optionFunc(func(c *clientConfig) {
		c.synthesizer = s
		c.synthSet = true
	})
}

// WithThresholds sets the primary and fallback similarity thresholds.
// Defaults: 0.3 and 0.0.
func WithThresholds(primary, fallback float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Match.PrimaryThreshold = &primary
		c.cfg.Match.FallbackThreshold = &fallback
	})
}

// WithLimit sets the maximum number of matches per search. Default: 5.
func WithLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Match.Limit = n
	})
}

// WithConcurrency caps parallel justification calls per search. Default: 5.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Synthesis.Concurrency = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
