package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/config"
	"github.com/kailas-cloud/talentdex/internal/db"
	dbPostgres "github.com/kailas-cloud/talentdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/talentdex/internal/db/redis"
	dbValkey "github.com/kailas-cloud/talentdex/internal/db/valkey"
	"github.com/kailas-cloud/talentdex/internal/domain"
	anthropicSynth "github.com/kailas-cloud/talentdex/internal/transport/anthropic"
	geminiSynth "github.com/kailas-cloud/talentdex/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/talentdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/talentdex/internal/usecase/embedding"
	matchuc "github.com/kailas-cloud/talentdex/internal/usecase/match"
)

// DefaultSynthesisModels are the chat models used per provider when config leaves model empty.
var DefaultSynthesisModels = map[string]string{
	config.ProviderOpenAI:    "gpt-4o-mini",
	config.ProviderAnthropic: "claude-3-5-haiku-latest",
	config.ProviderGemini:    "gemini-2.5-flash",
}

// NewStore opens the configured candidate store driver.
func NewStore(cfg *config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverValkey:
		return dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	case config.DriverPostgres:
		return dbPostgres.NewStore(dbPostgres.Config{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewEmbedder assembles the decorator chain: OpenAI -> Instruction -> Instrumented.
func NewEmbedder(cfg *config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})
	return decorateEmbedder(base, cfg, logger)
}

func decorateEmbedder(base domain.Embedder, cfg *config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	embedder := base
	if cfg.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)
}

// NewSynthesizer returns a nil interface (not a typed nil) for provider "none".
func NewSynthesizer(ctx context.Context, cfg *config.SynthesisConfig) (matchuc.Synthesizer, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultSynthesisModels[cfg.Provider]
	}

	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI:
		return openaiTransport.NewSynthesizer(&openaiTransport.SynthesizerConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        model,
			MaxTokens:    cfg.MaxTokens,
			Temperature:  cfg.Temp(),
			SystemPrompt: cfg.SystemPrompt,
		}), nil
	case config.ProviderAnthropic:
		return anthropicSynth.NewSynthesizer(&anthropicSynth.Config{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        model,
			MaxTokens:    cfg.MaxTokens,
			Temperature:  cfg.Temp(),
			SystemPrompt: cfg.SystemPrompt,
		}), nil
	case config.ProviderGemini:
		s, err := geminiSynth.NewSynthesizer(ctx, &geminiSynth.Config{
			APIKey:       cfg.APIKey,
			Model:        model,
			MaxTokens:    cfg.MaxTokens,
			Temperature:  cfg.Temp(),
			SystemPrompt: cfg.SystemPrompt,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini synthesizer: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown synthesis provider %q", cfg.Provider)
	}
}
