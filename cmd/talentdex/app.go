package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	internalapp "github.com/kailas-cloud/talentdex/internal/app"
	"github.com/kailas-cloud/talentdex/internal/config"
	logpkg "github.com/kailas-cloud/talentdex/internal/logger"
	"github.com/kailas-cloud/talentdex/internal/metrics"
)

// app is the process-level state shared by serve and search.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	*internalapp.Pipeline
}

func newApp(ctx context.Context) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterPipelineMetrics()

	p, err := internalapp.Build(ctx, &cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		env:      env,
		cfg:      cfg,
		logger:   logger,
		Pipeline: p,
	}, nil
}

func (a *app) Close() {
	a.Pipeline.Close()
	_ = a.logger.Sync()
}
