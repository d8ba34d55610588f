package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/domain"
	"github.com/kailas-cloud/talentdex/internal/domain/match"
	logpkg "github.com/kailas-cloud/talentdex/internal/logger"
)

var searchTimeout time.Duration

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run one search in-process and print the matches as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if searchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, searchTimeout)
			defer cancel()
		}
		ctx = logpkg.ContextWithLogger(ctx, a.logger)
		ctx, usage := domain.NewContextWithUsage(ctx)

		results, err := a.Matcher.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if usage.RetrievalDegraded() {
			a.logger.Warn("Fallback retrieval failed, results may be incomplete")
		}
		a.logger.Debug("Search finished",
			zap.Int("results", len(results)),
			zap.Int("embedding_tokens", usage.EmbeddingTokens()),
			zap.Int("synthesis_calls", usage.SynthesisCalls()),
			zap.Int("synthesis_fallbacks", usage.SynthesisFallbacks()),
		)
		return printResults(cmd.OutOrStdout(), results)
	},
}

func init() {
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 30*time.Second, "overall search deadline (0 disables)")
	rootCmd.AddCommand(searchCmd)
}

type resultJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Accuracy    int    `json:"accuracy"`
	Reason      string `json:"reason"`
	LinkedinURL string `json:"linkedinUrl,omitempty"`
	CVURL       string `json:"cvUrl,omitempty"`
}

func printResults(w io.Writer, results []match.Result) error {
	out := make([]resultJSON, len(results))
	for i := range results {
		r := &results[i]
		out[i] = resultJSON{
			ID:          r.ID(),
			Name:        r.Name(),
			Accuracy:    r.Accuracy(),
			Reason:      r.Reason(),
			LinkedinURL: r.LinkedinURL(),
			CVURL:       r.CVURL(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
