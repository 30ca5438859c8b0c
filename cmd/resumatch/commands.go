package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/config"
	"github.com/kailas-cloud/resumatch/internal/extractor"
	healthuc "github.com/kailas-cloud/resumatch/internal/usecase/health"
	rankinguc "github.com/kailas-cloud/resumatch/internal/usecase/ranking"
)

func newRankCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Serve /rank-resumes (mean-pooled embeddings)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRanking(cmd, flags, "rank", "/rank-resumes", func(c *config.Config) config.RankingConfig { return c.Rank })
		},
	}
}

func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Serve /analyze-resumes (CLS-token embeddings)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRanking(cmd, flags, "analyze", "/analyze-resumes", func(c *config.Config) config.RankingConfig { return c.Analyze })
		},
	}
}

func runRanking(
	cmd *cobra.Command, flags *globalFlags, service, path string,
	section func(*config.Config) config.RankingConfig,
) error {
	cfg, logger, err := flags.bootstrap(service)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rc := section(&cfg)

	embedder, closeEmbedder, err := buildEmbedder(rc.Embedding, logger)
	if err != nil {
		logger.Error("Failed to build embedder", zap.Error(err))
		return err
	}
	defer func() {
		if err := closeEmbedder(); err != nil {
			logger.Warn("Failed to release embedder", zap.Error(err))
		}
	}()

	rankSvc := rankinguc.New(extractor.New(logger), embedder)
	health := newHealth(cfg.HTTP).WithCheck("embedding", embedder)

	server := newServer(cfg, health, logger).WithRanking(path, rankSvc)
	return serve(cmd.Context(), logger, rc.Port, cfg.HTTP, server.Router())
}

func newInterviewCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "interview",
		Short: "Serve /analyze (interview summarization)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.bootstrap("interview")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			sc := cfg.Interview.Summarizer
			gen, err := buildGenerator(cmd.Context(), sc, logger)
			if err != nil {
				logger.Error("Failed to build generator", zap.Error(err))
				return err
			}
			logger.Info("Generator created",
				zap.String("provider", sc.Provider),
				zap.String("model", generatorModel(gen, sc.Model)),
				zap.Int("max_output_tokens", sc.MaxOutputTokens),
			)

			health := newHealth(cfg.HTTP)
			if hc, ok := gen.(healthuc.Checker); ok {
				health.WithCheck("generator", hc)
			}

			server := newServer(cfg, health, logger).WithSummary("/analyze", buildSummary(gen, sc))
			return serve(cmd.Context(), logger, cfg.Interview.Port, cfg.HTTP, server.Router())
		},
	}
}

func newProxyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "proxy",
		Short: "Serve /proxy/rank-resumes (forwards to a ranking service)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.bootstrap("proxy")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			relay, err := buildRelay(cfg.Proxy, logger)
			if err != nil {
				logger.Error("Failed to build relay", zap.Error(err))
				return err
			}
			logger.Info("Relay created", zap.String("target", relay.Target()))

			health := newHealth(cfg.HTTP).WithCheck("downstream", relay)

			server := newServer(cfg, health, logger).WithRelay("/proxy/rank-resumes", relay)
			return serve(cmd.Context(), logger, cfg.Proxy.Port, cfg.HTTP, server.Router())
		},
	}
}
