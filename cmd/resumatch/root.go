package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/config"
	logpkg "github.com/kailas-cloud/resumatch/internal/logger"
	"github.com/kailas-cloud/resumatch/internal/metrics"
	"github.com/kailas-cloud/resumatch/internal/version"
)

const app = "resumatch"

// globalFlags are shared by every serve command.
type globalFlags struct {
	env      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           app,
		Short:         "resumatch ranks resumes against a job description and summarizes interviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.env, "env", "",
		"config environment, selects config/<env>.yaml (default: $ENV or local)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"override logging.level: debug, info, warn, error")

	root.AddCommand(
		newRankCmd(flags),
		newAnalyzeCmd(flags),
		newInterviewCmd(flags),
		newProxyCmd(flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// bootstrap loads config and builds the service logger.
func (f *globalFlags) bootstrap(service string) (config.Config, *zap.Logger, error) {
	env := f.env
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if f.logLevel != "" {
		level = f.logLevel
	}
	logger, err := logpkg.NewLogger(env, service, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.Register()

	logger.Info("Starting resumatch service",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
	)
	return cfg, logger, nil
}
