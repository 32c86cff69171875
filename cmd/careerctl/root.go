package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ritik-JS/alumni-careerpath/internal/bootstrap"
	"github.com/Ritik-JS/alumni-careerpath/internal/config"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configFile   string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "careerctl",
	Short: "Administer the alumni career path engine",
	Long: `careerctl manages the career path engine's data and models.

It reads the same configuration as the HTTP service (CAREER_* environment
variables and an optional YAML file) and runs batch work in-process:
schema migration, synthetic seed data, transition matrix aggregation,
classifier training and one-off predictions.`,
	Version:       version,
	SilenceUsage:  true,
}

func init() {
	rootCmd.SetVersionTemplate("careerctl version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"YAML config file (overrides "+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", string(FormatHuman),
		"Output format: human or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level override: debug, info, warn or error")
}

// loadConfig resolves configuration and initializes logging on stderr so
// stdout carries only command output.
func loadConfig(ctx context.Context) (*config.Config, error) {
	if configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat, Writer: os.Stderr}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads configuration and builds the components. Callers close them.
func open(cmd *cobra.Command, migrate bool) (context.Context, *config.Config, *bootstrap.Components, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := parseFormat(outputFormat); err != nil {
		return ctx, nil, nil, err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return ctx, nil, nil, err
	}
	if migrate {
		cfg.AutoMigrate = true
	}
	c, err := bootstrap.Open(ctx, cfg, logger.Named("careerctl"))
	if err != nil {
		return ctx, nil, nil, err
	}
	return ctx, cfg, c, nil
}

func closeComponents(ctx context.Context, c *bootstrap.Components) {
	if err := c.Close(); err != nil {
		logger.Get().Warn(ctx, "close failed", logger.Error(err))
	}
}
