package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/folio/internal/config"
	"github.com/okian/folio/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio section server",
	Long: `folio renders a portfolio page with an experience timeline, technology
icons and a paginated project list, and exposes the same views as a JSON API.

Configuration is read from defaults, an optional YAML file and FOLIO_
environment variables, in that order.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	envFiles   []string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides "+config.EnvFile+")")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")
}

// setup loads dotenv files and configuration, then initializes logging.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return err
	}
	if configPath != "" {
		if err := os.Setenv(config.EnvFile, configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvFile, err)
		}
	}

	loaded, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(loaded.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(loaded.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", loaded.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cfg = loaded
	return nil
}
