/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/config"
	"github.com/ssargent/ypbank/pkg/di"
	"github.com/ssargent/ypbank/pkg/logging"
)

var (
	container *di.Container
	appConfig *config.Config
	logger    *slog.Logger
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ypbank",
	Short: "YPBank transaction record tools",
	Long: `ypbank reads and writes bank transaction records in three formats
(csv, txt and binary), converts between them, compares record sets and keeps
an embedded ledger of imported records that can be served over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default "+config.GetDefaultConfigPath()+" if present)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.StringP("ledger-dir", "d", "", "Ledger directory")
}

// setup loads the configuration and builds the logger for cmd.
func setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// setupLogger builds the logger from defaults and flags only, for commands
// that run before a config file exists.
func setupLogger(cmd *cobra.Command) {
	cfg := config.DefaultConfig()
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format, _ = cmd.Flags().GetString("log-format")
	}
	logger = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
}

// configPath is --config, or the default path when the flag is empty.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.GetDefaultConfigPath()
	}
	return path
}

// loadConfig reads the config file named by --config, or the default file
// when it exists, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"log-level", &cfg.Logging.Level},
		{"log-format", &cfg.Logging.Format},
		{"ledger-dir", &cfg.Ledger.Dir},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target, _ = cmd.Flags().GetString(o.flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// requireContainer guards commands that need injected dependencies.
func requireContainer() error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}
	return nil
}
