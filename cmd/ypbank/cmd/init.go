/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/config"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a config file with default settings and a freshly generated API
key. The file goes to --config when given, otherwise to the default path.

Examples:
  ypbank init
  ypbank init --config ./ypbank.yaml --ledger-dir ./ledger --force`,
	Args: cobra.NoArgs,
	// The config file may not exist yet, so skip loading it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(cmd)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		ledgerDir, _ := cmd.Flags().GetString("ledger-dir")

		if config.ConfigExists(path) && !initForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}

		cfg, err := config.BootstrapConfig(path, ledgerDir)
		if err != nil {
			return err
		}
		logger.Info("wrote config", "path", path)

		cmd.Printf("Config written to %s\n", path)
		cmd.Printf("Ledger directory: %s\n", cfg.Ledger.Dir)
		cmd.Printf("API key: %s\n", cfg.Server.APIKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
