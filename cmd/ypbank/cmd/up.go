/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/config"
)

var upOpts struct {
	server    serverFlags
	printKey  bool
	bootstrap *config.Config
}

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Bootstrap the config if missing, then start the server",
	Long: `Create a config file with a generated API key when none exists, then
start the REST API server. This is the recommended way to run ypbank as a
service.

Examples:
  ypbank up
  ypbank up --ledger-dir ./ledger --port 9000
  ypbank up --config ./ypbank.yaml --print-key`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		upOpts.bootstrap = nil
		if !config.ConfigExists(path) {
			ledgerDir, _ := cmd.Flags().GetString("ledger-dir")
			cfg, err := config.BootstrapConfig(path, ledgerDir)
			if err != nil {
				return err
			}
			upOpts.bootstrap = cfg
		}
		if err := cmd.Flags().Set("config", path); err != nil {
			return err
		}
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		if upOpts.bootstrap != nil {
			logger.Info("bootstrapped config", "path", path)
			cmd.Printf("🔧 Configuration created at %s\n", path)
			if upOpts.printKey {
				cmd.Printf("🔑 API key: %s\n", upOpts.bootstrap.Server.APIKey)
			}
		} else {
			cmd.Printf("✅ Loaded configuration from %s\n", path)
		}

		server := appConfig.Server
		upOpts.server.apply(cmd, &server)

		cmd.Printf("🚀 Starting ypbank server on %s:%d\n", server.Bind, server.Port)
		cmd.Printf("📁 Ledger directory: %s\n", appConfig.Ledger.Dir)
		return runServer(cmd, server)
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
	upOpts.server.register(upCmd)
	upCmd.Flags().BoolVar(&upOpts.printKey, "print-key", false, "Print a newly generated API key")
}
