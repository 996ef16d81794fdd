/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/api"
	"github.com/ssargent/ypbank/pkg/config"
)

// serverFlags are the server settings a command may override
type serverFlags struct {
	port   int
	bind   string
	apiKey string
}

func (f *serverFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVar(&f.bind, "bind", "127.0.0.1", "Address to bind")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key for authentication")
}

// apply copies the flags the user set onto server.
func (f *serverFlags) apply(cmd *cobra.Command, server *config.Server) {
	if cmd.Flags().Changed("port") {
		server.Port = f.port
	}
	if cmd.Flags().Changed("bind") {
		server.Bind = f.bind
	}
	if cmd.Flags().Changed("api-key") {
		server.APIKey = f.apiKey
	}
}

var serveOpts serverFlags

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Serve the codec, comparer and ledger over HTTP until interrupted.

Flags override the server section of the config file. Requests must carry
the API key in the X-API-Key header unless the key is empty.

Examples:
  ypbank serve
  ypbank serve --port=9090 --bind=0.0.0.0 --api-key=mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := appConfig.Server
		serveOpts.apply(cmd, &server)
		return runServer(cmd, server)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveOpts.register(serveCmd)
}

// runServer opens the ledger and serves it until SIGINT or SIGTERM.
func runServer(cmd *cobra.Command, server config.Server) error {
	if server.APIKey == "" {
		logger.Warn("no API key configured, authentication is disabled")
	}

	l, err := openLedger()
	if err != nil {
		return err
	}
	defer l.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	starter := container.GetServerFactory().CreateServerStarter()
	return starter.StartServer(ctx, l, api.ServerConfig{
		Port:         server.Port,
		Bind:         server.Bind,
		APIKey:       server.APIKey,
		MaxBodyBytes: server.MaxBodyBytes,
	}, logger)
}
