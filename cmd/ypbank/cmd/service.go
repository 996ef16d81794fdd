/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/config"
)

const (
	serviceName      = "ypbank.service"
	serviceLedgerDir = "/var/lib/ypbank/ledger"
)

// Replaced in tests.
var (
	unitPath    = "/etc/systemd/system/" + serviceName
	runCommand  = execCommand
	requireRoot = func() error {
		if os.Geteuid() != 0 {
			return errors.New("this command requires root privileges (run with sudo)")
		}
		return nil
	}
)

var serviceOpts struct {
	user   string
	binary string
	port   int
	start  bool
	follow bool
	lines  int
}

// serviceCmd represents the service command
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage ypbank as a systemd service",
	Long: `Manage the ypbank API server as a systemd service. The unit runs
"ypbank up" with the selected config file and restarts on failure.`,
	// The config file may not exist before install.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(cmd)
		return nil
	},
}

// installServiceCmd represents the service install command
var installServiceCmd = &cobra.Command{
	Use:   "install",
	Short: "Install ypbank as a systemd service",
	Long: `Write a systemd unit for ypbank, creating the config file when missing,
then enable and optionally start the service.

Examples:
  sudo ypbank service install
  sudo ypbank service install --ledger-dir /srv/ypbank --user ypbank --port 9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRoot(); err != nil {
			return err
		}
		path := configPath(cmd)

		var cfg *config.Config
		var err error
		if config.ConfigExists(path) {
			if cfg, err = config.LoadConfig(path); err != nil {
				return err
			}
			cmd.Printf("✅ Loaded existing configuration\n")
		} else {
			ledgerDir := serviceLedgerDir
			if cmd.Flags().Changed("ledger-dir") {
				ledgerDir, _ = cmd.Flags().GetString("ledger-dir")
			}
			if cfg, err = config.BootstrapConfig(path, ledgerDir); err != nil {
				return err
			}
			cmd.Printf("✅ Created new configuration at %s\n", path)
		}

		if cmd.Flags().Changed("ledger-dir") {
			cfg.Ledger.Dir, _ = cmd.Flags().GetString("ledger-dir")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serviceOpts.port
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}

		unit := systemdUnit(cfg, path, serviceOpts.user, serviceOpts.binary)
		if err := os.WriteFile(unitPath, []byte(unit), 0644); err != nil {
			return fmt.Errorf("failed to write unit file: %w", err)
		}
		logger.Info("wrote systemd unit", "path", unitPath)

		if err := runCommand(cmd, "systemctl", "daemon-reload"); err != nil {
			return fmt.Errorf("reload systemd: %w", err)
		}
		if err := runCommand(cmd, "systemctl", "enable", serviceName); err != nil {
			return fmt.Errorf("enable service: %w", err)
		}
		if serviceOpts.start {
			if err := runCommand(cmd, "systemctl", "start", serviceName); err != nil {
				return fmt.Errorf("start service: %w", err)
			}
		}

		cmd.Printf("\n🎉 ypbank service installed\n")
		cmd.Printf("Service: %s\n", serviceName)
		cmd.Printf("Config: %s\n", path)
		cmd.Printf("Ledger: %s\n", cfg.Ledger.Dir)
		cmd.Printf("Port: %d\n", cfg.Server.Port)
		if !serviceOpts.start {
			cmd.Printf("\nTo start the service: sudo systemctl start %s\n", serviceName)
		}
		return nil
	},
}

// systemctlCommand builds a subcommand that runs one systemctl action.
func systemctlCommand(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runCommand(cmd, "systemctl", action, serviceName); err != nil {
				return fmt.Errorf("%s service: %w", action, err)
			}
			return nil
		},
	}
}

// logsCmd represents the service logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show ypbank service logs",
	Long: `Show ypbank service logs using journalctl.

Examples:
  ypbank service logs
  ypbank service logs -f`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		journalArgs := []string{"-u", serviceName}
		if serviceOpts.follow {
			journalArgs = append(journalArgs, "-f")
		}
		if serviceOpts.lines > 0 {
			journalArgs = append(journalArgs, fmt.Sprintf("-n%d", serviceOpts.lines))
		}
		return runCommand(cmd, "journalctl", journalArgs...)
	},
}

// uninstallCmd represents the service uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the ypbank service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRoot(); err != nil {
			return err
		}

		// Already stopped is fine.
		_ = runCommand(cmd, "systemctl", "stop", serviceName)
		if err := runCommand(cmd, "systemctl", "disable", serviceName); err != nil {
			logger.Warn("could not disable service", "error", err)
		}

		if err := os.Remove(unitPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove unit file: %w", err)
		}
		if err := runCommand(cmd, "systemctl", "daemon-reload"); err != nil {
			return fmt.Errorf("reload systemd: %w", err)
		}

		cmd.Printf("✅ ypbank service uninstalled\n")
		cmd.Printf("Note: configuration and ledger files were not removed\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serviceCmd)

	serviceCmd.AddCommand(installServiceCmd)
	serviceCmd.AddCommand(systemctlCommand("start", "Start the ypbank service"))
	serviceCmd.AddCommand(systemctlCommand("stop", "Stop the ypbank service"))
	serviceCmd.AddCommand(systemctlCommand("restart", "Restart the ypbank service"))
	serviceCmd.AddCommand(systemctlCommand("status", "Show ypbank service status"))
	serviceCmd.AddCommand(logsCmd)
	serviceCmd.AddCommand(uninstallCmd)

	flags := installServiceCmd.Flags()
	flags.StringVar(&serviceOpts.user, "user", "ypbank", "User to run the service as")
	flags.StringVar(&serviceOpts.binary, "binary", "/usr/local/bin/ypbank", "Path of the installed ypbank binary")
	flags.IntVar(&serviceOpts.port, "port", 8080, "Port for the service")
	flags.BoolVar(&serviceOpts.start, "start", true, "Start the service after installation")

	logsCmd.Flags().BoolVarP(&serviceOpts.follow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&serviceOpts.lines, "lines", "n", 0, "Number of lines to show")
}

// systemdUnit renders the unit file for a service running "ypbank up".
func systemdUnit(cfg *config.Config, configPath, user, binary string) string {
	return fmt.Sprintf(`[Unit]
Description=YPBank transaction record server
After=network-online.target
Wants=network-online.target

[Service]
User=%s
Group=%s
ExecStart=%s up --config %s
Restart=on-failure
NoNewPrivileges=true
UMask=0077
ReadWritePaths=%s
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, user, user, binary, configPath, cfg.Ledger.Dir, filepath.Dir(configPath))
}

// execCommand runs an external command with its output attached to cmd.
func execCommand(cmd *cobra.Command, name string, args ...string) error {
	c := exec.Command(name, args...)
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	return c.Run()
}
