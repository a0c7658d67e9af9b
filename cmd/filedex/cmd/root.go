// Package cmd provides the CLI commands for filedex.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filedex/filedex/internal/config"
	"github.com/filedex/filedex/internal/logging"
	"github.com/filedex/filedex/internal/session"
	"github.com/filedex/filedex/internal/shell"
	"github.com/filedex/filedex/pkg/version"
)

// NewRootCmd creates the root command for the filedex CLI.
func NewRootCmd() *cobra.Command {
	var dataDir string
	var configPath string
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "filedex",
		Short: "Transactional full-text index over a curated set of files",
		Long: `filedex maintains a searchable full-text index of files you add to it,
skipping files that have not changed since they were last indexed.

Mutations are staged in a session and become visible only on commit;
a pending session can be discarded with rollback. Commands are read
line by line from standard input.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runShell(dataDir, configPath, debugMode)
		},
	}

	cmd.SetVersionTemplate("filedex version {{.Version}}\n")

	cmd.Flags().StringVar(&dataDir, "dir", "", "Data directory for the index and state store (required unless set in config)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to an optional YAML config file")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging, mirrored to stderr")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

// runShell wires configuration, logging and the session manager, then
// hands control to the interactive shell. Any error returned here is a
// fatal startup failure: the command loop never starts.
func runShell(dataDir, configPath string, debugMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if debugMode {
		cfg.Logging.Level = "debug"
		cfg.Logging.WriteToStderr = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, cleanup, err := logging.Setup(cfg.DataDir, cfg.Logging)
	if err != nil {
		return err
	}
	defer cleanup()

	mgr, err := session.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = mgr.Close() }()

	return shell.New(mgr, os.Stdout, os.Stderr, logger).Run(os.Stdin)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
