// Root command for the pantry CLI.
package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// Set by PersistentPreRunE for all subcommands.
var (
	settings  settingsFile
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "pantry",
	Short:         "Pantry stores pastas in a local SQLite file",
	Version:       pantry.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return systemError(err)
		}

		settings, err = loadConfig(configDir)
		if err != nil {
			return systemError(err)
		}

		logger, logCloser, err = newLogger(settings)
		if err != nil {
			return userError(err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

// closeLog releases the log file. cobra skips PersistentPostRunE when RunE
// fails, so main calls it again after Execute.
func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/pantry)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.pantry-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// resolveDataDir applies --data-dir > config.yaml data_dir > PANTRY_DATA_DIR >
// $(CWD)/.pantry-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, settings.DataDir)
}

// resolveConfigDir applies --config-dir > PANTRY_CONFIG_DIR > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
