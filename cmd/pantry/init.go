// Init and migrate commands for the pantry CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and an empty pasta store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE has already written config.yaml if it was missing.
		configDir, err := resolveConfigDir()
		if err != nil {
			return systemError(err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(cmd.Context()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Pantry initialized successfully")
		fmt.Fprintln(out, "  config:", configDir)
		fmt.Fprintln(out, "  data:  ", store.Path())
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring an existing store up to the current schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date:", store.Path())
		return nil
	},
}
