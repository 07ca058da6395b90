// Add, update and delete commands for the pantry CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Insert a pasta read as JSON from a file or stdin",
	Long: `Add inserts one pasta. The pasta is read as a JSON object from the given
file, or from stdin when no file (or "-") is given. The id must be unused.

Example:
  echo '{"id":1,"content":"hi","extension":"txt","created":1700000000,"pasta_type":"text"}' | pantry add`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readPasta(firstArg(args), cmd.InOrStdin())
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Insert(cmd.Context(), p); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added pasta %d\n", p.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [file]",
	Short: "Replace a stored pasta with one read as JSON from a file or stdin",
	Long: `Update overwrites every field of the stored pasta whose id matches the
JSON object read from the given file or stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readPasta(firstArg(args), cmd.InOrStdin())
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		found, err := store.Update(cmd.Context(), p)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: id %d", types.ErrNotFound, p.ID)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated pasta %d\n", p.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a pasta by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		found, err := store.DeleteByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: id %d", types.ErrNotFound, id)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted pasta %d\n", id)
		return nil
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
