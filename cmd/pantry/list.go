// List and show commands for the pantry CLI.
package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pastas, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		pastas, err := store.ReadAll(cmd.Context())
		if err != nil {
			return err
		}

		if flagJSON {
			return writeJSON(cmd.OutOrStdout(), pastas)
		}
		return writeTable(cmd.OutOrStdout(), pastas, time.Now())
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Display one pasta with full details",
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
		pastas, err := store.ReadAll(cmd.Context())
		if err != nil {
			return err
		}

		p, err := findPasta(pastas, id)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), p)
	},
}

// writeTable renders pastas as aligned columns with humanized sizes and ages
// relative to now.
func writeTable(out io.Writer, pastas []types.Pasta, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tSIZE\tCREATED\tEXPIRES\tREADS")
	for i := range pastas {
		p := &pastas[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			displayTitle(p),
			p.PastaType,
			humanize.IBytes(pastaSize(p)),
			humanize.RelTime(time.Unix(p.Created, 0), now, "ago", "from now"),
			displayExpiration(p.Expiration, now),
			humanize.Comma(p.ReadCount),
		)
	}
	return w.Flush()
}

func displayTitle(p *types.Pasta) string {
	if t := p.TitleOrEmpty(); t != "" {
		return t
	}
	if p.HasFile() {
		return p.File.Name
	}
	return "-"
}

// pastaSize is the attachment size when there is one, else the content length.
func pastaSize(p *types.Pasta) uint64 {
	if p.HasFile() && p.File.Size > 0 {
		return uint64(p.File.Size)
	}
	return uint64(len(p.Content))
}

func displayExpiration(expiration int64, now time.Time) string {
	if expiration == 0 {
		return "never"
	}
	return humanize.RelTime(time.Unix(expiration, 0), now, "ago", "from now")
}
