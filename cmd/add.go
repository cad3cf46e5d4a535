package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description...>",
		Short: "Catalog a single book description",
		Long: `Extracts the details of one book description, looks up its metadata and
appends it to the catalog. The arguments are joined into one description.`,
		Example: `  catalogger add "Dune by Frank Herbert, paperback, 1990"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newPipeline(cmd.Context())
			if err != nil {
				return err
			}

			result := p.ProcessOne(cmd.Context(), 0, strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if !result.Saved {
				return fmt.Errorf("book not added: %s", result.Notes)
			}

			fmt.Fprintf(out, "Book details saved to %s\n", a.cfg.CatalogFile)
			if result.NeedsNote() {
				fmt.Fprintf(out, "Note: %s\n", result.Notes)
			}
			rows := [][]string{}
			for _, key := range []string{"Title", "Author", "Publisher", "PublishedDate", "ISBN"} {
				if v, ok := result.Record[key]; ok {
					rows = append(rows, []string{key, v})
				}
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil, shouldColorize(out)))
			return nil
		},
	}
}
