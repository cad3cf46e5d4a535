package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtthwcarey/catalogger/internal/catalog"
)

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <output>",
		Short: "Export the catalog to Parquet or YAML",
		Long: `Writes every catalog row to a Parquet or YAML file. All columns are
exported as strings. The format is taken from --format, or from the output
file extension when --format is not set.`,
		Example: `  catalogger export data/catalog.parquet
  catalogger export --format yaml data/catalog.out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			f := format
			if f == "" {
				f = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			}

			var (
				n   int
				err error
			)
			switch f {
			case "parquet":
				n, err = catalog.ExportParquet(a.cfg.CatalogFile, out)
			case "yaml", "yml":
				n, err = catalog.ExportYAML(a.cfg.CatalogFile, out)
			default:
				return fmt.Errorf("unsupported export format %q (supported: parquet, yaml)", f)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows from %s to %s\n", n, a.cfg.CatalogFile, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format (parquet, yaml)")

	return cmd
}
