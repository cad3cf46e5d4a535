package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mtthwcarey/catalogger/internal/pipeline"
)

func newBatchCmd(a *app) *cobra.Command {
	var showItems bool

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Catalog every description in a text file",
		Long: `Processes a text file with one book description per line. Blank lines are
skipped. The notes file is reset at the start of the run and receives one
block for every description that needs manual review.`,
		Example: `  # Process a batch file
  catalogger batch data/input.txt

  # Show the outcome of every line
  catalogger batch data/input.txt --items`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := a.newRunner(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := runner.Run(cmd.Context(), args[0])
			if len(summary.Results) > 0 {
				printSummary(cmd, summary, showItems)
				fmt.Fprintf(cmd.OutOrStdout(), "Notes written to %s\n", a.cfg.NotesFile)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&showItems, "items", false, "Print the outcome of every description")

	return cmd
}

func printSummary(cmd *cobra.Command, summary pipeline.Summary, showItems bool) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	counts := summary.Counts()
	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)

	rows := make([][]string, 0, len(outcomes)+1)
	for _, outcome := range outcomes {
		rows = append(rows, []string{outcome, strconv.Itoa(counts[pipeline.Outcome(outcome)])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(len(summary.Results))})
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight}, colorize))

	if !showItems {
		return
	}
	items := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		items = append(items, []string{strconv.Itoa(r.Index), pipeline.Preview(r.Description), string(r.Outcome), r.Notes})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Description", "Outcome", "Notes"},
		items,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
		colorize,
	))
}
