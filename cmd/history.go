package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous batch runs",
		Long: `Lists batch runs recorded in the history database, newest first. With
--run, prints the outcome of every description in that run.`,
		Example: `  catalogger history --limit 5
  catalogger history --run 3f2b9c1e-...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("no history database configured")
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if runID != "" {
				items, err := store.Items(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					return fmt.Errorf("run %s not found", runID)
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{strconv.Itoa(item.Index), item.Description, string(item.Outcome), item.Notes})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Description", "Outcome", "Notes"},
					rows,
					[]columnAlignment{alignRight},
					colorize,
				))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No batch runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Source,
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Saved),
					strconv.Itoa(run.Noted),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Source", "Total", "Saved", "Noted"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				colorize,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the items of one run")

	return cmd
}
