package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"proxydeck/internal/proxy"
)

func newRunCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "run [upload id]",
		Short: "Show the ledger record of a previous build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := proxy.OpenSQLite(cmd.Context(), filepath.Join(out, LedgerFile))
			if err != nil {
				return err
			}
			defer repo.Close()

			run, err := repo.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			status := color.New(color.FgGreen)
			if run.Status != proxy.StatusCompleted {
				status = color.New(color.FgYellow)
			}
			fmt.Fprintf(w, "Upload %s: %s ", run.ID, run.DeckName)
			status.Fprintln(w, run.Status)
			fmt.Fprintf(w, "  cards: %d total, %d resolved, %d images\n", run.CardsTotal, run.CardsResolved, run.ImagesFetched)
			fmt.Fprintf(w, "  started: %s\n", run.StartedAt.Format(time.RFC3339))
			if run.FinishedAt != nil {
				fmt.Fprintf(w, "  took: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
			}
			if run.Error != "" {
				fmt.Fprintf(w, "  error: %s\n", run.Error)
			}
			for _, f := range run.Failures {
				printFailure(cmd, f.Card.Name, f.Card.Quantity, string(f.Reason), f.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "proxies", "output directory holding the ledger")
	return cmd
}
