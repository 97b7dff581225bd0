package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"proxydeck/internal/card"
)

func newCardCmd(g *globalFlags) *cobra.Command {
	var (
		oldest bool
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "card [name]",
		Short: "Show the printing a build would use for a card",
		Long: `Card looks up a card by exact name and prints the newest printing that
has an image, or the oldest with --oldest. --all lists every printing,
newest first.

Examples:
  proxyctl card "Lightning Bolt"
  proxyctl card --oldest Ponder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, _, err := g.setup()
			if err != nil {
				return err
			}
			resolver := card.NewResolver(client, 1)

			if all {
				printings, err := resolver.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(printings) == 0 {
					return fmt.Errorf("%w: %q", card.ErrNotFound, args[0])
				}
				for _, p := range card.SortNewestFirst(printings) {
					printPrinting(cmd, p)
				}
				return nil
			}

			policy := card.PolicyNewest
			if oldest {
				policy = card.PolicyOldest
			}
			p, err := resolver.Choose(cmd.Context(), args[0], policy)
			if err != nil {
				return err
			}
			printPrinting(cmd, p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&oldest, "oldest", false, "pick the oldest printing instead of the newest")
	cmd.Flags().BoolVar(&all, "all", false, "list every printing")
	return cmd
}

func printPrinting(cmd *cobra.Command, p card.Printing) {
	w := cmd.OutOrStdout()
	label := color.New(color.FgCyan)
	d := card.NewDetail(p)

	label.Fprint(w, "Card: ")
	fmt.Fprintln(w, d.Name)
	label.Fprint(w, "Set:  ")
	fmt.Fprintf(w, "%s (%s)\n", d.SetName, d.Set)
	label.Fprint(w, "ID:   ")
	fmt.Fprintln(w, p.Key())
	label.Fprint(w, "URL:  ")
	fmt.Fprintln(w, d.ImageURL)
}
