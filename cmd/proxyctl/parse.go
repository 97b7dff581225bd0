package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"proxydeck/internal/decklist"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [decklist]",
		Short: "Print the normalized form of a decklist",
		Long: `Parse reads a decklist and prints the lines that would be used for a
build, one "<quantity> <name>" per line. Malformed lines are dropped.

Examples:
  proxyctl parse deck.txt
  proxyctl parse deck.txt > clean.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			deck, err := decklist.Ingest(deckName(args[0]), f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			color.New(color.FgCyan).Fprintf(cmd.ErrOrStderr(), "%d distinct cards, %d copies\n", len(deck.Cards), deck.Total())
			return nil
		},
	}
}

func deckName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printFailure(cmd *cobra.Command, name string, quantity int, reason, message string) {
	red := color.New(color.FgRed)
	red.Fprintf(cmd.OutOrStdout(), "  x %d %s", quantity, name)
	fmt.Fprintf(cmd.OutOrStdout(), " (%s: %s)\n", reason, message)
}
