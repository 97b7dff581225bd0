package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"proxydeck/internal/card"
	"proxydeck/internal/decklist"
	"proxydeck/internal/imagefetch"
	"proxydeck/internal/proxy"
	"proxydeck/internal/storage"
)

// LedgerFile is the SQLite run ledger kept in the output directory.
const LedgerFile = "ledger.db"

var errIncomplete = errors.New("deck is incomplete")

func newBuildCmd(g *globalFlags) *cobra.Command {
	var (
		out         string
		policy      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "build [decklist]",
		Short: "Resolve a decklist and download one image per card",
		Long: `Build resolves every card of a decklist and stores the normalized decklist
and the images under <out>/<upload id>/. Every build is recorded in
<out>/ledger.db.

The command fails when any card could not be resolved or downloaded; the
images that were fetched are kept.

Examples:
  proxyctl build deck.txt
  proxyctl build --out ./proxies --policy oldest deck.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, logger, err := g.setup()
			if err != nil {
				return err
			}
			p := cfg.PrintingPolicy
			if policy != "" {
				p = policy
			}
			pol, err := card.ParsePolicy(p)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = cfg.FetchConcurrency
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			repo, err := proxy.OpenSQLite(cmd.Context(), filepath.Join(out, LedgerFile))
			if err != nil {
				return err
			}
			defer repo.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := proxy.NewService(
				storage.NewAllocator(out),
				decklist.FileIngestor{},
				card.NewResolver(client, concurrency),
				imagefetch.NewFetcher(client),
				repo,
				proxy.Config{Concurrency: concurrency, Policy: pol},
				logger,
			)

			res, err := svc.Build(cmd.Context(), deckName(args[0]), f)
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "proxies", "output directory")
	cmd.Flags().StringVar(&policy, "policy", "", "printing policy: newest or oldest (overrides PRINTING_POLICY)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "parallel upstream requests (overrides FETCH_CONCURRENCY)")
	return cmd
}

func report(cmd *cobra.Command, res *proxy.Result) error {
	w := cmd.OutOrStdout()
	green := color.New(color.FgGreen)

	fmt.Fprintf(w, "Upload %s: %s\n", res.UploadID, res.Deck.Name)
	for _, c := range res.Deck.Cards {
		green.Fprintf(w, "  + %d %s", c.Quantity, c.Name)
		fmt.Fprintf(w, " -> %s\n", c.ImagePath)
	}
	for _, f := range res.Failures {
		printFailure(cmd, f.Card.Name, f.Card.Quantity, string(f.Reason), f.Message)
	}

	if !res.Complete() {
		return fmt.Errorf("%w: %d of %d cards failed", errIncomplete, len(res.Failures), res.Requested)
	}
	green.Fprintf(w, "All %d cards fetched\n", res.Requested)
	return nil
}
