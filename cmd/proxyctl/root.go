package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proxydeck/internal/config"
	"proxydeck/internal/logging"
	"proxydeck/internal/platform/mtgapi"
)

type globalFlags struct {
	apiDomain string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:   "proxyctl",
		Short: "Build printable proxy decks from plain text decklists",
		Long: `proxyctl reads a decklist ("4 Lightning Bolt" per line), resolves every
card against the card database and downloads one image per card.

Upstream settings come from the same environment variables and .env files
as the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.apiDomain, "api", "", "card API domain (overrides API_DOMAIN)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log upstream activity")

	root.AddCommand(newParseCmd(), newBuildCmd(&g), newCardCmd(&g), newRunCmd())
	return root
}

// setup loads configuration and builds the upstream client for a command.
func (g *globalFlags) setup() (config.Config, *mtgapi.Client, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if g.apiDomain != "" {
		cfg.APIDomain = g.apiDomain
	}

	logger := zap.NewNop()
	if g.verbose {
		if logger, err = logging.New("debug"); err != nil {
			return config.Config{}, nil, nil, fmt.Errorf("init logger: %w", err)
		}
	}

	client := mtgapi.NewClient(mtgapi.Config{
		Domain:   cfg.APIDomain,
		Version:  cfg.APIVersion,
		Resource: cfg.APIResource,
		Timeout:  cfg.APIRequestTimeout,
		RPS:      cfg.APIRPS,
	})
	return cfg, client, logger, nil
}
