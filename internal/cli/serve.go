package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperpipe/internal/server"
	"github.com/matzehuels/hyperpipe/pkg/cache"
	"github.com/matzehuels/hyperpipe/pkg/pipeline"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scheduling API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			store, err := c.openCache(cmd.Context(), cfg, noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, "server:"), c.Logger)
			runner.TTL = cfg.Cache.TTL.Duration
			defer runner.Close()

			return server.New(runner, cfg.PipelineOptions(), c.Logger).ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the schedule cache")
	return cmd
}
