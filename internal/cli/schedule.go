package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hyperpipe/pkg/config"
	hpio "github.com/matzehuels/hyperpipe/pkg/io"
	"github.com/matzehuels/hyperpipe/pkg/pipeline"
)

type scheduleFlags struct {
	maxLoad      float64
	maxBandwidth float64
	floor        int
	bias         float64
	output       string
	noCache      bool
	refresh      bool
	verify       bool
}

func (c *CLI) scheduleCommand() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "schedule <graph.json>...",
		Short: "Cluster graphs into pipelined schedules",
		Long: `Schedule reads one or more JSON graph files and writes a schedule document for each.

With a single input and no --output the schedule is written to stdout. Several
inputs are scheduled concurrently; each schedule is written next to its input
as <name>.schedule.json, or into the --output directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runSchedule(cmd, args, scheduleOptions(cmd, cfg, f), cfg, f)
		},
	}

	d := config.Default()
	cmd.Flags().Float64Var(&f.maxLoad, "max-load", d.Constraints.MaxLoad, "maximum summed node weight per cluster")
	cmd.Flags().Float64Var(&f.maxBandwidth, "max-bandwidth", d.Constraints.MaxBandwidth, "maximum boundary edge weight per cluster")
	cmd.Flags().IntVar(&f.floor, "floor", d.Pipeliner.Floor, "lowest level that gets clustered")
	cmd.Flags().Float64Var(&f.bias, "bias", d.Pipeliner.LowFanoutBias, "low-fanout bias of the attraction score (< 1)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (one input) or directory (several inputs)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the schedule cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if a cached schedule exists")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "validate the schedule after every phase")
	return cmd
}

// scheduleOptions starts from the config file and applies the flags the
// user set explicitly.
func scheduleOptions(cmd *cobra.Command, cfg config.Config, f scheduleFlags) pipeline.Options {
	opts := cfg.PipelineOptions()
	opts.Refresh = f.refresh
	opts.Verify = f.verify
	flags := cmd.Flags()
	if flags.Changed("max-load") {
		opts.Constraints.MaxLoad = f.maxLoad
	}
	if flags.Changed("max-bandwidth") {
		opts.Constraints.MaxBandwidth = f.maxBandwidth
	}
	if flags.Changed("floor") {
		opts.Floor = f.floor
	}
	if flags.Changed("bias") {
		opts.LowFanoutBias = f.bias
	}
	return opts
}

func (c *CLI) runSchedule(cmd *cobra.Command, paths []string, opts pipeline.Options, cfg config.Config, f scheduleFlags) error {
	ctx := cmd.Context()
	store, err := c.openCache(ctx, cfg, f.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	defer runner.Close()

	prog := newProgress(c.Logger)
	results := make([]*pipeline.Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			graph, err := hpio.ImportJSON(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := runner.Execute(gctx, graph, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(paths) == 1 && f.output == "" {
		_, err := cmd.OutOrStdout().Write(results[0].Data)
		return err
	}

	targets, err := outputPaths(paths, f.output)
	if err != nil {
		return err
	}
	for i, res := range results {
		if err := os.WriteFile(targets[i], res.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", targets[i], err)
		}
		printSuccess("%s", paths[i])
		printStats(res.Stats.Nodes, res.Stats.Levels, res.Stats.Units, res.CacheInfo.Hit)
		printFile(targets[i])
	}
	prog.done(fmt.Sprintf("Scheduled %d graph(s)", len(paths)))
	return nil
}

// outputPaths maps each input to its schedule file.
func outputPaths(inputs []string, output string) ([]string, error) {
	if len(inputs) == 1 && output != "" {
		return []string{output}, nil
	}
	if output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	out := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".schedule.json"
		dir := filepath.Dir(in)
		if output != "" {
			dir = output
		}
		out[i] = filepath.Join(dir, name)
		if prev, dup := seen[out[i]]; dup {
			return nil, fmt.Errorf("inputs %s and %s would both write %s", prev, in, out[i])
		}
		seen[out[i]] = in
	}
	return out, nil
}
