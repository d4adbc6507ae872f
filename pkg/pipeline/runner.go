package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hyperpipe/pkg/cache"
	"github.com/matzehuels/hyperpipe/pkg/hypergraph"
	"github.com/matzehuels/hyperpipe/pkg/io"
	"github.com/matzehuels/hyperpipe/pkg/observability"
	"github.com/matzehuels/hyperpipe/pkg/pipeliner"
)

const keyTypeSchedule = "schedule"

// Runner executes the pipeline with caching. It keeps no per-execution
// state, so one Runner may serve concurrent executions on distinct graphs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of stored schedules; zero means
	// [cache.TTLSchedule].
	TTL time.Duration
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer] and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute schedules g. On a cache miss g is rewritten in place by the
// pipeliner; on a hit it is left untouched.
func (r *Runner) Execute(ctx context.Context, g *hypergraph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graphData, err := io.Marshal(g)
	if err != nil {
		return nil, err
	}
	result := &Result{
		GraphHash: cache.Hash(graphData),
		Stats:     Stats{Nodes: g.Len(), Edges: len(g.Edges())},
	}
	key := r.Keyer.ScheduleKey(result.GraphHash, opts.KeyOpts())
	result.CacheInfo.Key = key

	if !opts.Refresh {
		if doc, data, ok := r.lookup(ctx, key); ok {
			result.Document, result.Data = doc, data
			result.Stats.Levels, result.Stats.Units = len(doc.Levels), doc.Units()
			result.CacheInfo.Hit = true
			opts.Logger.Debug("schedule from cache", "hash", result.GraphHash[:12])
			return result, nil
		}
	}

	observability.Scheduler().OnScheduleStart(ctx, result.Stats.Nodes)
	p, err := pipeliner.New(g, opts.Constraints, opts.pipelinerOptions()...)
	if err != nil {
		return nil, err
	}
	s, err := p.Run()
	st := p.Stats()
	observability.Scheduler().OnScheduleComplete(ctx, observability.ScheduleStats{
		Nodes:    result.Stats.Nodes,
		Units:    st.Units,
		Levels:   st.Levels,
		Merges:   st.Merges,
		Duration: st.Duration,
	}, err)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}

	doc := io.NewDocument(s)
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, err
	}
	result.Document, result.Data = doc, buf.Bytes()
	result.Stats.Levels, result.Stats.Units = st.Levels, st.Units
	result.Stats.Merges, result.Stats.ScheduleTime = st.Merges, st.Duration

	opts.Logger.Info("scheduled graph",
		"nodes", result.Stats.Nodes,
		"levels", st.Levels,
		"units", st.Units,
		"duration", st.Duration)

	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLSchedule
	}
	if err := r.Cache.Set(ctx, key, result.Data, ttl); err != nil {
		opts.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyTypeSchedule, len(result.Data))
	}
	return result, nil
}

// lookup returns a cached document. Backend errors and undecodable entries
// count as misses.
func (r *Runner) lookup(ctx context.Context, key string) (*io.Document, []byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeSchedule)
		return nil, nil, false
	}
	doc, err := io.ReadDocument(bytes.NewReader(data))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeSchedule)
		return nil, nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeSchedule)
	return doc, data, true
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
