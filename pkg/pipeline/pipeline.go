// Package pipeline runs the scheduling pipeline behind a result cache.
//
// Both the CLI and the HTTP server go through a [Runner]: it hashes the
// input graph, looks the schedule up in the cache, and on a miss runs the
// pipeliner, encodes the schedule document and stores it.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, g, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Data)
package pipeline

import (
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hyperpipe/pkg/cache"
	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/io"
	"github.com/matzehuels/hyperpipe/pkg/pipeliner"
)

// Default constraints, shared by the CLI flags and the HTTP API.
const (
	DefaultMaxLoad      = 8.0
	DefaultMaxBandwidth = 16.0
)

// Options controls one pipeline execution.
type Options struct {
	Constraints pipeliner.Constraints

	// Floor is the lowest clustered level; zero means [pipeliner.DefaultFloor].
	Floor int

	// LowFanoutBias is used as given, including zero.
	LowFanoutBias float64

	// Refresh skips the cache lookup but still stores the new result.
	Refresh bool

	// Verify validates the schedule after every phase.
	Verify bool

	// Logger overrides the runner's logger for this execution.
	Logger *log.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Constraints:   pipeliner.Constraints{MaxLoad: DefaultMaxLoad, MaxBandwidth: DefaultMaxBandwidth},
		Floor:         pipeliner.DefaultFloor,
		LowFanoutBias: pipeliner.DefaultLowFanoutBias,
	}
}

// ValidateAndSetDefaults fills zero fields and checks the rest.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Floor == 0 {
		o.Floor = pipeliner.DefaultFloor
	}
	if o.Floor < 1 {
		return errs.New(errs.ErrCodeInvalidInput, "floor must be at least 1, got %d", o.Floor)
	}
	if b := o.LowFanoutBias; math.IsNaN(b) || math.IsInf(b, 0) || b >= 1 {
		return errs.New(errs.ErrCodeInvalidInput, "low fanout bias must be finite and below 1, got %v", b)
	}
	return o.Constraints.Validate()
}

// KeyOpts returns the cache key inputs of o.
func (o Options) KeyOpts() cache.ScheduleKeyOpts {
	return cache.ScheduleKeyOpts{
		MaxLoad:       o.Constraints.MaxLoad,
		MaxBandwidth:  o.Constraints.MaxBandwidth,
		Floor:         o.Floor,
		LowFanoutBias: o.LowFanoutBias,
	}
}

func (o Options) pipelinerOptions() []pipeliner.Option {
	return []pipeliner.Option{
		pipeliner.WithFloor(o.Floor),
		pipeliner.WithLowFanoutBias(o.LowFanoutBias),
		pipeliner.WithVerify(o.Verify),
		pipeliner.WithLogger(o.Logger),
	}
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	// Document is the schedule; Data is its indented JSON encoding.
	Document *io.Document
	Data     []byte

	// GraphHash is the SHA-256 of the canonical input graph encoding.
	GraphHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats describes the input and the computed schedule. Merges and
// ScheduleTime are zero on a cache hit.
type Stats struct {
	Nodes        int
	Edges        int
	Levels       int
	Units        int
	Merges       int
	ScheduleTime time.Duration
}

// CacheInfo reports whether the schedule came from the cache.
type CacheInfo struct {
	Hit bool
	Key string
}
