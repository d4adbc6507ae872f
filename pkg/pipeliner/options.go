package pipeliner

import (
	"math"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
)

const (
	// DefaultFloor is the lowest level that gets clustered.
	DefaultFloor = 3

	// DefaultLowFanoutBias is subtracted from an edge's fanout when scoring
	// attraction, favoring edges with few sinks.
	DefaultLowFanoutBias = 0.6
)

// Option configures a [Pipeliner].
type Option func(*Pipeliner) error

// WithFloor sets the lowest level that gets clustered. Levels below it are
// left as they are until the final packing.
func WithFloor(level int) Option {
	return func(p *Pipeliner) error {
		if level < 1 {
			return errs.New(errs.ErrCodeInvalidInput, "floor must be at least 1, got %d", level)
		}
		p.floor = level
		return nil
	}
}

// WithLowFanoutBias sets the fanout bias used in attraction scores. It must
// be finite and below 1 so that every score denominator stays positive.
func WithLowFanoutBias(bias float64) Option {
	return func(p *Pipeliner) error {
		if math.IsNaN(bias) || math.IsInf(bias, 0) || bias >= 1 {
			return errs.New(errs.ErrCodeInvalidInput, "low fanout bias must be finite and below 1, got %v", bias)
		}
		p.bias = bias
		return nil
	}
}

// WithLogger sets the logger for progress output. A nil logger is ignored.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeliner) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithVerify makes Run validate the schedule after every phase.
func WithVerify(verify bool) Option {
	return func(p *Pipeliner) error {
		p.verify = verify
		return nil
	}
}
