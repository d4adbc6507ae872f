package pipeliner

import (
	errs "github.com/matzehuels/hyperpipe/pkg/errors"
)

// Constraints caps the clusters a pipeliner may form.
type Constraints struct {
	// MaxLoad caps the summed node weight of any cluster.
	MaxLoad float64 `toml:"max_load" json:"max_load"`

	// MaxBandwidth caps the summed weight of the distinct edges crossing a
	// cluster's boundary.
	MaxBandwidth float64 `toml:"max_bandwidth" json:"max_bandwidth"`
}

// Validate checks that both caps are positive and finite.
func (c Constraints) Validate() error {
	if err := errs.ValidateCap("max_load", c.MaxLoad); err != nil {
		return err
	}
	return errs.ValidateCap("max_bandwidth", c.MaxBandwidth)
}
