// Package cache stores encoded schedules keyed by graph content and
// scheduling options.
//
// Three backends implement [Cache]:
//   - [FileCache] keeps one JSON file per entry under a directory (CLI use)
//   - [RedisCache] shares entries between server replicas
//   - [NullCache] disables caching
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the options so that any
// change to the constraints or tunables yields a different key;
// [ScopedKeyer] prefixes keys to isolate namespaces.
package cache

import (
	"context"
	"time"
)

// TTLSchedule is the default lifetime of a cached schedule.
const TTLSchedule = 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ScheduleKeyOpts are the inputs besides the graph that determine a
// schedule.
type ScheduleKeyOpts struct {
	MaxLoad       float64 `json:"max_load"`
	MaxBandwidth  float64 `json:"max_bandwidth"`
	Floor         int     `json:"floor"`
	LowFanoutBias float64 `json:"low_fanout_bias"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ScheduleKey returns the key of the schedule computed for the graph
	// whose canonical encoding hashes to graphHash.
	ScheduleKey(graphHash string, opts ScheduleKeyOpts) string
}

// DefaultKeyer produces "schedule:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScheduleKey implements [Keyer].
func (DefaultKeyer) ScheduleKey(graphHash string, opts ScheduleKeyOpts) string {
	return hashKey("schedule", graphHash, opts)
}
