// Package config loads hyperpipe settings from a TOML file.
//
// Every field has a default, so a missing file or a partial file is fine:
// [Load] starts from [Default] and overlays what the file sets.
//
//	[constraints]
//	max_load = 8.0
//	max_bandwidth = 16.0
//
//	[pipeliner]
//	floor = 3
//	low_fanout_bias = 0.6
//
//	[cache]
//	backend = "file"   # file | redis | none
//	dir = ""           # empty means the user cache directory
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
	"github.com/matzehuels/hyperpipe/pkg/pipeline"
	"github.com/matzehuels/hyperpipe/pkg/pipeliner"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full settings tree.
type Config struct {
	Constraints pipeliner.Constraints `toml:"constraints"`
	Pipeliner   Pipeliner             `toml:"pipeliner"`
	Cache       Cache                 `toml:"cache"`
	Server      Server                `toml:"server"`
}

// Pipeliner holds the clustering tunables.
type Pipeliner struct {
	Floor         int     `toml:"floor"`
	LowFanoutBias float64 `toml:"low_fanout_bias"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("24h", "90m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Constraints: pipeliner.Constraints{MaxLoad: 8, MaxBandwidth: 16},
		Pipeliner: Pipeliner{
			Floor:         pipeliner.DefaultFloor,
			LowFanoutBias: pipeliner.DefaultLowFanoutBias,
		},
		Cache: Cache{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the TOML file at path over [Default] and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errs.New(errs.ErrCodeInvalidConfig, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Constraints.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "constraints")
	}
	if c.Pipeliner.Floor < 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "pipeliner.floor must be at least 1, got %d", c.Pipeliner.Floor)
	}
	if b := c.Pipeliner.LowFanoutBias; math.IsNaN(b) || math.IsInf(b, 0) || b >= 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "pipeliner.low_fanout_bias must be finite and below 1, got %v", b)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// PipelineOptions returns the pipeline options the constraints and
// pipeliner sections describe.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Constraints:   c.Constraints,
		Floor:         c.Pipeliner.Floor,
		LowFanoutBias: c.Pipeliner.LowFanoutBias,
	}
}
