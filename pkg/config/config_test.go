package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	errs "github.com/matzehuels/hyperpipe/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hyperpipe.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Pipeliner.Floor != 3 || cfg.Pipeliner.LowFanoutBias != 0.6 {
		t.Errorf("pipeliner defaults = %+v", cfg.Pipeliner)
	}
	if cfg.Cache.Backend != BackendFile || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoad_Overlay(t *testing.T) {
	path := writeConfig(t, `
[constraints]
max_load = 4.5

[pipeliner]
floor = 2

[cache]
backend = "redis"
ttl = "90m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Constraints.MaxLoad != 4.5 || cfg.Constraints.MaxBandwidth != 16 {
		t.Errorf("constraints = %+v, want max_load overridden only", cfg.Constraints)
	}
	if cfg.Pipeliner.Floor != 2 || cfg.Pipeliner.LowFanoutBias != 0.6 {
		t.Errorf("pipeliner = %+v", cfg.Pipeliner)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL.Duration != 90*time.Minute || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	opts := cfg.PipelineOptions()
	if opts.Floor != 2 || opts.Constraints.MaxLoad != 4.5 {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("PipelineOptions() invalid: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errs.Code
	}{
		{"syntax", "[constraints\n", errs.ErrCodeInvalidConfig},
		{"unknown key", "[pipeliner]\ndepth = 2\n", errs.ErrCodeInvalidConfig},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errs.ErrCodeInvalidConfig},
		{"zero load", "[constraints]\nmax_load = 0.0\n", errs.ErrCodeInvalidConfig},
		{"floor", "[pipeliner]\nfloor = 0\n", errs.ErrCodeInvalidConfig},
		{"bias", "[pipeliner]\nlow_fanout_bias = 1.5\n", errs.ErrCodeInvalidConfig},
		{"backend", "[cache]\nbackend = \"memcached\"\n", errs.ErrCodeInvalidConfig},
		{"redis addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\"\n", errs.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %s", err, errs.ErrCodeFileNotFound)
	}
}
