package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/intern"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cc, err := cfg.CacheSettings()
	require.NoError(t, err)
	if diff := cmp.Diff(cache.DefaultConfig(), cc); diff != "" {
		t.Errorf("cache settings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, intern.DefaultConfig(), cfg.PoolSettings())

	interval, err := cfg.Memory.Interval()
	require.NoError(t, err)
	assert.Equal(t, cache.DefaultSweepInterval, interval)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Cache.FastCacheSize = -1
	cfg.Memory.MaxPoolSize = -5
	cfg.Cache.CacheTTL = "soon"
	cfg.Memory.CleanupInterval = "0s"
	cfg.Simplify.MaxIterations = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"cache.fast_cache_size",
		"memory.max_pool_size",
		"cache.cache_ttl",
		"memory.cleanup_interval",
		"simplify.max_iterations",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestTTL(t *testing.T) {
	tests := []struct {
		ttl     string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"1h", time.Hour, false},
		{"250ms", 250 * time.Millisecond, false},
		{"-1s", 0, true},
		{"forever", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.ttl, func(t *testing.T) {
			got, err := CacheConfig{CacheTTL: tt.ttl}.TTL()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)

	want := Config{
		Cache: CacheConfig{
			Enabled:           true,
			FastCacheSize:     64,
			ExactCacheSize:    32,
			SymbolicCacheSize: 16,
			CacheTTL:          "30m",
		},
		Memory: MemoryConfig{
			EnableSharing:   false,
			MaxPoolSize:     128,
			CleanupInterval: "90s",
		},
		Simplify: SimplifyConfig{MaxIterations: 8},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := ParseYAML([]byte("cache:\n  fast_cache_size: 10\n"))
	require.NoError(t, err)

	want := Default()
	want.Cache.FastCacheSize = 10
	assert.Equal(t, want, cfg)

	cfg, err = ParseYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseYAMLRejects(t *testing.T) {
	_, err := ParseYAML([]byte("cache:\n  fast_size: 10\n"))
	assert.Error(t, err, "unknown key")

	_, err = ParseYAML([]byte("cache:\n  fast_cache_size: -3\n"))
	assert.ErrorContains(t, err, "fast_cache_size")
}

func TestLoadCUE(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "partial.cue"))
	require.NoError(t, err)

	want := Default()
	want.Cache.FastCacheSize = 64
	want.Cache.CacheTTL = ""
	want.Simplify.MaxIterations = 8
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSONThroughCUE(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "partial.json"))
	require.NoError(t, err)

	want := Default()
	want.Memory.MaxPoolSize = 10
	assert.Equal(t, want, cfg)
}

func TestParseCUEDefaultsMatchDefault(t *testing.T) {
	cfg, err := ParseCUE([]byte(""), "empty.cue")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseCUERejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"negative size", "cache: exact_cache_size: -1"},
		{"zero iterations", "simplify: max_iterations: 0"},
		{"unknown field", "cache: colour: \"blue\""},
		{"wrong type", "memory: enable_sharing: \"yes\""},
		{"syntax", "cache: {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCUE([]byte(tt.src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
