package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/engine"
	"github.com/roach88/symcore/internal/intern"
)

func intp(n int) *int { return &n }

func sampleResult() *Result {
	r := NewResult()
	r.Final = engine.Snapshot{
		Cache: cache.Stats{FastHits: 4, FastMisses: 1, ExactHits: 2, ExactMisses: 3, SymbolicHits: 1, SymbolicMisses: 5},
		Usage: cache.Usage{FastUsage: 1, ExactUsage: 2, SymbolicUsage: 3},
		Memory: intern.Stats{
			Hits:   6,
			Pooled: 2,
		},
	}
	r.Journaled = 2
	return r
}

func TestObserve(t *testing.T) {
	r := sampleResult()
	tests := []struct {
		a    Assertion
		want int
	}{
		{Assertion{Type: AssertCacheHits, Tier: "fast"}, 4},
		{Assertion{Type: AssertCacheHits, Tier: "exact"}, 2},
		{Assertion{Type: AssertCacheHits, Tier: "symbolic"}, 1},
		{Assertion{Type: AssertCacheMisses, Tier: "exact"}, 3},
		{Assertion{Type: AssertCacheMisses, Tier: "symbolic"}, 5},
		{Assertion{Type: AssertCacheUsage, Tier: "symbolic"}, 3},
		{Assertion{Type: AssertPoolHits}, 6},
		{Assertion{Type: AssertPoolSize}, 2},
		{Assertion{Type: AssertJournalCount}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.a.Type+"/"+tt.a.Tier, func(t *testing.T) {
			got, err := observe(r, tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := observe(r, Assertion{Type: "nope"})
	assert.Error(t, err)
	_, err = observe(r, Assertion{Type: AssertCacheHits, Tier: "lukewarm"})
	assert.Error(t, err)
}

func TestEvaluateAssertions(t *testing.T) {
	r := sampleResult()
	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertCacheHits, Tier: "fast", Count: intp(4)},
		{Type: AssertCacheHits, Tier: "fast", Min: intp(2)},
		{Type: AssertPoolHits, Min: intp(10)},
		{Type: AssertJournalCount, Count: intp(1)},
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "Assertion failed: pool_hits\n  Expected: at least 10\n  Actual: 6", errs[0])
	assert.Contains(t, errs[1], "journal_count")
}
