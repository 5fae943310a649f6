package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/symcore/internal/ir"
)

func TestComparator(t *testing.T) {
	p := setupTestPool(t, Config{EnableSharing: false})
	var c Comparator

	a := mustShare(t, p, ir.Add(ir.Variable("x"), ir.Int(1)))
	b := mustShare(t, p, ir.Add(ir.Variable("x"), ir.Int(1)))
	d := mustShare(t, p, ir.Variable("y"))

	assert.True(t, c.Equal(a, a.Clone()))
	assert.True(t, c.Equal(a, b), "unpooled copies compare by content")
	assert.False(t, c.Equal(a, d))
	assert.False(t, c.Equal(a, nil))
	assert.True(t, c.Equal(nil, nil))

	assert.Equal(t, ComparatorStats{IdentityHits: 1, HashRejects: 1, DeepCompares: 1}, c.Stats())
}
