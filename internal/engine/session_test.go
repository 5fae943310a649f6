package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)

	u, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
	assert.LessOrEqual(t, a[:8], b[:8], "time-ordered prefix")
}

func TestSequence(t *testing.T) {
	var s sequence
	assert.Zero(t, s.current())
	assert.Equal(t, int64(1), s.next())
	assert.Equal(t, int64(2), s.next())
	assert.Equal(t, int64(2), s.current())
}
