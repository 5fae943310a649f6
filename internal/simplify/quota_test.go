package simplify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterationQuota(t *testing.T) {
	q := newIterationQuota(2)
	require.NoError(t, q.Check())
	require.NoError(t, q.Check())
	assert.Equal(t, 2, q.Used())

	err := q.Check()
	require.Error(t, err)
	var qe *quotaExceededError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, 2, qe.Limit)
	assert.Equal(t, 2, qe.Passes)
	assert.Equal(t, 2, q.Used())
	assert.Contains(t, err.Error(), "iteration limit 2")
}
