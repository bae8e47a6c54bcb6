package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBuilder(t *testing.T) {
	var b SetBuilder
	assert.True(t, b.Empty())

	b.Add("target_oee", 90.0)
	b.Add("is_default", true)

	clause, args, next := b.Build()
	assert.Equal(t, "target_oee = $1, is_default = $2", clause)
	assert.Equal(t, []any{90.0, true}, args)
	assert.Equal(t, 3, next)
	assert.False(t, b.Empty())
}

func TestNewClientRequiresDSN(t *testing.T) {
	_, err := NewClient(context.Background())
	require.Error(t, err)
}
