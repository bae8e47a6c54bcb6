package repository

import (
	"context"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	"OeeForecast/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingThresholdStore struct {
	domrepo.ThresholdStore
	rows       []models.AlertThreshold
	lineCalls  int
	rowCalls   int
	deleteCall int
}

func (s *countingThresholdStore) MachineLine(context.Context, int64) (int64, bool, error) {
	s.lineCalls++
	return 3, true, nil
}

func (s *countingThresholdStore) ActiveThresholds(context.Context, models.ThresholdScope, int64) ([]models.AlertThreshold, error) {
	s.rowCalls++
	return s.rows, nil
}

func (s *countingThresholdStore) Delete(context.Context, int64) error {
	s.deleteCall++
	return nil
}

func TestCachedThresholdStore_ReadsThroughOnce(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()

	inner := &countingThresholdStore{rows: []models.AlertThreshold{{ID: 4, TargetOee: 90, IsActive: true}}}
	s := NewCachedThresholdStore(inner, mc, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rows, err := s.ActiveThresholds(ctx, models.ScopeMachine, 1)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 90.0, rows[0].TargetOee)

		line, ok, err := s.MachineLine(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(3), line)
	}
	assert.Equal(t, 1, inner.rowCalls)
	assert.Equal(t, 1, inner.lineCalls)
}

func TestCachedThresholdStore_WriteInvalidates(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()

	inner := &countingThresholdStore{}
	s := NewCachedThresholdStore(inner, mc, time.Minute, nil)
	ctx := context.Background()

	_, err := s.ActiveThresholds(ctx, models.ScopeGlobal, 0)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, 9))
	_, err = s.ActiveThresholds(ctx, models.ScopeGlobal, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.rowCalls)
	assert.Equal(t, 1, inner.deleteCall)
}
