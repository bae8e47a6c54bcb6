package repository

import (
	"context"
	"errors"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	"OeeForecast/pkg/cache"
	applogger "OeeForecast/pkg/logger"
)

const thresholdKeyPrefix = "threshold"

type machineLineEntry struct {
	LineID int64 `json:"lineId"`
	OK     bool  `json:"ok"`
}

// CachedThresholdStore puts the resolver reads of a ThresholdStore behind a cache.
// Writes go through and drop every cached threshold key.
type CachedThresholdStore struct {
	domrepo.ThresholdStore
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedThresholdStore(inner domrepo.ThresholdStore, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedThresholdStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedThresholdStore{ThresholdStore: inner, cache: c, ttl: ttl, l: l}
}

func (s *CachedThresholdStore) MachineLine(ctx context.Context, machineID int64) (int64, bool, error) {
	key := cache.Key(thresholdKeyPrefix, "line-of", machineID)
	var e machineLineEntry
	if s.lookup(ctx, key, &e) {
		return e.LineID, e.OK, nil
	}
	lineID, ok, err := s.ThresholdStore.MachineLine(ctx, machineID)
	if err != nil {
		return 0, false, err
	}
	s.store(ctx, key, machineLineEntry{LineID: lineID, OK: ok})
	return lineID, ok, nil
}

func (s *CachedThresholdStore) ActiveThresholds(ctx context.Context, scope models.ThresholdScope, targetID int64) ([]models.AlertThreshold, error) {
	key := cache.Key(thresholdKeyPrefix, scope, targetID)
	var rows []models.AlertThreshold
	if s.lookup(ctx, key, &rows) {
		return rows, nil
	}
	rows, err := s.ThresholdStore.ActiveThresholds(ctx, scope, targetID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

func (s *CachedThresholdStore) Create(ctx context.Context, t *models.AlertThreshold) (int64, error) {
	id, err := s.ThresholdStore.Create(ctx, t)
	if err == nil {
		s.Invalidate(ctx)
	}
	return id, err
}

func (s *CachedThresholdStore) Update(ctx context.Context, id int64, patch models.ThresholdPatch) error {
	err := s.ThresholdStore.Update(ctx, id, patch)
	if err == nil {
		s.Invalidate(ctx)
	}
	return err
}

func (s *CachedThresholdStore) Delete(ctx context.Context, id int64) error {
	err := s.ThresholdStore.Delete(ctx, id)
	if err == nil {
		s.Invalidate(ctx)
	}
	return err
}

// Invalidate drops every cached threshold entry.
func (s *CachedThresholdStore) Invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, thresholdKeyPrefix+":*"); err != nil {
		s.l.Warn("threshold cache invalidate failed", applogger.Error(err))
	}
}

func (s *CachedThresholdStore) lookup(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.l.Warn("threshold cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	return false
}

func (s *CachedThresholdStore) store(ctx context.Context, key string, v interface{}) {
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		s.l.Warn("threshold cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}
