package threshold

import (
	"context"
	"fmt"

	"OeeForecast/internal/domain/models"
)

// System defaults used when no active row exists at any scope.
const (
	DefaultTargetOee             = 85.0
	DefaultWarningThreshold      = 80.0
	DefaultCriticalThreshold     = 70.0
	DefaultDropAlertThreshold    = 5.0
	DefaultRelativeDropThreshold = 10.0
)

// Reader is the read side of the threshold store the resolver needs.
type Reader interface {
	// MachineLine returns the production line a machine belongs to.
	MachineLine(ctx context.Context, machineID int64) (lineID int64, ok bool, err error)
	// ActiveThresholds returns active rows at one scope. targetID is ignored for ScopeGlobal.
	ActiveThresholds(ctx context.Context, scope models.ThresholdScope, targetID int64) ([]models.AlertThreshold, error)
}

// Resolver finds the single effective threshold of a machine: machine, then line, then global, then default.
type Resolver struct {
	reader  Reader
	onError func(error)
}

// Option configures Resolver.
type Option func(*Resolver)

// WithErrorHook receives lookup errors. A failed lookup is treated as "no row" at that scope.
func WithErrorHook(fn func(error)) Option {
	return func(r *Resolver) {
		r.onError = fn
	}
}

// NewResolver creates a resolver over reader.
func NewResolver(reader Reader, opts ...Option) *Resolver {
	r := &Resolver{reader: reader}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve always returns exactly one threshold record.
func (r *Resolver) Resolve(ctx context.Context, machineID int64) models.AlertThreshold {
	if t, ok := r.lookup(ctx, models.ScopeMachine, machineID); ok {
		return t
	}

	lineID, ok, err := r.reader.MachineLine(ctx, machineID)
	if err != nil {
		r.report(fmt.Errorf("machine %d line: %w", machineID, err))
	}
	if ok {
		if t, found := r.lookup(ctx, models.ScopeLine, lineID); found {
			return t
		}
	}

	if t, ok := r.lookup(ctx, models.ScopeGlobal, 0); ok {
		return t
	}
	return Default()
}

func (r *Resolver) lookup(ctx context.Context, scope models.ThresholdScope, targetID int64) (models.AlertThreshold, bool) {
	rows, err := r.reader.ActiveThresholds(ctx, scope, targetID)
	if err != nil {
		r.report(fmt.Errorf("%s thresholds for %d: %w", scope, targetID, err))
		return models.AlertThreshold{}, false
	}
	t, ok := Newest(rows)
	if ok {
		t.Scope = scope
	}
	return t, ok
}

func (r *Resolver) report(err error) {
	if r.onError != nil {
		r.onError(err)
	}
}

// Newest picks the most recently created active row; equal timestamps prefer the higher id.
func Newest(rows []models.AlertThreshold) (models.AlertThreshold, bool) {
	var (
		best  models.AlertThreshold
		found bool
	)
	for _, row := range rows {
		if !row.IsActive {
			continue
		}
		if !found || row.CreatedAt.After(best.CreatedAt) ||
			(row.CreatedAt.Equal(best.CreatedAt) && row.ID > best.ID) {
			best, found = row, true
		}
	}
	return best, found
}

// Default returns the hard-coded system threshold.
func Default() models.AlertThreshold {
	return models.AlertThreshold{
		Scope:                 models.ScopeDefault,
		TargetOee:             DefaultTargetOee,
		WarningThreshold:      DefaultWarningThreshold,
		CriticalThreshold:     DefaultCriticalThreshold,
		DropAlertThreshold:    DefaultDropAlertThreshold,
		RelativeDropThreshold: DefaultRelativeDropThreshold,
		IsActive:              true,
	}
}
