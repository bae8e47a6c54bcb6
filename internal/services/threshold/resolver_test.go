package threshold

import (
	"context"
	"errors"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"
)

type scopeKey struct {
	scope  models.ThresholdScope
	target int64
}

type fakeReader struct {
	lines   map[int64]int64
	rows    map[scopeKey][]models.AlertThreshold
	failOn  map[models.ThresholdScope]bool
	lineErr error
}

func (f *fakeReader) MachineLine(_ context.Context, machineID int64) (int64, bool, error) {
	if f.lineErr != nil {
		return 0, false, f.lineErr
	}
	id, ok := f.lines[machineID]
	return id, ok, nil
}

func (f *fakeReader) ActiveThresholds(_ context.Context, scope models.ThresholdScope, targetID int64) ([]models.AlertThreshold, error) {
	if f.failOn[scope] {
		return nil, errors.New("connection refused")
	}
	if scope == models.ScopeGlobal {
		targetID = 0
	}
	return f.rows[scopeKey{scope, targetID}], nil
}

var created = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func row(id int64, target float64, at time.Time) models.AlertThreshold {
	return models.AlertThreshold{
		ID:                 id,
		TargetOee:          target,
		WarningThreshold:   target - 5,
		CriticalThreshold:  target - 15,
		DropAlertThreshold: 4,
		IsActive:           true,
		CreatedAt:          at,
	}
}

func TestResolveGlobalWhenNoMachineOrLineRow(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		lines: map[int64]int64{42: 3},
		rows: map[scopeKey][]models.AlertThreshold{
			{models.ScopeGlobal, 0}: {row(1, 90, created)},
		},
	}

	got := NewResolver(reader).Resolve(context.Background(), 42)
	if got.TargetOee != 90 {
		t.Errorf("TargetOee = %v, want 90", got.TargetOee)
	}
	if got.Scope != models.ScopeGlobal {
		t.Errorf("Scope = %q, want %q", got.Scope, models.ScopeGlobal)
	}
}

func TestResolveOrder(t *testing.T) {
	t.Parallel()

	all := map[scopeKey][]models.AlertThreshold{
		{models.ScopeMachine, 42}: {row(10, 70, created)},
		{models.ScopeLine, 3}:     {row(20, 75, created)},
		{models.ScopeGlobal, 0}:   {row(30, 90, created)},
	}

	tests := []struct {
		name      string
		drop      []scopeKey
		wantScope models.ThresholdScope
		wantID    int64
	}{
		{name: "machine first", wantScope: models.ScopeMachine, wantID: 10},
		{name: "line before global", drop: []scopeKey{{models.ScopeMachine, 42}}, wantScope: models.ScopeLine, wantID: 20},
		{name: "global", drop: []scopeKey{{models.ScopeMachine, 42}, {models.ScopeLine, 3}}, wantScope: models.ScopeGlobal, wantID: 30},
		{name: "default", drop: []scopeKey{{models.ScopeMachine, 42}, {models.ScopeLine, 3}, {models.ScopeGlobal, 0}}, wantScope: models.ScopeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rows := make(map[scopeKey][]models.AlertThreshold, len(all))
			for k, v := range all {
				rows[k] = v
			}
			for _, k := range tt.drop {
				delete(rows, k)
			}

			got := NewResolver(&fakeReader{lines: map[int64]int64{42: 3}, rows: rows}).Resolve(context.Background(), 42)
			if got.Scope != tt.wantScope || got.ID != tt.wantID {
				t.Errorf("Resolve() = (%q, %d), want (%q, %d)", got.Scope, got.ID, tt.wantScope, tt.wantID)
			}
		})
	}
}

func TestResolveDefaultValues(t *testing.T) {
	t.Parallel()

	got := NewResolver(&fakeReader{}).Resolve(context.Background(), 7)
	want := [5]float64{85, 80, 70, 5, 10}
	have := [5]float64{got.TargetOee, got.WarningThreshold, got.CriticalThreshold, got.DropAlertThreshold, got.RelativeDropThreshold}
	if have != want {
		t.Errorf("Resolve() = %v, want %v", have, want)
	}
	if !got.IsActive {
		t.Error("default threshold should be active")
	}
}

func TestResolveNewestRowWins(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		rows: map[scopeKey][]models.AlertThreshold{
			{models.ScopeMachine, 42}: {
				row(1, 60, created),
				row(2, 65, created.Add(time.Hour)),
				row(3, 70, created.Add(-time.Hour)),
			},
		},
	}

	got := NewResolver(reader).Resolve(context.Background(), 42)
	if got.ID != 2 {
		t.Errorf("ID = %d, want 2", got.ID)
	}
}

func TestNewest(t *testing.T) {
	t.Parallel()

	inactive := row(9, 50, created.Add(24*time.Hour))
	inactive.IsActive = false

	tests := []struct {
		name   string
		rows   []models.AlertThreshold
		wantID int64
		wantOK bool
	}{
		{name: "empty"},
		{name: "equal timestamps prefer higher id", rows: []models.AlertThreshold{row(4, 80, created), row(7, 80, created), row(5, 80, created)}, wantID: 7, wantOK: true},
		{name: "inactive skipped", rows: []models.AlertThreshold{row(1, 80, created), inactive}, wantID: 1, wantOK: true},
		{name: "only inactive", rows: []models.AlertThreshold{inactive}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Newest(tt.rows)
			if ok != tt.wantOK || got.ID != tt.wantID {
				t.Errorf("Newest() = (%d, %v), want (%d, %v)", got.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestResolveTreatsReaderErrorsAsMissing(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		lineErr: errors.New("timeout"),
		failOn:  map[models.ThresholdScope]bool{models.ScopeMachine: true},
		rows: map[scopeKey][]models.AlertThreshold{
			{models.ScopeGlobal, 0}: {row(30, 88, created)},
		},
	}

	var reported []error
	got := NewResolver(reader, WithErrorHook(func(err error) {
		reported = append(reported, err)
	})).Resolve(context.Background(), 42)

	if got.ID != 30 {
		t.Errorf("ID = %d, want 30", got.ID)
	}
	if len(reported) != 2 {
		t.Errorf("reported %d errors, want 2", len(reported))
	}
}

func TestResolveAllLookupsFailing(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{
		lines:  map[int64]int64{42: 3},
		failOn: map[models.ThresholdScope]bool{models.ScopeMachine: true, models.ScopeLine: true, models.ScopeGlobal: true},
	}

	got := NewResolver(reader).Resolve(context.Background(), 42)
	if got.Scope != models.ScopeDefault {
		t.Errorf("Scope = %q, want %q", got.Scope, models.ScopeDefault)
	}
}
