package threshold

import (
	"testing"

	"OeeForecast/internal/domain/models"
)

func TestEffective(t *testing.T) {
	t.Parallel()

	record := Default()
	record.DropAlertThreshold = 5

	tests := []struct {
		name     string
		caller   float64
		override float64
		wantDrop float64
	}{
		{name: "no override keeps record", caller: 65, wantDrop: 5},
		{name: "stricter override wins", caller: 65, override: 3, wantDrop: 3},
		{name: "looser override ignored", caller: 65, override: 8, wantDrop: 5},
		{name: "negative override ignored", caller: 70, override: -1, wantDrop: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Effective(record, tt.caller, tt.override)
			if got.AlertFloor != tt.caller {
				t.Errorf("AlertFloor = %v, want %v", got.AlertFloor, tt.caller)
			}
			if got.DropAlert != tt.wantDrop {
				t.Errorf("DropAlert = %v, want %v", got.DropAlert, tt.wantDrop)
			}
			if got.Source != models.ScopeDefault {
				t.Errorf("Source = %q, want %q", got.Source, models.ScopeDefault)
			}
		})
	}
}

func TestEffectiveKeepsZeroDropThreshold(t *testing.T) {
	t.Parallel()

	record := models.AlertThreshold{Scope: models.ScopeMachine}
	got := Effective(record, 60, 4)
	if got.DropAlert != 0 {
		t.Errorf("DropAlert = %v, want 0", got.DropAlert)
	}
}
