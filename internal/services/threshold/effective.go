package threshold

import "OeeForecast/internal/domain/models"

// Effective merges the resolved record with the per-call values into one threshold.
// The caller's alert threshold is the alert floor. A positive dropOverride replaces the
// record's drop threshold only when it is stricter, i.e. smaller. A stored drop threshold
// of 0 is kept as is and fires on any non-rising forecast.
func Effective(record models.AlertThreshold, callerAlertThreshold, dropOverride float64) models.EffectiveThreshold {
	drop := record.DropAlertThreshold
	if dropOverride > 0 && dropOverride < drop {
		drop = dropOverride
	}
	return models.EffectiveThreshold{
		AlertFloor: callerAlertThreshold,
		DropAlert:  drop,
		Source:     record.Scope,
		Record:     record,
	}
}
