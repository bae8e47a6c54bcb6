package usecase

import (
	"context"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	domsvc "OeeForecast/internal/domain/service"
	applogger "OeeForecast/pkg/logger"
)

// ThresholdEventPublisher announces threshold changes to other instances.
type ThresholdEventPublisher interface {
	PublishThresholdEvent(ctx context.Context, ev models.ThresholdEvent) error
}

const (
	ThresholdCreated = "created"
	ThresholdUpdated = "updated"
	ThresholdDeleted = "deleted"
)

// ThresholdUseCase manages alert thresholds.
type ThresholdUseCase struct {
	store    domrepo.ThresholdStore
	resolver domsvc.ThresholdResolver
	events   ThresholdEventPublisher
	l        *applogger.Logger
}

func NewThresholdUseCase(store domrepo.ThresholdStore, resolver domsvc.ThresholdResolver, events ThresholdEventPublisher, l *applogger.Logger) *ThresholdUseCase {
	return &ThresholdUseCase{store: store, resolver: resolver, events: events, l: l}
}

func (uc *ThresholdUseCase) List(ctx context.Context, filter models.ThresholdFilter) ([]models.AlertThreshold, error) {
	return uc.store.List(ctx, filter)
}

func (uc *ThresholdUseCase) Get(ctx context.Context, id int64) (*models.AlertThreshold, error) {
	return uc.store.Get(ctx, id)
}

// Effective returns the threshold applying to a machine. It never fails.
func (uc *ThresholdUseCase) Effective(ctx context.Context, machineID int64) models.AlertThreshold {
	return uc.resolver.Resolve(ctx, machineID)
}

func (uc *ThresholdUseCase) Create(ctx context.Context, t *models.AlertThreshold) (*models.AlertThreshold, error) {
	if _, err := uc.store.Create(ctx, t); err != nil {
		return nil, err
	}
	uc.publish(ctx, ThresholdCreated, *t)
	return t, nil
}

func (uc *ThresholdUseCase) Update(ctx context.Context, id int64, patch models.ThresholdPatch) (*models.AlertThreshold, error) {
	if err := uc.store.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	t, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, ThresholdUpdated, *t)
	return t, nil
}

// Delete deactivates the row.
func (uc *ThresholdUseCase) Delete(ctx context.Context, id int64) error {
	t, err := uc.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.store.Delete(ctx, id); err != nil {
		return err
	}
	uc.publish(ctx, ThresholdDeleted, *t)
	return nil
}

func (uc *ThresholdUseCase) publish(ctx context.Context, action string, t models.AlertThreshold) {
	if uc.events == nil {
		return
	}
	ev := models.ThresholdEvent{
		Action:           action,
		ThresholdID:      t.ID,
		MachineID:        t.MachineID,
		ProductionLineID: t.ProductionLineID,
	}
	if err := uc.events.PublishThresholdEvent(ctx, ev); err != nil {
		uc.l.Warn("threshold event publish failed",
			applogger.String("action", action),
			applogger.Int64("threshold_id", t.ID),
			applogger.Error(err),
		)
	}
}
