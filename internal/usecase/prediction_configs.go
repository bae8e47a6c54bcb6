package usecase

import (
	"context"
	"errors"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
)

// PredictionConfigUseCase manages per-user prediction configs.
type PredictionConfigUseCase struct {
	store domrepo.PredictionConfigStore
}

func NewPredictionConfigUseCase(store domrepo.PredictionConfigStore) *PredictionConfigUseCase {
	return &PredictionConfigUseCase{store: store}
}

func (uc *PredictionConfigUseCase) List(ctx context.Context, userID int64, configType models.ConfigType) ([]models.PredictionConfig, error) {
	return uc.store.List(ctx, userID, configType)
}

func (uc *PredictionConfigUseCase) Get(ctx context.Context, userID, id int64) (*models.PredictionConfig, error) {
	return uc.store.Get(ctx, userID, id)
}

// Default returns the user's default config of a type, or nil when none is set.
func (uc *PredictionConfigUseCase) Default(ctx context.Context, userID int64, configType models.ConfigType) (*models.PredictionConfig, error) {
	c, err := uc.store.GetDefault(ctx, userID, configType)
	if errors.Is(err, domrepo.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func (uc *PredictionConfigUseCase) Save(ctx context.Context, c *models.PredictionConfig) (*models.PredictionConfig, error) {
	if _, err := uc.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *PredictionConfigUseCase) Update(ctx context.Context, userID, id int64, patch models.PredictionConfigPatch) (*models.PredictionConfig, error) {
	if err := uc.store.Update(ctx, userID, id, patch); err != nil {
		return nil, err
	}
	return uc.store.Get(ctx, userID, id)
}

func (uc *PredictionConfigUseCase) Delete(ctx context.Context, userID, id int64) error {
	return uc.store.Delete(ctx, userID, id)
}
