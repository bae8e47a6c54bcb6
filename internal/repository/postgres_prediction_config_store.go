package repository

import (
	"context"
	"errors"
	"fmt"

	"OeeForecast/internal/domain/models"
	pkgpg "OeeForecast/pkg/postgres"

	"github.com/jackc/pgx/v5"
)

const predictionConfigColumns = `id, user_id, config_name, config_type, algorithm, prediction_days, confidence_level,
    alert_threshold, moving_avg_window, smoothing_factor, historical_days, is_default, is_active, created_at, updated_at`

// PostgresPredictionConfigStore persists per-user forecast configs in Postgres.
type PostgresPredictionConfigStore struct {
	db pkgpg.DB
}

func NewPostgresPredictionConfigStore(db pkgpg.DB) *PostgresPredictionConfigStore {
	return &PostgresPredictionConfigStore{db: db}
}

// List returns the user's active configs, default first then newest.
func (s *PostgresPredictionConfigStore) List(ctx context.Context, userID int64, configType models.ConfigType) ([]models.PredictionConfig, error) {
	q := `SELECT ` + predictionConfigColumns + ` FROM prediction_configs WHERE user_id = $1 AND is_active`
	args := []any{userID}
	if configType != "" {
		q += ` AND config_type = $2`
		args = append(args, string(configType))
	}
	q += ` ORDER BY is_default DESC, created_at DESC, id DESC`
	return s.query(ctx, q, args...)
}

func (s *PostgresPredictionConfigStore) Get(ctx context.Context, userID, id int64) (*models.PredictionConfig, error) {
	return s.one(ctx, `SELECT `+predictionConfigColumns+` FROM prediction_configs
        WHERE id = $1 AND user_id = $2 AND is_active`, id, userID)
}

func (s *PostgresPredictionConfigStore) GetDefault(ctx context.Context, userID int64, configType models.ConfigType) (*models.PredictionConfig, error) {
	return s.one(ctx, `SELECT `+predictionConfigColumns+` FROM prediction_configs
        WHERE user_id = $1 AND config_type = $2 AND is_default AND is_active
        ORDER BY updated_at DESC LIMIT 1`, userID, string(configType))
}

// Save inserts a config, clearing other defaults of the same user and type in the same transaction.
func (s *PostgresPredictionConfigStore) Save(ctx context.Context, c *models.PredictionConfig) (int64, error) {
	err := pkgpg.InTx(ctx, s.db, func(tx pgx.Tx) error {
		if c.IsDefault {
			if err := clearDefaults(ctx, tx, c.UserID, c.ConfigType, 0); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `
            INSERT INTO prediction_configs (user_id, config_name, config_type, algorithm, prediction_days,
                confidence_level, alert_threshold, moving_avg_window, smoothing_factor, historical_days, is_default)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
            RETURNING id, created_at, updated_at`,
			c.UserID, c.ConfigName, string(c.ConfigType), string(c.Algorithm), c.PredictionDays,
			c.ConfidenceLevel, c.AlertThreshold, c.MovingAvgWindow, c.SmoothingFactor, c.HistoricalDays, c.IsDefault,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	})
	if err != nil {
		return 0, fmt.Errorf("save prediction config: %w", err)
	}
	c.IsActive = true
	return c.ID, nil
}

func (s *PostgresPredictionConfigStore) Update(ctx context.Context, userID, id int64, patch models.PredictionConfigPatch) error {
	var b pkgpg.SetBuilder
	if patch.ConfigName != nil {
		b.Add("config_name", *patch.ConfigName)
	}
	if patch.Algorithm != nil {
		b.Add("algorithm", string(*patch.Algorithm))
	}
	if patch.PredictionDays != nil {
		b.Add("prediction_days", *patch.PredictionDays)
	}
	if patch.ConfidenceLevel != nil {
		b.Add("confidence_level", *patch.ConfidenceLevel)
	}
	if patch.AlertThreshold != nil {
		b.Add("alert_threshold", *patch.AlertThreshold)
	}
	if patch.MovingAvgWindow != nil {
		b.Add("moving_avg_window", *patch.MovingAvgWindow)
	}
	if patch.SmoothingFactor != nil {
		b.Add("smoothing_factor", *patch.SmoothingFactor)
	}
	if patch.HistoricalDays != nil {
		b.Add("historical_days", *patch.HistoricalDays)
	}
	if patch.IsDefault != nil {
		b.Add("is_default", *patch.IsDefault)
	}
	if b.Empty() {
		return nil
	}

	return pkgpg.InTx(ctx, s.db, func(tx pgx.Tx) error {
		if patch.IsDefault != nil && *patch.IsDefault {
			var ct string
			err := tx.QueryRow(ctx, `SELECT config_type FROM prediction_configs WHERE id = $1 AND user_id = $2 AND is_active`,
				id, userID).Scan(&ct)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("load prediction config: %w", err)
			}
			if err := clearDefaults(ctx, tx, userID, models.ConfigType(ct), id); err != nil {
				return err
			}
		}

		set, args, next := b.Build()
		q := fmt.Sprintf(`UPDATE prediction_configs SET %s, updated_at = now()
            WHERE id = $%d AND user_id = $%d AND is_active`, set, next, next+1)
		tag, err := tx.Exec(ctx, q, append(args, id, userID)...)
		if err != nil {
			return fmt.Errorf("update prediction config: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *PostgresPredictionConfigStore) Delete(ctx context.Context, userID, id int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE prediction_configs SET is_active = FALSE, is_default = FALSE, updated_at = now()
        WHERE id = $1 AND user_id = $2 AND is_active`, id, userID)
	if err != nil {
		return fmt.Errorf("delete prediction config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func clearDefaults(ctx context.Context, tx pgx.Tx, userID int64, configType models.ConfigType, keepID int64) error {
	_, err := tx.Exec(ctx, `UPDATE prediction_configs SET is_default = FALSE, updated_at = now()
        WHERE user_id = $1 AND config_type = $2 AND is_default AND id <> $3`, userID, string(configType), keepID)
	if err != nil {
		return fmt.Errorf("clear default configs: %w", err)
	}
	return nil
}

func (s *PostgresPredictionConfigStore) one(ctx context.Context, q string, args ...any) (*models.PredictionConfig, error) {
	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *PostgresPredictionConfigStore) query(ctx context.Context, q string, args ...any) ([]models.PredictionConfig, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query prediction configs: %w", err)
	}
	defer rows.Close()

	out := make([]models.PredictionConfig, 0)
	for rows.Next() {
		var (
			c             models.PredictionConfig
			ctype, algoID string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.ConfigName, &ctype, &algoID, &c.PredictionDays, &c.ConfidenceLevel,
			&c.AlertThreshold, &c.MovingAvgWindow, &c.SmoothingFactor, &c.HistoricalDays, &c.IsDefault, &c.IsActive,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction config: %w", err)
		}
		c.ConfigType = models.ConfigType(ctype)
		c.Algorithm = models.Algorithm(algoID)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
