package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	pkgpg "OeeForecast/pkg/postgres"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound aliases the domain sentinel for callers of this package.
var ErrNotFound = domrepo.ErrNotFound

const thresholdColumns = `id, machine_id, production_line_id, target_oee, warning_threshold, critical_threshold,
    drop_alert_threshold, relative_drop_threshold, availability_target, performance_target, quality_target,
    is_active, created_by, created_at, updated_at`

// PostgresThresholdStore persists alert thresholds in Postgres.
type PostgresThresholdStore struct {
	db pkgpg.DB
}

func NewPostgresThresholdStore(db pkgpg.DB) *PostgresThresholdStore {
	return &PostgresThresholdStore{db: db}
}

// MachineLine returns the production line of a machine.
func (s *PostgresThresholdStore) MachineLine(ctx context.Context, machineID int64) (int64, bool, error) {
	var line *int64
	err := s.db.QueryRow(ctx, `SELECT production_line_id FROM machines WHERE id = $1`, machineID).Scan(&line)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("machine line: %w", err)
	}
	if line == nil {
		return 0, false, nil
	}
	return *line, true, nil
}

// ActiveThresholds lists the active rows of one scope, newest first.
func (s *PostgresThresholdStore) ActiveThresholds(ctx context.Context, scope models.ThresholdScope, targetID int64) ([]models.AlertThreshold, error) {
	var (
		where string
		args  []any
	)
	switch scope {
	case models.ScopeMachine:
		where, args = "machine_id = $1", []any{targetID}
	case models.ScopeLine:
		where, args = "machine_id IS NULL AND production_line_id = $1", []any{targetID}
	case models.ScopeGlobal:
		where = "machine_id IS NULL AND production_line_id IS NULL"
	default:
		return nil, fmt.Errorf("unknown threshold scope %q", scope)
	}
	q := `SELECT ` + thresholdColumns + ` FROM alert_thresholds
        WHERE is_active AND ` + where + `
        ORDER BY created_at DESC, id DESC`
	return s.query(ctx, q, args...)
}

// List returns active thresholds, newest first, optionally filtered.
func (s *PostgresThresholdStore) List(ctx context.Context, filter models.ThresholdFilter) ([]models.AlertThreshold, error) {
	conds := []string{"is_active"}
	var args []any
	if filter.MachineID != nil {
		args = append(args, *filter.MachineID)
		conds = append(conds, fmt.Sprintf("machine_id = $%d", len(args)))
	}
	if filter.ProductionLineID != nil {
		args = append(args, *filter.ProductionLineID)
		conds = append(conds, fmt.Sprintf("production_line_id = $%d", len(args)))
	}
	q := `SELECT ` + thresholdColumns + ` FROM alert_thresholds
        WHERE ` + strings.Join(conds, " AND ") + `
        ORDER BY created_at DESC, id DESC`
	return s.query(ctx, q, args...)
}

func (s *PostgresThresholdStore) Get(ctx context.Context, id int64) (*models.AlertThreshold, error) {
	rows, err := s.query(ctx, `SELECT `+thresholdColumns+` FROM alert_thresholds WHERE id = $1 AND is_active`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *PostgresThresholdStore) Create(ctx context.Context, t *models.AlertThreshold) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
        INSERT INTO alert_thresholds (machine_id, production_line_id, target_oee, warning_threshold,
            critical_threshold, drop_alert_threshold, relative_drop_threshold, availability_target,
            performance_target, quality_target, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created_at, updated_at`,
		t.MachineID, t.ProductionLineID, t.TargetOee, t.WarningThreshold, t.CriticalThreshold,
		t.DropAlertThreshold, t.RelativeDropThreshold, t.AvailabilityTarget, t.PerformanceTarget,
		t.QualityTarget, t.CreatedBy,
	).Scan(&id, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("create threshold: %w", err)
	}
	t.ID = id
	t.IsActive = true
	t.Scope = t.ScopeOf()
	return id, nil
}

func (s *PostgresThresholdStore) Update(ctx context.Context, id int64, patch models.ThresholdPatch) error {
	var b pkgpg.SetBuilder
	addFloat := func(col string, v *float64) {
		if v != nil {
			b.Add(col, *v)
		}
	}
	addFloat("target_oee", patch.TargetOee)
	addFloat("warning_threshold", patch.WarningThreshold)
	addFloat("critical_threshold", patch.CriticalThreshold)
	addFloat("drop_alert_threshold", patch.DropAlertThreshold)
	addFloat("relative_drop_threshold", patch.RelativeDropThreshold)
	addFloat("availability_target", patch.AvailabilityTarget)
	addFloat("performance_target", patch.PerformanceTarget)
	addFloat("quality_target", patch.QualityTarget)
	if b.Empty() {
		return nil
	}

	set, args, next := b.Build()
	q := fmt.Sprintf(`UPDATE alert_thresholds SET %s, updated_at = now() WHERE id = $%d AND is_active`, set, next)
	tag, err := s.db.Exec(ctx, q, append(args, id)...)
	if err != nil {
		return fmt.Errorf("update threshold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresThresholdStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE alert_thresholds SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return fmt.Errorf("delete threshold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresThresholdStore) query(ctx context.Context, q string, args ...any) ([]models.AlertThreshold, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query thresholds: %w", err)
	}
	defer rows.Close()

	out := make([]models.AlertThreshold, 0)
	for rows.Next() {
		var t models.AlertThreshold
		if err := rows.Scan(&t.ID, &t.MachineID, &t.ProductionLineID, &t.TargetOee, &t.WarningThreshold,
			&t.CriticalThreshold, &t.DropAlertThreshold, &t.RelativeDropThreshold, &t.AvailabilityTarget,
			&t.PerformanceTarget, &t.QualityTarget, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		t.Scope = t.ScopeOf()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
