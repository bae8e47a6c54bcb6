package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"OeeForecast/internal/domain/models"
	applogger "OeeForecast/pkg/logger"
)

// OeeRecordsDDL creates the daily OEE table read by ClickHouseOeeSource.
const OeeRecordsDDL = `
CREATE TABLE IF NOT EXISTS oee_records (
    machine_id    Int64,
    machine_name  LowCardinality(String),
    line_id       Int64,
    record_date   Date,
    availability  Float64,
    performance   Float64,
    quality       Float64,
    oee           Float64,
    inserted_at   DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(inserted_at)
ORDER BY (machine_id, record_date)`

// ClickHouseOeeSource reads daily OEE series from ClickHouse.
type ClickHouseOeeSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// CHSourceOption configures ClickHouseOeeSource.
type CHSourceOption func(*ClickHouseOeeSource)

// WithSourceLogger injects a structured logger.
func WithSourceLogger(l *applogger.Logger) CHSourceOption {
	return func(s *ClickHouseOeeSource) {
		if l != nil {
			s.l = l
		}
	}
}

// WithSourceTable overrides the records table.
func WithSourceTable(table string) CHSourceOption {
	return func(s *ClickHouseOeeSource) {
		if table != "" {
			s.table = table
		}
	}
}

func NewClickHouseOeeSource(db *sql.DB, opts ...CHSourceOption) *ClickHouseOeeSource {
	s := &ClickHouseOeeSource{db: db, table: "oee_records", l: applogger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDailyOee returns one machine's daily average OEE since the given date, oldest first.
func (s *ClickHouseOeeSource) GetDailyOee(ctx context.Context, machineID int64, since time.Time) ([]models.OeeObservation, error) {
	q := fmt.Sprintf(`
        SELECT machine_id, any(machine_name), record_date, avg(oee)
        FROM %s
        WHERE machine_id = ? AND record_date >= ?
        GROUP BY machine_id, record_date
        ORDER BY record_date ASC`, s.table)

	series, err := s.queryObservations(ctx, "get_daily_oee", q, machineID, dayOf(since))
	if err != nil {
		return nil, err
	}
	return series, nil
}

// GetFleetDailyOee returns the daily series of every machine, or only machineIDs when given.
func (s *ClickHouseOeeSource) GetFleetDailyOee(ctx context.Context, since time.Time, machineIDs []int64) ([]models.MachineSeries, error) {
	where, args := machineFilter(dayOf(since), machineIDs)
	q := fmt.Sprintf(`
        SELECT machine_id, any(machine_name), record_date, avg(oee)
        FROM %s
        WHERE %s
        GROUP BY machine_id, record_date
        ORDER BY machine_id ASC, record_date ASC`, s.table, where)

	obs, err := s.queryObservations(ctx, "get_fleet_daily_oee", q, args...)
	if err != nil {
		return nil, err
	}

	out := make([]models.MachineSeries, 0)
	for _, o := range obs {
		if n := len(out); n == 0 || out[n-1].MachineID != o.MachineID {
			out = append(out, models.MachineSeries{MachineID: o.MachineID, MachineName: o.MachineName})
		}
		cur := &out[len(out)-1]
		if cur.MachineName == "" {
			cur.MachineName = o.MachineName
		}
		cur.Observations = append(cur.Observations, o)
	}
	return out, nil
}

// GetAggregateDailyOee returns the fleet average OEE per day.
func (s *ClickHouseOeeSource) GetAggregateDailyOee(ctx context.Context, since time.Time, machineIDs []int64) ([]models.OeeObservation, error) {
	where, args := machineFilter(dayOf(since), machineIDs)
	q := fmt.Sprintf(`
        SELECT toInt64(0), '', record_date, avg(oee)
        FROM %s
        WHERE %s
        GROUP BY record_date
        ORDER BY record_date ASC`, s.table, where)

	return s.queryObservations(ctx, "get_aggregate_daily_oee", q, args...)
}

func (s *ClickHouseOeeSource) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseOeeSource) Close() error {
	return s.db.Close()
}

func (s *ClickHouseOeeSource) queryObservations(ctx context.Context, op, q string, args ...interface{}) ([]models.OeeObservation, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse query error", applogger.String("op", op), applogger.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.OeeObservation, 0, 64)
	for rows.Next() {
		var o models.OeeObservation
		if err := rows.Scan(&o.MachineID, &o.MachineName, &o.Date, &o.Oee); err != nil {
			s.l.Error("clickhouse scan error", applogger.String("op", op), applogger.Error(err))
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("clickhouse rows error", applogger.String("op", op), applogger.Error(err))
		return nil, fmt.Errorf("%s rows: %w", op, err)
	}

	s.l.Debug("clickhouse query ok",
		applogger.String("op", op),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func machineFilter(since time.Time, machineIDs []int64) (string, []interface{}) {
	args := []interface{}{since}
	if len(machineIDs) == 0 {
		return "record_date >= ?", args
	}
	marks := make([]string, len(machineIDs))
	for i, id := range machineIDs {
		marks[i] = "?"
		args = append(args, id)
	}
	return "record_date >= ? AND machine_id IN (" + strings.Join(marks, ", ") + ")", args
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
