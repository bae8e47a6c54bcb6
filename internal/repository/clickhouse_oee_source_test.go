package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestClickHouseOeeSource_GetDailyOee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT machine_id, any\(machine_name\), record_date, avg\(oee\)\s+FROM oee_records\s+WHERE machine_id = \? AND record_date >= \?`).
		WithArgs(int64(7), day("2024-03-01")).
		WillReturnRows(sqlmock.NewRows([]string{"machine_id", "machine_name", "record_date", "oee"}).
			AddRow(int64(7), "Press 7", day("2024-03-01"), 81.5).
			AddRow(int64(7), "Press 7", day("2024-03-02"), 79.0))

	src := NewClickHouseOeeSource(db)
	got, err := src.GetDailyOee(context.Background(), 7, since)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Press 7", got[0].MachineName)
	assert.Equal(t, 79.0, got[1].Oee)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseOeeSource_GetFleetDailyOeeGroupsByMachine(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE record_date >= \? AND machine_id IN \(\?, \?\)\s+GROUP BY machine_id, record_date`).
		WithArgs(day("2024-03-01"), int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"machine_id", "machine_name", "record_date", "oee"}).
			AddRow(int64(1), "A", day("2024-03-01"), 80.0).
			AddRow(int64(1), "A", day("2024-03-02"), 82.0).
			AddRow(int64(2), "B", day("2024-03-01"), 70.0))

	src := NewClickHouseOeeSource(db, WithSourceTable("oee_records"))
	got, err := src.GetFleetDailyOee(context.Background(), day("2024-03-01"), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].MachineID)
	assert.Equal(t, []float64{80, 82}, got[0].Values())
	assert.Equal(t, "B", got[1].MachineName)
	assert.Len(t, got[1].Observations, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseOeeSource_GetAggregateDailyOee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE record_date >= \?\s+GROUP BY record_date`).
		WithArgs(day("2024-03-01")).
		WillReturnRows(sqlmock.NewRows([]string{"machine_id", "machine_name", "record_date", "oee"}).
			AddRow(int64(0), "", day("2024-03-01"), 75.0))

	src := NewClickHouseOeeSource(db)
	got, err := src.GetAggregateDailyOee(context.Background(), day("2024-03-01"), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 75.0, got[0].Oee)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickHouseOeeSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT`).WillReturnError(boom)

	src := NewClickHouseOeeSource(db)
	_, err = src.GetDailyOee(context.Background(), 1, day("2024-03-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
