package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"
	pkgpg "OeeForecast/pkg/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a scratch database named by POSTGRES_TEST_DSN.
func testPostgres(t *testing.T) *pkgpg.Client {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgpg.NewClient(ctx, pkgpg.WithDSN(dsn))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	require.NoError(t, client.InitSchema(ctx, PostgresSchema))
	return client
}

func ptr[T any](v T) *T { return &v }

func TestPostgresThresholdStore(t *testing.T) {
	client := testPostgres(t)
	ctx := context.Background()
	store := NewPostgresThresholdStore(client.Pool())

	// ids unique per run so reruns against the same database do not collide
	base := time.Now().UnixNano() % 1_000_000_000
	machine, line := base, base+1

	var machineID int64
	require.NoError(t, client.Pool().QueryRow(ctx,
		`INSERT INTO machines (name, production_line_id) VALUES ('press', $1) RETURNING id`, line).Scan(&machineID))

	got, ok, err := store.MachineLine(ctx, machineID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, line, got)

	_, ok, err = store.MachineLine(ctx, -1)
	require.NoError(t, err)
	assert.False(t, ok)

	older := &models.AlertThreshold{MachineID: ptr(machine), TargetOee: 80, WarningThreshold: 75,
		CriticalThreshold: 65, DropAlertThreshold: 5, RelativeDropThreshold: 10}
	_, err = store.Create(ctx, older)
	require.NoError(t, err)
	newer := &models.AlertThreshold{MachineID: ptr(machine), TargetOee: 90, WarningThreshold: 85,
		CriticalThreshold: 70, DropAlertThreshold: 4, RelativeDropThreshold: 8, QualityTarget: ptr(99.0)}
	id, err := store.Create(ctx, newer)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeMachine, newer.Scope)
	assert.True(t, newer.IsActive)

	rows, err := store.ActiveThresholds(ctx, models.ScopeMachine, machine)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, 99.0, *rows[0].QualityTarget)

	_, err = store.Create(ctx, &models.AlertThreshold{ProductionLineID: ptr(line), TargetOee: 70})
	require.NoError(t, err)
	lineRows, err := store.ActiveThresholds(ctx, models.ScopeLine, line)
	require.NoError(t, err)
	require.Len(t, lineRows, 1)
	assert.Equal(t, models.ScopeLine, lineRows[0].Scope)

	listed, err := store.List(ctx, models.ThresholdFilter{MachineID: ptr(machine)})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	require.NoError(t, store.Update(ctx, id, models.ThresholdPatch{TargetOee: ptr(72.5)}))
	one, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 72.5, one.TargetOee)
	assert.Equal(t, 85.0, one.WarningThreshold)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, id, models.ThresholdPatch{TargetOee: ptr(1.0)}), ErrNotFound)

	rows, err = store.ActiveThresholds(ctx, models.ScopeMachine, machine)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPostgresPredictionConfigStoreKeepsOneDefault(t *testing.T) {
	client := testPostgres(t)
	ctx := context.Background()
	store := NewPostgresPredictionConfigStore(client.Pool())
	user := time.Now().UnixNano() % 1_000_000_000

	first := &models.PredictionConfig{UserID: user, ConfigName: "weekly", ConfigType: models.ConfigTypeOee,
		Algorithm: models.AlgorithmLinear, PredictionDays: 7, ConfidenceLevel: 95, AlertThreshold: 5,
		HistoricalDays: 30, IsDefault: true}
	firstID, err := store.Save(ctx, first)
	require.NoError(t, err)

	second := &models.PredictionConfig{UserID: user, ConfigName: "smooth", ConfigType: models.ConfigTypeOee,
		Algorithm: models.AlgorithmExpSmoothing, PredictionDays: 14, ConfidenceLevel: 90, AlertThreshold: 5,
		SmoothingFactor: ptr(0.4), HistoricalDays: 60, IsDefault: true}
	secondID, err := store.Save(ctx, second)
	require.NoError(t, err)

	def, err := store.GetDefault(ctx, user, models.ConfigTypeOee)
	require.NoError(t, err)
	assert.Equal(t, secondID, def.ID)
	assert.Equal(t, models.AlgorithmExpSmoothing, def.Algorithm)
	require.NotNil(t, def.SmoothingFactor)
	assert.Equal(t, 0.4, *def.SmoothingFactor)
	assert.Nil(t, def.MovingAvgWindow)

	require.NoError(t, store.Update(ctx, user, firstID, models.PredictionConfigPatch{IsDefault: ptr(true)}))
	list, err := store.List(ctx, user, models.ConfigTypeOee)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, firstID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	_, err = store.Get(ctx, user+1, firstID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, user+1, firstID, models.PredictionConfigPatch{ConfigName: ptr("x")}), ErrNotFound)

	require.NoError(t, store.Delete(ctx, user, firstID))
	_, err = store.GetDefault(ctx, user, models.ConfigTypeOee)
	assert.ErrorIs(t, err, ErrNotFound)
}
