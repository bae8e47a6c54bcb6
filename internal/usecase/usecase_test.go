package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	"OeeForecast/internal/services/forecast"
	"OeeForecast/internal/services/threshold"
	applogger "OeeForecast/pkg/logger"
	"OeeForecast/pkg/metrics"
	"OeeForecast/pkg/queue"
	xutil "OeeForecast/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisUseCase_CompareInsufficientData(t *testing.T) {
	src := &fakeSource{aggregate: series(0, "", 70, 71, 72).Observations}
	uc := NewAnalysisUseCase(src, forecast.NewComparator(), metrics.Nop{}, applogger.Nop())

	res, err := uc.Compare(context.Background(), 30, 14)
	require.NoError(t, err)
	assert.Empty(t, res.Algorithms)
	assert.Empty(t, res.ChartData)
	assert.Nil(t, res.Recommendation)
}

func TestAnalysisUseCase_Compare(t *testing.T) {
	src := &fakeSource{aggregate: series(0, "", ramp(60, 1, 10)...).Observations}
	uc := NewAnalysisUseCase(src, forecast.NewComparator(), metrics.Nop{}, applogger.Nop())
	uc.now = func() time.Time { return testNow }

	res, err := uc.Compare(context.Background(), 45, 4)
	require.NoError(t, err)
	assert.Equal(t, xutil.DaysAgo(testNow, 45), src.since)
	assert.Len(t, res.Algorithms, 3)
	require.Len(t, res.ChartData, 14)
	assert.Equal(t, "2024-03-21", res.ChartData[10].Date)
	require.NotNil(t, res.Recommendation)
	assert.Equal(t, models.AlgorithmLinear, res.Recommendation.Code)
}

func TestAnalysisUseCase_History(t *testing.T) {
	src := &fakeSource{fleet: []models.MachineSeries{series(4, "D", 1, 2, 3)}}
	uc := NewAnalysisUseCase(src, forecast.NewComparator(), metrics.Nop{}, applogger.Nop())

	obs, err := uc.History(context.Background(), 4, 7)
	require.NoError(t, err)
	assert.Len(t, obs, 3)
	assert.Equal(t, []int64{4}, src.ids)
}

func TestThresholdUseCase_LifecyclePublishesEvents(t *testing.T) {
	store := &fakeThresholdStore{rows: map[int64]models.AlertThreshold{}}
	events := &recordingEvents{}
	uc := NewThresholdUseCase(store, fixedResolver{record: threshold.Default()}, events, applogger.Nop())
	ctx := context.Background()

	machine := int64(8)
	created, err := uc.Create(ctx, &models.AlertThreshold{MachineID: &machine, TargetOee: 88})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	target := 91.0
	updated, err := uc.Update(ctx, created.ID, models.ThresholdPatch{TargetOee: &target})
	require.NoError(t, err)
	assert.Equal(t, 91.0, updated.TargetOee)

	require.NoError(t, uc.Delete(ctx, created.ID))
	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domrepo.ErrNotFound)

	require.Len(t, events.evs, 3)
	assert.Equal(t, ThresholdCreated, events.evs[0].Action)
	assert.Equal(t, &machine, events.evs[0].MachineID)
	assert.Equal(t, ThresholdUpdated, events.evs[1].Action)
	assert.Equal(t, ThresholdDeleted, events.evs[2].Action)

	eff := uc.Effective(ctx, 8)
	assert.Equal(t, models.ScopeDefault, eff.Scope)
}

func TestPredictionConfigUseCase_DefaultMissingIsNil(t *testing.T) {
	uc := NewPredictionConfigUseCase(&fakeConfigStore{})
	c, err := uc.Default(context.Background(), 1, models.ConfigTypeOee)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestEvaluationUseCase(t *testing.T) {
	q := &fakeQueue{status: map[string]*queue.Status{"job-1": {ID: "job-1", State: queue.StateDone}}}
	uc := NewEvaluationUseCase(q)
	ctx := context.Background()

	id, err := uc.Enqueue(ctx, EvaluationPayload{UserID: 2, HistoricalDays: 30})
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
	assert.Equal(t, EvaluateFleetType, q.msgType)

	st, err := uc.Status(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, queue.StateDone, st.State)

	_, err = uc.Status(ctx, "missing")
	assert.ErrorIs(t, err, domrepo.ErrNotFound)

	_, err = NewEvaluationUseCase(nil).Enqueue(ctx, EvaluationPayload{})
	assert.ErrorIs(t, err, ErrQueueDisabled)
}

func TestEvaluateFleetJob_DispatchesAlerts(t *testing.T) {
	src := &fakeSource{fleet: []models.MachineSeries{
		series(1, "Press 1", ramp(80, -3, 10)...),
		series(2, "Lathe 2", ramp(85, 0, 10)...),
	}}
	configs := &fakeConfigStore{def: &models.PredictionConfig{ID: 7, PredictionDays: 5}}
	configs.configs = map[int64]models.PredictionConfig{7: *configs.def}
	predictions := newPredictionUseCase(src, configs)
	d := &recordingDispatcher{}
	job := NewEvaluateFleetJob(predictions, configs, d, linearRequest(14), applogger.Nop())

	payload, _ := json.Marshal(EvaluationPayload{UserID: 3, HistoricalDays: 30})
	require.NoError(t, job.Handle(context.Background(), payload))

	assert.Equal(t, 5, d.horizon)
	assert.Equal(t, models.AlgorithmLinear, d.alg)
	require.Len(t, d.alerts, 1)
	assert.Equal(t, int64(1), d.alerts[0].MachineID)
	assert.Equal(t, models.SeverityHigh, d.alerts[0].Severity)

	assert.Error(t, job.Handle(context.Background(), json.RawMessage(`{`)))
}

type stubMailer struct {
	fail map[string]bool
	sent []string
}

func (m *stubMailer) SendTo(_ context.Context, to []string, ev *models.AlertEvent) error {
	if m.fail[to[0]] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, to[0])
	return nil
}

func TestAlertUseCase_Send(t *testing.T) {
	m := &stubMailer{fail: map[string]bool{"b@plant.local": true}}
	uc := NewAlertUseCase(m, applogger.Nop())

	sent, failed, err := uc.Send(context.Background(), SendAlertParams{
		MachineName: "Press 1", PredictedOee: 55, Change: -12, Severity: models.SeverityMedium,
		Recipients: []string{"a@plant.local", "b@plant.local"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"b@plant.local"}, failed)
	assert.Equal(t, []string{"a@plant.local"}, m.sent)

	_, _, err = NewAlertUseCase(nil, applogger.Nop()).Send(context.Background(), SendAlertParams{})
	assert.ErrorIs(t, err, ErrMailerDisabled)
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

func TestThresholdEventsHandler(t *testing.T) {
	c := &countingCache{}
	h := NewThresholdEventsHandler("oee.thresholds", c, applogger.Nop())
	assert.Equal(t, "oee.thresholds", h.Topic())

	require.NoError(t, h.Handle(context.Background(), []byte(`{"action":"updated","thresholdId":4}`)))
	assert.Equal(t, 1, c.n)

	assert.Error(t, h.Handle(context.Background(), []byte(`{"action":"updated"}`)))
	assert.Error(t, h.Handle(context.Background(), []byte(`not json`)))
	assert.Equal(t, 1, c.n)
}
