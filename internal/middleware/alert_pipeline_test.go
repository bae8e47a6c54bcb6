package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"OeeForecast/internal/domain/models"
	"OeeForecast/internal/service/notify"
	"OeeForecast/pkg/cache"
	"OeeForecast/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySink struct {
	mu       sync.Mutex
	name     string
	failures int
	calls    int
	got      []*models.AlertEvent
}

func (s *flakySink) Name() string {
	if s.name == "" {
		return "flaky"
	}
	return s.name
}

func (s *flakySink) Notify(_ context.Context, evs []*models.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("unavailable")
	}
	s.got = append(s.got, evs...)
	return nil
}

func (s *flakySink) delivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func (s *flakySink) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func alert(machine int64, sev models.Severity) models.Alert {
	return models.Alert{MachineID: machine, Severity: sev, PredictedValue: 60}
}

func TestAlertPipeline_CooldownSuppressesRepeats(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	sink := &flakySink{}
	p := NewAlertPipeline(sink, mc, metrics.Nop{}, WithCooldown(time.Hour))
	ctx := context.Background()

	evs, err := p.Dispatch(ctx, []models.Alert{alert(1, models.SeverityHigh), alert(2, models.SeverityMedium)}, 14, models.AlgorithmLinear)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.NotEmpty(t, evs[0].ID)
	assert.Equal(t, 14, evs[0].HorizonDays)

	// same machine and severity is suppressed, a new severity is not
	evs, err = p.Dispatch(ctx, []models.Alert{alert(1, models.SeverityHigh), alert(1, models.SeverityMedium)}, 14, models.AlgorithmLinear)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, models.SeverityMedium, evs[0].Alert.Severity)
	assert.Equal(t, 3, sink.delivered())
}

func TestAlertPipeline_NoCooldown(t *testing.T) {
	sink := &flakySink{}
	p := NewAlertPipeline(sink, nil, metrics.Nop{}, WithCooldown(0))
	for i := 0; i < 2; i++ {
		_, err := p.Dispatch(context.Background(), []models.Alert{alert(1, models.SeverityHigh)}, 7, models.AlgorithmMovingAvg)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, sink.delivered())
}

func TestAlertPipeline_BuffersAndRetries(t *testing.T) {
	sink := &flakySink{failures: 2}
	p := NewAlertPipeline(sink, nil, metrics.Nop{},
		WithCooldown(0),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	evs, err := p.Dispatch(ctx, []models.Alert{alert(5, models.SeverityHigh)}, 14, models.AlgorithmLinear)
	require.Error(t, err)
	require.Len(t, evs, 1)

	require.Eventually(t, func() bool { return sink.delivered() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, p.Pending())
}

func TestAlertPipeline_RetriesOnlyFailedTargets(t *testing.T) {
	kafka := &flakySink{name: "kafka"}
	webhook := &flakySink{name: "webhook", failures: 2}
	p := NewAlertPipeline(notify.NewFanout(nil, kafka, webhook), nil, metrics.Nop{},
		WithCooldown(0),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	_, err := p.Dispatch(ctx, []models.Alert{alert(9, models.SeverityHigh)}, 14, models.AlgorithmLinear)
	require.Error(t, err)

	require.Eventually(t, func() bool { return webhook.delivered() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, webhook.attempts())
	assert.Equal(t, 1, kafka.attempts())
	assert.Equal(t, 1, kafka.delivered())
	assert.Equal(t, 0, p.Pending())
}

func TestAlertPipeline_RestartsAfterStop(t *testing.T) {
	sink := &flakySink{failures: 1}
	p := NewAlertPipeline(sink, nil, metrics.Nop{},
		WithCooldown(0),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Stop()
	p.Stop()

	_, err := p.Dispatch(ctx, []models.Alert{alert(3, models.SeverityMedium)}, 7, models.AlgorithmLinear)
	require.Error(t, err)
	assert.Equal(t, 1, p.Pending())

	p.Start(ctx)
	defer p.Stop()
	require.Eventually(t, func() bool { return sink.delivered() == 1 }, 2*time.Second, 5*time.Millisecond)
}
