package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	applogger "OeeForecast/pkg/logger"

	"github.com/google/uuid"
)

// Locker grants a key to one caller for ttl.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// AlertPipeline sits between alert evaluation and the notifiers.
// It suppresses repeats per machine and severity within the cooldown, and buffers
// batches the sink rejected so they are retried with backoff. When the sink reports
// which of its targets failed, only those targets see the retry.
// Start and Stop may be called again after Stop.
type AlertPipeline struct {
	sink     domrepo.Notifier
	locks    Locker
	metrics  domrepo.Metrics
	l        *applogger.Logger
	cooldown time.Duration
	bufSize  int
	bufCh    chan pendingBatch
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	mu       sync.Mutex
	now      func() time.Time
	backoff  time.Duration
	maxWait  time.Duration
}

type PipelineOption func(*AlertPipeline)

// PartialFailure is implemented by sink errors that know which targets still need the batch.
type PartialFailure interface {
	Remaining() domrepo.Notifier
}

type pendingBatch struct {
	evs    []*models.AlertEvent
	target domrepo.Notifier
}

// WithCooldown sets the repeat suppression window. Zero disables it.
func WithCooldown(d time.Duration) PipelineOption {
	return func(p *AlertPipeline) {
		if d >= 0 {
			p.cooldown = d
		}
	}
}

// WithBufferSize sets how many failed batches are kept for retry.
func WithBufferSize(n int) PipelineOption {
	return func(p *AlertPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithBackoff sets the first and the maximum retry wait.
func WithBackoff(initial, max time.Duration) PipelineOption {
	return func(p *AlertPipeline) {
		if initial > 0 {
			p.backoff = initial
		}
		if max >= initial && max > 0 {
			p.maxWait = max
		}
	}
}

// WithPipelineLogger injects a structured logger.
func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *AlertPipeline) {
		if l != nil {
			p.l = l
		}
	}
}

// WithPipelineClock replaces time.Now.
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *AlertPipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewAlertPipeline creates a pipeline delivering to sink.
func NewAlertPipeline(sink domrepo.Notifier, locks Locker, metrics domrepo.Metrics, opts ...PipelineOption) *AlertPipeline {
	p := &AlertPipeline{
		sink:     sink,
		locks:    locks,
		metrics:  metrics,
		l:        applogger.Nop(),
		cooldown: time.Hour,
		bufSize:  256,
		now:      time.Now,
		backoff:  100 * time.Millisecond,
		maxWait:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan pendingBatch, p.bufSize)
	return p
}

// Start launches the retry loop for buffered batches.
func (p *AlertPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stop, done := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.flushLoop(ctx, stop, done)
}

// Stop ends the retry loop. Batches still buffered stay queued for the next Start.
func (p *AlertPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	stop, done := p.stopCh, p.doneCh
	p.mu.Unlock()
	close(stop)
	<-done
}

// Dispatch wraps alerts into events, drops those still in cooldown and delivers the rest.
// It returns the events accepted for delivery. A sink failure buffers the batch and is also returned.
func (p *AlertPipeline) Dispatch(ctx context.Context, alerts []models.Alert, horizonDays int, alg models.Algorithm) ([]*models.AlertEvent, error) {
	start := p.now()
	evs := make([]*models.AlertEvent, 0, len(alerts))
	for _, a := range alerts {
		if !p.admit(ctx, a) {
			p.metrics.RecordError("alert_cooldown")
			continue
		}
		evs = append(evs, &models.AlertEvent{
			ID:          uuid.NewString(),
			Alert:       a,
			HorizonDays: horizonDays,
			Algorithm:   alg,
			CreatedAt:   start.UTC(),
		})
	}
	if len(evs) == 0 {
		return nil, nil
	}
	for _, ev := range evs {
		p.metrics.RecordAlert(string(ev.Alert.Severity))
	}

	if err := p.sink.Notify(ctx, evs); err != nil {
		p.metrics.RecordError("alert_deliver")
		p.buffer(pendingBatch{evs: evs, target: retryTarget(p.sink, err)})
		return evs, fmt.Errorf("alert pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("alert_dispatch", p.now().Sub(start).Seconds())
	return evs, nil
}

// Pending returns the number of buffered batches.
func (p *AlertPipeline) Pending() int {
	return len(p.bufCh)
}

func (p *AlertPipeline) admit(ctx context.Context, a models.Alert) bool {
	if p.cooldown == 0 || p.locks == nil {
		return true
	}
	key := fmt.Sprintf("alert-cooldown:%d:%s", a.MachineID, a.Severity)
	ok, err := p.locks.TryLock(ctx, key, p.cooldown)
	if err != nil {
		p.l.Warn("alert cooldown check failed", applogger.String("key", key), applogger.Error(err))
		return true
	}
	return ok
}

// retryTarget narrows a retry to the targets that failed when the error says which they were.
func retryTarget(sink domrepo.Notifier, err error) domrepo.Notifier {
	var pf PartialFailure
	if errors.As(err, &pf) {
		if r := pf.Remaining(); r != nil {
			return r
		}
	}
	return sink
}

func (p *AlertPipeline) buffer(b pendingBatch) {
	select {
	case p.bufCh <- b:
	default:
		p.metrics.RecordError("alert_buffer_full")
		p.l.Warn("alert buffer full, dropping batch", applogger.Int("alerts", len(b.evs)))
	}
}

func (p *AlertPipeline) flushLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	wait := p.backoff
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case b := <-p.bufCh:
			if err := b.target.Notify(ctx, b.evs); err != nil {
				p.metrics.RecordError("alert_flush")
				p.l.Warn("buffered alert delivery failed",
					applogger.String("target", b.target.Name()),
					applogger.Int("alerts", len(b.evs)),
					applogger.Duration("retry_in_ms", wait),
					applogger.Error(err),
				)
				p.buffer(pendingBatch{evs: b.evs, target: retryTarget(b.target, err)})
				select {
				case <-time.After(wait):
				case <-stop:
					return
				case <-ctx.Done():
					return
				}
				wait *= 2
				if wait > p.maxWait {
					wait = p.maxWait
				}
				continue
			}
			wait = p.backoff
		}
	}
}
