package notify

import (
	"context"
	"errors"
	"fmt"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	applogger "OeeForecast/pkg/logger"
)

// Fanout delivers to every notifier and joins their errors.
type Fanout struct {
	targets []domrepo.Notifier
	l       *applogger.Logger
}

func NewFanout(l *applogger.Logger, targets ...domrepo.Notifier) *Fanout {
	if l == nil {
		l = applogger.Nop()
	}
	out := make([]domrepo.Notifier, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &Fanout{targets: out, l: l}
}

func (f *Fanout) Name() string { return "fanout" }

// Notify keeps going when one target fails so the others still receive the alerts.
// A failure is returned as *DeliveryError naming the targets that did not accept the batch.
func (f *Fanout) Notify(ctx context.Context, evs []*models.AlertEvent) error {
	var (
		errs   []error
		failed []domrepo.Notifier
	)
	for _, t := range f.targets {
		if err := t.Notify(ctx, evs); err != nil {
			f.l.Warn("notifier failed",
				applogger.String("notifier", t.Name()),
				applogger.Int("alerts", len(evs)),
				applogger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			failed = append(failed, t)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &DeliveryError{
		remaining: &Fanout{targets: failed, l: f.l},
		err:       errors.Join(errs...),
	}
}

// DeliveryError is a partial fanout failure.
type DeliveryError struct {
	remaining *Fanout
	err       error
}

func (e *DeliveryError) Error() string { return e.err.Error() }

func (e *DeliveryError) Unwrap() error { return e.err }

// Remaining returns a notifier over the failed targets only, for retrying the batch.
func (e *DeliveryError) Remaining() domrepo.Notifier { return e.remaining }

// Failed lists the names of the targets that rejected the batch.
func (e *DeliveryError) Failed() []string {
	names := make([]string, 0, len(e.remaining.targets))
	for _, t := range e.remaining.targets {
		names = append(names, t.Name())
	}
	return names
}
