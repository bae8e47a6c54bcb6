package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	applogger "OeeForecast/pkg/logger"
)

// ConsumerHook observes message handling. BeforeHandle may replace the context or payload;
// an error from it skips the handler and counts as a failed attempt.
type ConsumerHook interface {
	BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error)
	AfterHandle(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
	OnError(ctx context.Context, topic string, km kafka.Message, data []byte, err error)
}

// NoopHook does nothing.
type NoopHook struct{}

func (NoopHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	return ctx, km, data, nil
}

func (NoopHook) AfterHandle(context.Context, string, kafka.Message, []byte, error) {}

func (NoopHook) OnError(context.Context, string, kafka.Message, []byte, error) {}

type ctxKey string

const (
	ctxStartTime ctxKey = "kafka_start_time"
	ctxTraceID   ctxKey = "kafka_trace_id"
)

// TraceID returns the trace id a LoggingHook stored in ctx.
func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(ctxTraceID).(string)
	return v
}

// LoggingHook carries the trace_id header into the context and logs slow or failed handling.
type LoggingHook struct {
	Log  *applogger.Logger
	Slow time.Duration
}

func (h LoggingHook) BeforeHandle(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	ctx = context.WithValue(ctx, ctxStartTime, time.Now())
	for _, hd := range km.Headers {
		if hd.Key == "trace_id" && len(hd.Value) > 0 {
			ctx = context.WithValue(ctx, ctxTraceID, string(hd.Value))
		}
	}
	return ctx, km, data, nil
}

func (h LoggingHook) AfterHandle(ctx context.Context, topic string, km kafka.Message, _ []byte, err error) {
	start, ok := ctx.Value(ctxStartTime).(time.Time)
	if !ok || err != nil || h.Slow <= 0 {
		return
	}
	if d := time.Since(start); d > h.Slow {
		h.Log.Warn("slow kafka handler",
			applogger.String("topic", topic),
			applogger.Int64("offset", km.Offset),
			applogger.Duration("duration_ms", d))
	}
}

func (h LoggingHook) OnError(ctx context.Context, topic string, km kafka.Message, _ []byte, err error) {
	h.Log.Warn("kafka handle attempt failed",
		applogger.String("topic", topic),
		applogger.Int("partition", km.Partition),
		applogger.String("trace_id", TraceID(ctx)),
		applogger.Error(err))
}
