package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"OeeForecast/internal/domain/models"
	applogger "OeeForecast/pkg/logger"
)

// ThresholdCache drops cached threshold rows.
type ThresholdCache interface {
	Invalidate(ctx context.Context)
}

// ThresholdEventsHandler consumes threshold change events and clears the local cache.
type ThresholdEventsHandler struct {
	topic string
	cache ThresholdCache
	l     *applogger.Logger
}

func NewThresholdEventsHandler(topic string, cache ThresholdCache, l *applogger.Logger) *ThresholdEventsHandler {
	return &ThresholdEventsHandler{topic: topic, cache: cache, l: l}
}

func (h *ThresholdEventsHandler) Topic() string { return h.topic }

func (h *ThresholdEventsHandler) Handle(ctx context.Context, data []byte) error {
	var ev models.ThresholdEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode threshold event: %w", err)
	}
	if ev.ThresholdID <= 0 {
		return fmt.Errorf("threshold event without id")
	}
	h.cache.Invalidate(ctx)
	h.l.Debug("threshold cache invalidated",
		applogger.String("action", ev.Action),
		applogger.Int64("threshold_id", ev.ThresholdID),
	)
	return nil
}
