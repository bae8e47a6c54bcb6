package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"OeeForecast/internal/domain/models"
	pkgkafka "OeeForecast/pkg/kafka"

	"github.com/google/uuid"
)

// BatchWriter is the producer surface used by the Kafka publishers.
type BatchWriter interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaAlertPublisher ships alert events keyed by machine id.
type KafkaAlertPublisher struct {
	w     BatchWriter
	topic string
	now   func() time.Time
}

func NewKafkaAlertPublisher(w BatchWriter, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{w: w, topic: topic, now: time.Now}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, ev *models.AlertEvent) error {
	return p.PublishBatch(ctx, []*models.AlertEvent{ev})
}

// PublishBatch assigns missing ids and timestamps, then writes every event in one batch.
func (p *KafkaAlertPublisher) PublishBatch(ctx context.Context, evs []*models.AlertEvent) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(evs))
	for _, ev := range evs {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = p.now().UTC()
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(strconv.FormatInt(ev.Alert.MachineID, 10)),
			Value: ev,
			Headers: map[string]string{
				"event_id": ev.ID,
				"severity": string(ev.Alert.Severity),
			},
		})
	}
	if err := p.w.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish alerts: %w", err)
	}
	return nil
}

// Name identifies the publisher as an alert notifier.
func (p *KafkaAlertPublisher) Name() string { return "kafka" }

// Notify forwards alerts to the bus.
func (p *KafkaAlertPublisher) Notify(ctx context.Context, evs []*models.AlertEvent) error {
	return p.PublishBatch(ctx, evs)
}

func (p *KafkaAlertPublisher) Close() error { return p.w.Close() }

// KafkaThresholdEvents announces threshold changes so other instances can drop cached rows.
type KafkaThresholdEvents struct {
	w     BatchWriter
	topic string
}

func NewKafkaThresholdEvents(w BatchWriter, topic string) *KafkaThresholdEvents {
	return &KafkaThresholdEvents{w: w, topic: topic}
}

func (p *KafkaThresholdEvents) PublishThresholdEvent(ctx context.Context, ev models.ThresholdEvent) error {
	msg := pkgkafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ThresholdID, 10)),
		Value: ev,
	}
	if err := p.w.PublishBatch(ctx, p.topic, []pkgkafka.Message{msg}); err != nil {
		return fmt.Errorf("publish threshold event: %w", err)
	}
	return nil
}
