package queue

import (
	"context"
	"encoding/json"
	"time"
)

// Publisher enqueues work for background processing.
type Publisher interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) (string, error)
	Status(ctx context.Context, id string) (*Status, error)
}

// Config contains the configuration for the queue.
type Config struct {
	Workers      int           // number of workers
	RetryLimit   int           // retries before a message is dead-lettered
	RetryDelay   time.Duration // base delay, doubled per attempt
	PollInterval time.Duration // BRPOP timeout
	StatusTTL    time.Duration // how long job status is kept
}

// Message is the envelope stored in Redis.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}

// State of a queued job.
type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateRetry   State = "retry"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Status is the externally visible progress of one job.
type Status struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	State     State     `json:"state"`
	Attempts  int       `json:"attempts"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// retryDelay doubles base for each attempt already made.
func retryDelay(base time.Duration, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > 10 {
		attempts = 10
	}
	return base << uint(attempts-1)
}
