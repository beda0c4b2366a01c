package port

import (
	"context"
	"time"
)

// Task is a background job: a stable type identifier plus opaque payload bytes.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error asks the backend to retry.
// Handlers must be idempotent because delivery is at-least-once.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption controls enqueue behavior. Zero values mean unspecified.
type EnqueueOption struct {
	Queue     string
	ProcessIn time.Duration
	ProcessAt time.Time // wins over ProcessIn
	MaxRetry  int
	UniqueTTL time.Duration
	Retention time.Duration
	Deadline  time.Time
}

// Client enqueues tasks for background processing.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs workers. Run blocks until ctx is canceled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}
