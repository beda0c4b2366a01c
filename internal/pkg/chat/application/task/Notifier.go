package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/metrics"
	qport "github.com/ruturajs19/chat-app/internal/infrastructure/queue/port"
)

const (
	defaultMaxRetry       = 5
	defaultPublishTimeout = 3 * time.Second
)

// Notifier publishes cross-service notifications onto the task queue.
// Publishing is fire-and-forget: failures are logged and counted, never
// returned, and the caller is not held up by the broker.
type Notifier struct {
	client  qport.Client
	queue   string
	timeout time.Duration
	log     zerolog.Logger
	async   bool
}

func NewNotifier(client qport.Client, queue string, log zerolog.Logger) *Notifier {
	return &Notifier{
		client:  client,
		queue:   queue,
		timeout: defaultPublishTimeout,
		log:     log.With().Str("component", "notifier").Logger(),
		async:   true,
	}
}

// Publish enqueues payload under topic. It returns immediately.
func (n *Notifier) Publish(ctx context.Context, topic string, payload any) {
	// Detach from the request so a finished response does not cancel the enqueue.
	ctx = context.WithoutCancel(ctx)
	if !n.async {
		n.publish(ctx, topic, payload)
		return
	}
	go n.publish(ctx, topic, payload)
}

func (n *Notifier) publish(ctx context.Context, topic string, payload any) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordNotification(topic, err)
		n.log.Error().Err(err).Str("topic", topic).Msg("encode notification")
		return
	}

	id, err := n.client.Enqueue(ctx, qport.Task{Type: topic, Payload: body}, qport.EnqueueOption{
		Queue:    n.queue,
		MaxRetry: defaultMaxRetry,
	})
	metrics.RecordNotification(topic, err)
	if err != nil {
		n.log.Warn().Err(err).Str("topic", topic).Msg("publish notification failed")
		return
	}
	n.log.Debug().Str("topic", topic).Str("task_id", id).Msg("notification published")
}
