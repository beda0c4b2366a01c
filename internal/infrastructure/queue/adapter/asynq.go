package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/queue/port"
)

// AsynqClient implements port.Client on top of asynq and Redis.
type AsynqClient struct {
	client *asynq.Client
}

// NewAsynqClient connects a client to the Redis instance at redisURL.
func NewAsynqClient(redisURL string) (*AsynqClient, error) {
	opt, err := parseRedis(redisURL)
	if err != nil {
		return nil, err
	}
	return &AsynqClient{client: asynq.NewClient(opt)}, nil
}

var _ port.Client = (*AsynqClient)(nil)

func (a *AsynqClient) Enqueue(ctx context.Context, t port.Task, opts ...port.EnqueueOption) (string, error) {
	if t.Type == "" {
		return "", errors.New("asynq: task type is required")
	}
	info, err := a.client.EnqueueContext(ctx, asynq.NewTask(t.Type, t.Payload), toAsynqOptions(opts)...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (a *AsynqClient) Close() error {
	return a.client.Close()
}

// toAsynqOptions maps every supplied option; later values override earlier ones.
func toAsynqOptions(opts []port.EnqueueOption) []asynq.Option {
	var out []asynq.Option
	for _, op := range opts {
		if !op.ProcessAt.IsZero() {
			out = append(out, asynq.ProcessAt(op.ProcessAt))
		} else if op.ProcessIn > 0 {
			out = append(out, asynq.ProcessIn(op.ProcessIn))
		}
		if op.Queue != "" {
			out = append(out, asynq.Queue(op.Queue))
		}
		if op.MaxRetry > 0 {
			out = append(out, asynq.MaxRetry(op.MaxRetry))
		}
		if op.UniqueTTL > 0 {
			out = append(out, asynq.Unique(op.UniqueTTL))
		}
		if op.Retention > 0 {
			out = append(out, asynq.Retention(op.Retention))
		}
		if !op.Deadline.IsZero() {
			out = append(out, asynq.Deadline(op.Deadline))
		}
	}
	return out
}

// ServerConfig configures NewAsynqServer.
type ServerConfig struct {
	RedisURL    string
	Concurrency int
	// Queues is a CSV of name=weight pairs, e.g. "notifications=3,default=1".
	Queues string
}

// AsynqServer implements port.Server on top of asynq.
type AsynqServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewAsynqServer(cfg ServerConfig, log zerolog.Logger) (*AsynqServer, error) {
	opt, err := parseRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	queues := parseQueueWeights(cfg.Queues)
	if len(queues) == 0 {
		queues = map[string]int{"default": 1}
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Error().Err(err).
				Str("task_type", task.Type()).
				Int("retried", retried).
				Int("max_retry", maxRetry).
				Msg("task failed")
		}),
	})
	return &AsynqServer{server: srv, mux: asynq.NewServeMux()}, nil
}

var _ port.Server = (*AsynqServer)(nil)

func (s *AsynqServer) Register(taskType string, h port.Handler) {
	s.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		return h(ctx, port.Task{Type: t.Type(), Payload: t.Payload()})
	})
}

// Run starts processing and blocks until ctx is canceled, then shuts down.
func (s *AsynqServer) Run(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}

func (s *AsynqServer) Stop(context.Context) error {
	s.server.Shutdown()
	return nil
}

func parseRedis(redisURL string) (asynq.RedisConnOpt, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("asynq: redis url is empty")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	return opt, nil
}

// parseQueueWeights parses strings like "critical=6,default=3,low=1".
// Missing or invalid weights default to 1.
func parseQueueWeights(s string) map[string]int {
	res := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		name := strings.TrimSpace(kv[0])
		if name == "" {
			continue
		}
		w := 1
		if len(kv) == 2 {
			if i, err := strconv.Atoi(strings.TrimSpace(kv[1])); err == nil && i > 0 {
				w = i
			}
		}
		res[name] = w
	}
	return res
}
