package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	v1 "github.com/ruturajs19/chat-app/cmd/api/router/v1"
	"github.com/ruturajs19/chat-app/internal/config"
	"github.com/ruturajs19/chat-app/internal/infrastructure/auth"
	cacheAdapter "github.com/ruturajs19/chat-app/internal/infrastructure/cache/adapter"
	cport "github.com/ruturajs19/chat-app/internal/infrastructure/cache/port"
	"github.com/ruturajs19/chat-app/internal/infrastructure/database"
	"github.com/ruturajs19/chat-app/internal/infrastructure/httpserver"
	queueAdapter "github.com/ruturajs19/chat-app/internal/infrastructure/queue/adapter"
	qport "github.com/ruturajs19/chat-app/internal/infrastructure/queue/port"
	"github.com/ruturajs19/chat-app/internal/infrastructure/realtime"
	storageAdapter "github.com/ruturajs19/chat-app/internal/infrastructure/storage/adapter"
	storage "github.com/ruturajs19/chat-app/internal/infrastructure/storage/port"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/task"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/controller"
	httpHandler "github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/http"
	profileAdapter "github.com/ruturajs19/chat-app/internal/repository/adapter"
	profiles "github.com/ruturajs19/chat-app/internal/repository/port"
)

// ProvidePool connects to Postgres and applies migrations. With the memory
// store driver there is no pool and the returned pointer is nil.
func ProvidePool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory conversation store; data is lost on restart")
		return nil, func() {}, nil
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL, database.WithMaxConns(cfg.DBMaxConns))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.RunMigrations {
		if err := database.Migrate(pool, log); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return pool, pool.Close, nil
}

func ProvideChatRepository(pool *pgxpool.Pool) repository.ChatRepository {
	if pool == nil {
		return repoAdapter.NewMemoryChatRepository()
	}
	return repoAdapter.NewPgChatRepository(pool)
}

// ProvideCache dials Redis, or keeps the cache in process when the memory
// store driver runs the service without external dependencies.
func ProvideCache(ctx context.Context, cfg *config.Config) (cport.Cache, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		mc, err := cacheAdapter.NewMemoryCache(cacheAdapter.DefaultMemoryCacheSize)
		if err != nil {
			return nil, nil, err
		}
		return mc, func() { _ = mc.Close() }, nil
	}
	rc, err := cacheAdapter.NewRedisAdapter(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

func ProvideQueueClient(cfg *config.Config) (qport.Client, func(), error) {
	client, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create queue client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

func ProvideNotifier(client qport.Client, cfg *config.Config, log zerolog.Logger) *task.Notifier {
	return task.NewNotifier(client, cfg.NotificationQueue, log)
}

func ProvideObjectStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storageAdapter.S3Storage, error) {
	return storageAdapter.NewS3Storage(ctx, storageAdapter.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKeyID:   cfg.S3AccessKeyID,
		SecretKey:     cfg.S3SecretKey,
		UsePathStyle:  cfg.S3UsePathStyle,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}, log)
}

func ProvideProfileRepository(cfg *config.Config, cache cport.Cache, log zerolog.Logger) (profiles.ProfileRepository, error) {
	return profileAdapter.NewHTTPProfileRepository(profileAdapter.ProfileClientConfig{
		BaseURL:   cfg.UserServiceURL,
		Timeout:   cfg.UserServiceTimeout,
		CacheSize: cfg.ProfileCacheSize,
		CacheTTL:  cfg.ProfileCacheTTL,
	}, cache, log)
}

func ProvideAuthValidator(cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(cfg.JWTSecret, log)
}

func ProvideRealtimeRouter(log zerolog.Logger) *realtime.Router {
	return realtime.NewRouter(realtime.NewRegistry(), log)
}

func ProvideSendMessageUseCase(
	cfg *config.Config,
	repo repository.ChatRepository,
	store storage.ObjectStore,
	emitter usecase.EventEmitter,
	publisher usecase.Publisher,
	markSeen *usecase.MarkSeenUseCase,
	log zerolog.Logger,
) *usecase.SendMessageUseCase {
	return usecase.NewSendMessageUseCase(repo, store, emitter, publisher, markSeen, cfg.MaxImageBytes, cfg.S3KeyPrefix, log)
}

func ProvideControllers(
	cfg *config.Config,
	createChat *usecase.CreateChatUseCase,
	listChats *usecase.ListChatsUseCase,
	sendMessage *usecase.SendMessageUseCase,
	getMessage *usecase.GetMessageUseCase,
	join *usecase.JoinConversationUseCase,
	router *realtime.Router,
	tokens *auth.Validator,
	log zerolog.Logger,
) httpHandler.Controllers {
	timeout := cfg.RequestTimeout
	return httpHandler.Controllers{
		CreateChat:  controller.NewCreateChatController(createChat, timeout, log),
		ListChats:   controller.NewListChatsController(listChats, timeout, log),
		SendMessage: controller.NewSendMessageController(sendMessage, cfg.MaxImageBytes, timeout, log),
		GetMessage:  controller.NewGetMessageController(getMessage, timeout, log),
		Socket:      controller.NewChatSocketController(router, tokens, join, timeout, log),
	}
}

// ProvideReadiness lists the dependencies /readyz checks.
func ProvideReadiness(pool *pgxpool.Pool, cache cport.Cache, store *storageAdapter.S3Storage) map[string]httpserver.ReadinessCheck {
	checks := map[string]httpserver.ReadinessCheck{
		"redis": cache.Ping,
		"s3":    store.Health,
	}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	return checks
}

func ProvideHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	ctl httpHandler.Controllers,
	tokens *auth.Validator,
	readiness map[string]httpserver.ReadinessCheck,
) *httpserver.HTTPServer {
	return httpserver.New(httpserver.Options{
		Addr:            cfg.Addr(),
		ServiceName:     cfg.ServiceName,
		Production:      cfg.Environment == "production",
		ShutdownTimeout: cfg.ShutdownTimeout,
		Readiness:       readiness,
	}, log, v1.Routes(ctl, tokens))
}
