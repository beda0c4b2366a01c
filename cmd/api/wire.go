//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/config"
	storageAdapter "github.com/ruturajs19/chat-app/internal/infrastructure/storage/adapter"
	storage "github.com/ruturajs19/chat-app/internal/infrastructure/storage/port"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/task"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/controller"
)

// ProviderSet is the wire provider set for the chat API.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvidePool,
	ProvideChatRepository,
	ProvideCache,
	ProvideQueueClient,
	ProvideNotifier,
	wire.Bind(new(usecase.Publisher), new(*task.Notifier)),
	ProvideObjectStore,
	wire.Bind(new(storage.ObjectStore), new(*storageAdapter.S3Storage)),
	ProvideProfileRepository,
	ProvideAuthValidator,
	ProvideRealtimeRouter,
	controller.NewSocketEmitter,
	wire.Bind(new(usecase.EventEmitter), new(*controller.SocketEmitter)),

	// Use cases
	usecase.NewMarkSeenUseCase,
	usecase.NewCreateChatUseCase,
	usecase.NewJoinConversationUseCase,
	usecase.NewGetMessageUseCase,
	usecase.NewListChatsUseCase,
	ProvideSendMessageUseCase,

	// Interface providers
	ProvideControllers,
	ProvideReadiness,
	ProvideHTTPServer,

	// Application
	NewApplication,
)

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
