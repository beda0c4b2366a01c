package controller

import (
	"github.com/ruturajs19/chat-app/internal/infrastructure/realtime"
	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/dto"
)

// SocketEmitter adapts the realtime router to the use case event port,
// rendering domain messages in their wire shape.
type SocketEmitter struct {
	Router *realtime.Router
}

var _ usecase.EventEmitter = (*SocketEmitter)(nil)

func NewSocketEmitter(router *realtime.Router) *SocketEmitter {
	return &SocketEmitter{Router: router}
}

func (e *SocketEmitter) EmitNewMessage(conversationID string, msg chat.Message) int {
	return e.Router.EmitNewMessage(conversationID, dto.FromMessage(msg))
}

func (e *SocketEmitter) EmitMessagesSeen(conversationID, viewerID string, messageIDs []string) int {
	return e.Router.EmitMessagesSeen(conversationID, viewerID, messageIDs)
}

func (e *SocketEmitter) IsUserInRoom(userID, conversationID string) bool {
	return e.Router.IsUserInRoom(userID, conversationID)
}

func (e *SocketEmitter) IsUserOnline(userID string) bool {
	return e.Router.IsUserOnline(userID)
}
