package usecase

import (
	"context"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
)

// EventEmitter pushes conversation events to live connections and answers
// presence questions about them.
type EventEmitter interface {
	EmitNewMessage(conversationID string, msg chat.Message) int
	EmitMessagesSeen(conversationID, viewerID string, messageIDs []string) int
	IsUserInRoom(userID, conversationID string) bool
	IsUserOnline(userID string) bool
}

// Publisher hands notifications to other services. It never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any)
}
