package repository

import (
	"context"
	"time"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for direct conversations.
//
// Domain outcomes are reported with the chat package sentinels
// (chat.ErrNotFound, chat.ErrNotParticipant); any other error is an
// infrastructure failure.
type ChatRepository interface {
	// FindOrCreateConversation returns the single conversation for pair,
	// creating it if needed. created reports whether this call created it.
	// Concurrent callers for the same pair always observe one conversation.
	FindOrCreateConversation(ctx context.Context, pair chat.Pair) (conv chat.Conversation, created bool, err error)

	GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error)

	// ListConversationsForUser returns userID's conversations, most recently
	// updated first, with the count of messages userID has not seen.
	ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error)

	// AppendMessage persists m and advances the conversation snapshot
	// atomically. The stored message, with its timestamp, is returned.
	AppendMessage(ctx context.Context, m chat.Message) (chat.Message, error)

	// ListMessages returns the conversation's messages oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error)

	// MarkSeen marks every message not sent by viewerID, not yet seen and
	// created at or before upTo as seen at at, returning the ids that changed.
	// A zero upTo means no bound. Repeating it is harmless.
	MarkSeen(ctx context.Context, conversationID, viewerID string, at, upTo time.Time) ([]string, error)
}
