package usecase

import (
	"context"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
)

// JoinConversationInput validates a request to attach a connection to a conversation room.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationUseCase ensures the user belongs to the conversation before joining the realtime room.
type JoinConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewJoinConversationUseCase(repo repository.ChatRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return chat.ErrInvalidPayload
	}
	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return storeError(err)
	}
	if !conv.HasParticipant(in.UserID) {
		return chat.ErrNotParticipant
	}
	return nil
}
