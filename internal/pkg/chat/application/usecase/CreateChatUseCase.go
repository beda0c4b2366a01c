package usecase

import (
	"context"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
)

// CreateChatInput opens (or finds) the conversation between the caller and
// OtherUserID. UserID, when supplied by the client, must be the caller.
type CreateChatInput struct {
	CallerID    string
	UserID      string
	OtherUserID string
}

type CreateChatOutput struct {
	Conversation chat.Conversation
	Created      bool
}

// CreateChatUseCase handles creation of a direct conversation.
type CreateChatUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateChatUseCase(repo repository.ChatRepository) *CreateChatUseCase {
	return &CreateChatUseCase{Repo: repo}
}

// Execute returns the single conversation for the pair, creating it on first use.
func (uc *CreateChatUseCase) Execute(ctx context.Context, in CreateChatInput) (*CreateChatOutput, error) {
	if in.UserID != "" && in.UserID != in.CallerID {
		return nil, chat.ErrNotParticipant
	}
	pair, err := chat.NewPair(in.CallerID, in.OtherUserID)
	if err != nil {
		return nil, err
	}

	conv, created, err := uc.Repo.FindOrCreateConversation(ctx, pair)
	if err != nil {
		return nil, storeError(err)
	}
	return &CreateChatOutput{Conversation: conv, Created: created}, nil
}
