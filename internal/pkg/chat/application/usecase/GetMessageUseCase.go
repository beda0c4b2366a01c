package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
	profiles "github.com/ruturajs19/chat-app/internal/repository/port"
)

// GetMessageInput identifies the conversation and who is reading it.
type GetMessageInput struct {
	ConversationID string
	ViewerID       string
}

type GetMessageOutput struct {
	Messages    []chat.Message
	Counterpart chat.Profile
}

// GetMessageUseCase lists a conversation for one of its participants and,
// as a side effect of the read, marks messages sent to the viewer as seen.
type GetMessageUseCase struct {
	Repo     repository.ChatRepository
	Profiles profiles.ProfileRepository
	MarkSeen *MarkSeenUseCase
	Log      zerolog.Logger
}

func NewGetMessageUseCase(repo repository.ChatRepository, profileRepo profiles.ProfileRepository, markSeen *MarkSeenUseCase, log zerolog.Logger) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo, Profiles: profileRepo, MarkSeen: markSeen, Log: log}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) (*GetMessageOutput, error) {
	if in.ConversationID == "" {
		return nil, chat.ErrInvalidPayload
	}
	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, storeError(err)
	}
	other, ok := conv.Counterpart(in.ViewerID)
	if !ok {
		return nil, chat.ErrNotParticipant
	}

	msgs, err := uc.Repo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, storeError(err)
	}

	// Only what the viewer is about to receive counts as seen.
	if len(msgs) > 0 {
		ids, at, err := uc.MarkSeen.Execute(ctx, MarkSeenInput{
			ConversationID: conv.ID,
			ViewerID:       in.ViewerID,
			UpTo:           msgs[len(msgs)-1].CreatedAt,
		})
		if err != nil {
			// The listing is still valid; seen state will reconcile on the next read.
			uc.Log.Warn().Err(err).Str("chat_id", conv.ID).Msg("mark seen after fetch failed")
		}
		applySeen(msgs, ids, at)
	}

	return &GetMessageOutput{
		Messages:    msgs,
		Counterpart: resolveProfile(ctx, uc.Profiles, other, uc.Log),
	}, nil
}

// applySeen reflects a MarkSeen result on already loaded messages.
func applySeen(msgs []chat.Message, ids []string, at time.Time) {
	if len(ids) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for i := range msgs {
		if _, ok := seen[msgs[i].ID]; ok {
			msgs[i].MarkSeen(at)
		}
	}
}
