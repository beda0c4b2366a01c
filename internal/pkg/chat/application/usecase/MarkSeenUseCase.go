package usecase

import (
	"context"
	"time"

	"github.com/ruturajs19/chat-app/internal/infrastructure/metrics"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
)

type MarkSeenInput struct {
	ConversationID string
	ViewerID       string
	// UpTo limits the update to messages created at or before it. Zero means all.
	UpTo time.Time
}

// MarkSeenUseCase reconciles seen state for a viewer and tells the room
// about the messages that changed. With nothing to update it emits nothing.
type MarkSeenUseCase struct {
	Repo    repository.ChatRepository
	Emitter EventEmitter
	Now     func() time.Time
}

func NewMarkSeenUseCase(repo repository.ChatRepository, emitter EventEmitter) *MarkSeenUseCase {
	return &MarkSeenUseCase{Repo: repo, Emitter: emitter, Now: time.Now}
}

// Execute returns the ids of messages that transitioned to seen.
func (uc *MarkSeenUseCase) Execute(ctx context.Context, in MarkSeenInput) ([]string, time.Time, error) {
	at := uc.Now().UTC().Truncate(time.Microsecond)
	ids, err := uc.Repo.MarkSeen(ctx, in.ConversationID, in.ViewerID, at, in.UpTo)
	if err != nil {
		return nil, at, storeError(err)
	}
	if len(ids) == 0 {
		return nil, at, nil
	}
	metrics.RecordMessagesSeen(len(ids))
	uc.Emitter.EmitMessagesSeen(in.ConversationID, in.ViewerID, ids)
	return ids, at, nil
}
