package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
	profiles "github.com/ruturajs19/chat-app/internal/repository/port"
)

const profileLookupConcurrency = 8

// ChatListItem is one row of a user's chat list.
type ChatListItem struct {
	Summary     chat.ConversationSummary
	Counterpart chat.Profile
}

// ListChatsUseCase lists a user's conversations, most recent first, each
// with the other participant's profile and the viewer's unseen count.
type ListChatsUseCase struct {
	Repo     repository.ChatRepository
	Profiles profiles.ProfileRepository
	Log      zerolog.Logger
}

func NewListChatsUseCase(repo repository.ChatRepository, profileRepo profiles.ProfileRepository, log zerolog.Logger) *ListChatsUseCase {
	return &ListChatsUseCase{Repo: repo, Profiles: profileRepo, Log: log}
}

func (uc *ListChatsUseCase) Execute(ctx context.Context, userID string) ([]ChatListItem, error) {
	if userID == "" {
		return nil, chat.ErrInvalidPayload
	}
	summaries, err := uc.Repo.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}

	items := make([]ChatListItem, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileLookupConcurrency)
	for i, s := range summaries {
		i := i
		items[i].Summary = s
		other, _ := s.Conversation.Counterpart(userID)
		g.Go(func() error {
			items[i].Counterpart = resolveProfile(gctx, uc.Profiles, other, uc.Log)
			return nil
		})
	}
	// resolveProfile never fails, so Wait only synchronizes.
	_ = g.Wait()
	return items, nil
}
