package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
)

// MemoryChatRepository keeps conversations in process memory. It backs the
// memory store driver and the use case tests.
type MemoryChatRepository struct {
	mu            sync.RWMutex
	conversations map[string]*chat.Conversation
	byPair        map[chat.Pair]string
	messages      map[string][]*chat.Message
	now           func() time.Time
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		conversations: make(map[string]*chat.Conversation),
		byPair:        make(map[chat.Pair]string),
		messages:      make(map[string][]*chat.Message),
		now:           time.Now,
	}
}

var _ repository.ChatRepository = (*MemoryChatRepository)(nil)

func (r *MemoryChatRepository) FindOrCreateConversation(_ context.Context, pair chat.Pair) (chat.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byPair[pair]; ok {
		return copyConversation(r.conversations[id]), false, nil
	}
	conv := chat.NewConversation(uuid.NewString(), pair, r.now())
	r.conversations[conv.ID] = &conv
	r.byPair[pair] = conv.ID
	return conv, true, nil
}

func (r *MemoryChatRepository) GetConversation(_ context.Context, conversationID string) (chat.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		return chat.Conversation{}, chat.ErrNotFound
	}
	return copyConversation(conv), nil
}

func (r *MemoryChatRepository) ListConversationsForUser(_ context.Context, userID string) ([]chat.ConversationSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []chat.ConversationSummary
	for id, conv := range r.conversations {
		if !conv.HasParticipant(userID) {
			continue
		}
		unseen := 0
		for _, m := range r.messages[id] {
			if m.CanBeSeenBy(userID) {
				unseen++
			}
		}
		out = append(out, chat.ConversationSummary{Conversation: copyConversation(conv), UnseenCount: unseen})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Conversation, out[j].Conversation
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *MemoryChatRepository) AppendMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[m.ConversationID]
	if !ok {
		return chat.Message{}, chat.ErrNotFound
	}
	updated := copyConversation(conv)
	stored, err := updated.PostMessage(m, r.now())
	if err != nil {
		return chat.Message{}, err
	}
	*conv = updated
	r.messages[conv.ID] = append(r.messages[conv.ID], copyMessage(&stored))
	return stored, nil
}

func (r *MemoryChatRepository) ListMessages(_ context.Context, conversationID string) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.conversations[conversationID]; !ok {
		return nil, chat.ErrNotFound
	}
	msgs := r.messages[conversationID]
	out := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, *copyMessage(m))
	}
	// Append order already matches (created_at, id) except for equal
	// timestamps; keep the tie-break identical to the SQL adapter.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryChatRepository) MarkSeen(_ context.Context, conversationID, viewerID string, at, upTo time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conversationID]; !ok {
		return nil, chat.ErrNotFound
	}
	var ids []string
	for _, m := range r.messages[conversationID] {
		if !upTo.IsZero() && m.CreatedAt.After(upTo) {
			continue
		}
		if m.CanBeSeenBy(viewerID) && m.MarkSeen(at) {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func copyConversation(c *chat.Conversation) chat.Conversation {
	out := *c
	if c.LatestMessage != nil {
		lm := *c.LatestMessage
		out.LatestMessage = &lm
	}
	return out
}

func copyMessage(m *chat.Message) *chat.Message {
	out := *m
	if m.Image != nil {
		img := *m.Image
		out.Image = &img
	}
	if m.SeenAt != nil {
		ts := *m.SeenAt
		out.SeenAt = &ts
	}
	return &out
}
