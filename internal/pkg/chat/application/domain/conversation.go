package chat

import "time"

// Conversation is a direct thread between exactly two users.
type Conversation struct {
	ID            string
	Participants  Pair
	LatestMessage *LatestMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LatestMessage is the preview snapshot shown in conversation lists.
type LatestMessage struct {
	Text     string
	SenderID string
}

// ConversationSummary is a conversation as seen by one participant.
type ConversationSummary struct {
	Conversation Conversation
	UnseenCount  int
}

func (c Conversation) HasParticipant(userID string) bool {
	return c.Participants.Contains(userID)
}

// Counterpart returns the other participant from viewerID's perspective.
func (c Conversation) Counterpart(viewerID string) (string, bool) {
	return c.Participants.Other(viewerID)
}

// NewConversation opens a conversation for pair at now.
func NewConversation(id string, pair Pair, now time.Time) Conversation {
	ts := now.UTC().Truncate(time.Microsecond)
	return Conversation{ID: id, Participants: pair, CreatedAt: ts, UpdatedAt: ts}
}
