package chat

import (
	"errors"
	"fmt"
	"time"
)

// Domain-level errors for chat behaviors.
var (
	ErrNotFound       = errors.New("chat: conversation not found")
	ErrNotParticipant = errors.New("chat: user is not a participant in the conversation")
	ErrInvalidPayload = errors.New("chat: invalid payload")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

// PostMessage admits m into the conversation: it checks identity and
// membership, stamps the creation time and advances the latest message
// snapshot. Timestamps strictly increase within a conversation, so send
// order survives a stalled or skewed clock and LatestMessage is always the
// newest message.
func (c *Conversation) PostMessage(m Message, now time.Time) (Message, error) {
	if m.ConversationID == "" || m.ConversationID != c.ID {
		return Message{}, invalid("message does not belong to conversation %q", c.ID)
	}
	if !c.HasParticipant(m.SenderID) {
		return Message{}, ErrNotParticipant
	}

	ts := now.UTC().Truncate(time.Microsecond)
	if !ts.After(c.UpdatedAt) {
		ts = c.UpdatedAt.Add(time.Microsecond)
	}
	m.CreatedAt = ts
	m.Seen = false
	m.SeenAt = nil

	c.LatestMessage = &LatestMessage{Text: m.Preview(), SenderID: m.SenderID}
	c.UpdatedAt = ts
	return m, nil
}

// CanBeSeenBy reports whether viewerID marking m as seen is meaningful:
// only the recipient sees a message, and only once.
func (m Message) CanBeSeenBy(viewerID string) bool {
	return !m.Seen && m.SenderID != viewerID
}

// MarkSeen flips m to seen. It returns false if m was already seen.
func (m *Message) MarkSeen(at time.Time) bool {
	if m.Seen {
		return false
	}
	ts := at.UTC().Truncate(time.Microsecond)
	m.Seen = true
	m.SeenAt = &ts
	return true
}
