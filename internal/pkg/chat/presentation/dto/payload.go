// Package dto holds the JSON shapes the chat API and socket share with clients.
package dto

import (
	"time"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
)

type ImagePayload struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type MessagePayload struct {
	ID          string        `json:"_id"`
	ChatID      string        `json:"chatId"`
	Sender      string        `json:"sender"`
	Text        string        `json:"text,omitempty"`
	Image       *ImagePayload `json:"image,omitempty"`
	MessageType string        `json:"messageType"`
	Seen        bool          `json:"seen"`
	SeenAt      *time.Time    `json:"seenAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type LatestMessagePayload struct {
	Text   string `json:"text"`
	Sender string `json:"senderId"`
}

type ChatPayload struct {
	ID            string                `json:"_id"`
	Users         []string              `json:"users"`
	LatestMessage *LatestMessagePayload `json:"latestMessage"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	UnseenCount   int                   `json:"unseenCount"`
}

type ProfilePayload struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ChatListEntry is one element of GET /chat/all.
type ChatListEntry struct {
	ID   string         `json:"_id"`
	User ProfilePayload `json:"user"`
	Chat ChatPayload    `json:"chat"`
}

func FromMessage(m chat.Message) MessagePayload {
	out := MessagePayload{
		ID:          m.ID,
		ChatID:      m.ConversationID,
		Sender:      m.SenderID,
		Text:        m.Text,
		MessageType: m.Type.String(),
		Seen:        m.Seen,
		SeenAt:      m.SeenAt,
		CreatedAt:   m.CreatedAt,
	}
	if m.Image != nil {
		out.Image = &ImagePayload{URL: m.Image.URL, PublicID: m.Image.PublicID}
	}
	return out
}

func FromMessages(msgs []chat.Message) []MessagePayload {
	out := make([]MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, FromMessage(m))
	}
	return out
}

func FromConversation(c chat.Conversation, unseen int) ChatPayload {
	out := ChatPayload{
		ID:          c.ID,
		Users:       c.Participants.Users(),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		UnseenCount: unseen,
	}
	if c.LatestMessage != nil {
		out.LatestMessage = &LatestMessagePayload{Text: c.LatestMessage.Text, Sender: c.LatestMessage.SenderID}
	}
	return out
}

func FromProfile(p chat.Profile) ProfilePayload {
	return ProfilePayload{ID: p.ID, Name: p.Name, Email: p.Email}
}
