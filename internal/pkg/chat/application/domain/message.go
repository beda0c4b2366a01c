package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType represents the kind of content a message carries.
type MessageType int16

const (
	MessageTypeText  MessageType = 0
	MessageTypeImage MessageType = 1
)

// ImagePreview replaces the text of image messages in conversation previews.
const ImagePreview = "📷 Image"

func (t MessageType) String() string {
	switch t {
	case MessageTypeText:
		return "text"
	case MessageTypeImage:
		return "image"
	}
	return "unknown"
}

// Image references an uploaded object.
type Image struct {
	URL      string
	PublicID string
}

// Message is an entry in a conversation. Exactly one of Text and Image is set,
// matching Type. Seen only ever moves from false to true.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Type           MessageType
	Text           string
	Image          *Image
	Seen           bool
	SeenAt         *time.Time
	CreatedAt      time.Time
}

// NewMessage validates the payload of a message about to be sent and gives
// it an id. text is trimmed; a blank text counts as absent.
func NewMessage(conversationID, senderID, text string, image *Image) (Message, error) {
	if conversationID == "" || senderID == "" {
		return Message{}, invalid("conversation and sender are required")
	}

	text = strings.TrimSpace(text)
	if image != nil && image.URL == "" {
		image = nil
	}

	m := Message{ID: uuid.NewString(), ConversationID: conversationID, SenderID: senderID}
	switch {
	case text != "" && image != nil:
		return Message{}, invalid("a message carries either text or an image, not both")
	case text != "":
		m.Type = MessageTypeText
		m.Text = text
	case image != nil:
		img := *image
		m.Type = MessageTypeImage
		m.Image = &img
	default:
		return Message{}, invalid("message must contain text or an image")
	}
	return m, nil
}

// Preview is the text used for the conversation's latest message snapshot.
func (m Message) Preview() string {
	if m.Type == MessageTypeImage {
		return ImagePreview
	}
	return m.Text
}
