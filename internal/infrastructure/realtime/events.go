package realtime

import (
	"encoding/json"
	"strings"
)

// Inbound event names.
const (
	EventJoinChat   = "joinChat"
	EventLeaveChat  = "leaveChat"
	EventTyping     = "typing"
	EventStopTyping = "stopTyping"
)

// Outbound event names.
const (
	EventConnected         = "connected"
	EventNewMessage        = "newMessage"
	EventMessagesSeen      = "messagesSeen"
	EventUserTyping        = "userTyping"
	EventUserStoppedTyping = "userStoppedTyping"
	EventOnlineUsers       = "getOnlineUser"
)

// Frame is the envelope of every websocket text message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode builds the wire bytes for an outbound event.
func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(outboundFrame{Event: event, Data: data})
}

// TypingPayload is both the inbound typing/stopTyping body and the
// outbound userTyping/userStoppedTyping body. Inbound userId is ignored.
type TypingPayload struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type MessagesSeenPayload struct {
	ChatID     string   `json:"chatId"`
	SeenBy     string   `json:"seenBy"`
	MessageIDs []string `json:"messageIds"`
}

type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
}

// DecodeChatID accepts either a bare JSON string or an object with chatId.
func DecodeChatID(data json.RawMessage) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		id = strings.TrimSpace(id)
		return id, id != ""
	}
	var obj struct {
		ChatID string `json:"chatId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", false
	}
	obj.ChatID = strings.TrimSpace(obj.ChatID)
	return obj.ChatID, obj.ChatID != ""
}
