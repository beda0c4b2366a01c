package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	cport "github.com/ruturajs19/chat-app/internal/infrastructure/cache/port"
	qport "github.com/ruturajs19/chat-app/internal/infrastructure/queue/port"
)

// MessageDigestTaskType is published when a message lands for a recipient
// with no open connection, so another service can notify them.
const MessageDigestTaskType = "chat:message_digest"

// MessageDigestPayload is the JSON payload transported via the queue.
type MessageDigestPayload struct {
	ChatID      string    `json:"chatId"`
	MessageID   string    `json:"messageId"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	RecipientID string    `json:"recipientId"`
	Preview     string    `json:"preview"`
	SentAt      time.Time `json:"sentAt"`
}

const digestDedupTTL = 24 * time.Hour

// RegisterMessageDigestTask binds the digest handler to srv. Deliveries are
// at-least-once; the cache drops repeats of the same message.
func RegisterMessageDigestTask(srv qport.Server, cache cport.Cache, log zerolog.Logger) {
	srv.Register(MessageDigestTaskType, NewMessageDigestHandler(cache, log))
}

func NewMessageDigestHandler(cache cport.Cache, log zerolog.Logger) qport.Handler {
	log = log.With().Str("task", MessageDigestTaskType).Logger()
	return func(ctx context.Context, t qport.Task) error {
		var p MessageDigestPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payloads will never succeed; drop them.
			log.Error().Err(err).Msg("discarding malformed digest")
			return nil
		}
		if p.MessageID == "" || p.RecipientID == "" {
			log.Error().Msg("discarding digest without message or recipient")
			return nil
		}

		fresh, err := cache.SetNX(ctx, "chat:digest:"+p.MessageID, "1", digestDedupTTL)
		if err != nil {
			return fmt.Errorf("dedup digest %s: %w", p.MessageID, err)
		}
		if !fresh {
			log.Debug().Str("message_id", p.MessageID).Msg("duplicate digest skipped")
			return nil
		}

		log.Info().
			Str("chat_id", p.ChatID).
			Str("message_id", p.MessageID).
			Str("recipient_id", p.RecipientID).
			Str("sender_name", p.SenderName).
			Msg("message digest accepted")
		return nil
	}
}
