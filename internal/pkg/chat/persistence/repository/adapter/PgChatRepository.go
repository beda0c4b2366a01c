package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool, now: time.Now}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

var errNilPool = errors.New("PgChatRepository: nil pool")

const conversationColumns = `id::text, user_low, user_high, latest_text, latest_sender, created_at, updated_at`

const messageColumns = `id::text, conversation_id::text, sender_id, msg_type, body, image_url, image_public_id, seen, seen_at, created_at`

func (r *PgChatRepository) FindOrCreateConversation(ctx context.Context, pair chat.Pair) (chat.Conversation, bool, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, false, errNilPool
	}

	conv := chat.NewConversation(uuid.NewString(), pair, r.now())
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.conversation (id, user_low, user_high, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $4)
		ON CONFLICT (user_low, user_high) DO NOTHING
		RETURNING id::text
	`, conv.ID, pair.Low, pair.High, conv.CreatedAt).Scan(&id)
	switch {
	case err == nil:
		return conv, true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return chat.Conversation{}, false, err
	}

	// Lost the race or the pair already existed.
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM chat.conversation
		WHERE user_low = $1 AND user_high = $2
	`, pair.Low, pair.High)
	existing, err := scanConversation(row)
	if err != nil {
		return chat.Conversation{}, false, err
	}
	return existing, false, nil
}

func (r *PgChatRepository) GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errNilPool
	}
	if _, err := uuid.Parse(conversationID); err != nil {
		return chat.Conversation{}, chat.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM chat.conversation
		WHERE id = $1::uuid
	`, conversationID)
	return scanConversation(row)
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.user_low, c.user_high, c.latest_text, c.latest_sender, c.created_at, c.updated_at,
		       (SELECT count(*) FROM chat.message m
		         WHERE m.conversation_id = c.id AND m.sender_id <> $1 AND NOT m.seen) AS unseen
		FROM chat.conversation c
		WHERE c.user_low = $1 OR c.user_high = $1
		ORDER BY c.updated_at DESC, c.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.ConversationSummary
	for rows.Next() {
		var (
			conv   chat.Conversation
			text   *string
			sender *string
			unseen int64
		)
		if err := rows.Scan(&conv.ID, &conv.Participants.Low, &conv.Participants.High, &text, &sender, &conv.CreatedAt, &conv.UpdatedAt, &unseen); err != nil {
			return nil, err
		}
		conv.LatestMessage = latestFromColumns(text, sender)
		out = append(out, chat.ConversationSummary{Conversation: conv, UnseenCount: int(unseen)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgChatRepository) AppendMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errNilPool
	}
	if _, err := uuid.Parse(m.ConversationID); err != nil {
		return chat.Message{}, chat.ErrNotFound
	}

	var stored chat.Message
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT `+conversationColumns+`
			FROM chat.conversation
			WHERE id = $1::uuid
			FOR UPDATE
		`, m.ConversationID)
		conv, err := scanConversation(row)
		if err != nil {
			return err
		}

		stored, err = conv.PostMessage(m, r.now())
		if err != nil {
			return err
		}

		var imageURL, publicID *string
		var body *string
		if stored.Image != nil {
			imageURL, publicID = &stored.Image.URL, nullable(stored.Image.PublicID)
		} else {
			body = &stored.Text
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat.message (id, conversation_id, sender_id, msg_type, body, image_url, image_public_id, seen, created_at)
			VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, FALSE, $8)
		`, stored.ID, stored.ConversationID, stored.SenderID, int16(stored.Type), body, imageURL, publicID, stored.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE chat.conversation
			SET latest_text = $2, latest_sender = $3, updated_at = $4
			WHERE id = $1::uuid
		`, conv.ID, conv.LatestMessage.Text, conv.LatestMessage.SenderID, conv.UpdatedAt); err != nil {
			return fmt.Errorf("update conversation snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return chat.Message{}, err
	}
	return stored, nil
}

func (r *PgChatRepository) ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if err := r.ensureConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at, id
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *PgChatRepository) MarkSeen(ctx context.Context, conversationID, viewerID string, at, upTo time.Time) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if err := r.ensureConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	var bound *time.Time
	if !upTo.IsZero() {
		b := upTo.UTC()
		bound = &b
	}
	rows, err := r.pool.Query(ctx, `
		UPDATE chat.message
		SET seen = TRUE, seen_at = $3
		WHERE conversation_id = $1::uuid AND sender_id <> $2 AND seen = FALSE
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		RETURNING id::text
	`, conversationID, viewerID, at.UTC().Truncate(time.Microsecond), bound)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PgChatRepository) ensureConversation(ctx context.Context, conversationID string) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return chat.ErrNotFound
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM chat.conversation WHERE id = $1::uuid)`, conversationID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return chat.ErrNotFound
	}
	return nil
}

func scanConversation(row pgx.Row) (chat.Conversation, error) {
	var (
		conv   chat.Conversation
		text   *string
		sender *string
	)
	err := row.Scan(&conv.ID, &conv.Participants.Low, &conv.Participants.High, &text, &sender, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, chat.ErrNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	conv.CreatedAt = conv.CreatedAt.UTC()
	conv.UpdatedAt = conv.UpdatedAt.UTC()
	conv.LatestMessage = latestFromColumns(text, sender)
	return conv, nil
}

func scanMessage(row pgx.Row) (chat.Message, error) {
	var (
		msg      chat.Message
		msgType  int16
		body     *string
		imageURL *string
		publicID *string
	)
	if err := row.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msgType, &body, &imageURL, &publicID, &msg.Seen, &msg.SeenAt, &msg.CreatedAt); err != nil {
		return chat.Message{}, err
	}
	msg.Type = chat.MessageType(msgType)
	if body != nil {
		msg.Text = *body
	}
	if imageURL != nil {
		msg.Image = &chat.Image{URL: *imageURL}
		if publicID != nil {
			msg.Image.PublicID = *publicID
		}
	}
	msg.CreatedAt = msg.CreatedAt.UTC()
	return msg, nil
}

func latestFromColumns(text, sender *string) *chat.LatestMessage {
	if text == nil || sender == nil {
		return nil
	}
	return &chat.LatestMessage{Text: *text, SenderID: *sender}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
