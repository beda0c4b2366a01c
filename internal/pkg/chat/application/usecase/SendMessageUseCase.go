package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/metrics"
	storage "github.com/ruturajs19/chat-app/internal/infrastructure/storage/port"
	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/task"
	repository "github.com/ruturajs19/chat-app/internal/pkg/chat/persistence/repository/port"
)

const cleanupTimeout = 5 * time.Second

// ImageUpload is a raw image attached to a message.
type ImageUpload struct {
	Data     []byte
	Filename string
}

// SendMessageInput carries the data needed to send a new message.
// Exactly one of Text and Image must be present.
type SendMessageInput struct {
	ConversationID string
	Sender         chat.Profile
	Text           string
	Image          *ImageUpload
}

// SendMessageUseCase persists a message and drives its side effects:
// room fan-out, immediate seen state when the recipient is looking at the
// conversation, and a digest notification when the recipient is offline.
type SendMessageUseCase struct {
	Repo          repository.ChatRepository
	Store         storage.ObjectStore
	Emitter       EventEmitter
	Publisher     Publisher
	MarkSeen      *MarkSeenUseCase
	MaxImageBytes int64
	KeyPrefix     string
	Log           zerolog.Logger
}

func NewSendMessageUseCase(
	repo repository.ChatRepository,
	store storage.ObjectStore,
	emitter EventEmitter,
	publisher Publisher,
	markSeen *MarkSeenUseCase,
	maxImageBytes int64,
	keyPrefix string,
	log zerolog.Logger,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		Repo:          repo,
		Store:         store,
		Emitter:       emitter,
		Publisher:     publisher,
		MarkSeen:      markSeen,
		MaxImageBytes: maxImageBytes,
		KeyPrefix:     keyPrefix,
		Log:           log.With().Str("component", "send_message").Logger(),
	}
}

// Execute sends a message on behalf of in.Sender and returns it as stored,
// with Seen already set if the recipient read it on arrival.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.ConversationID == "" || in.Sender.ID == "" {
		return nil, fmt.Errorf("%w: chatId is required", chat.ErrInvalidPayload)
	}
	hasText := strings.TrimSpace(in.Text) != ""
	hasImage := in.Image != nil && len(in.Image.Data) > 0
	if hasText == hasImage {
		return nil, fmt.Errorf("%w: a message needs either text or an image", chat.ErrInvalidPayload)
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, storeError(err)
	}
	recipient, ok := conv.Counterpart(in.Sender.ID)
	if !ok {
		return nil, chat.ErrNotParticipant
	}

	var image *chat.Image
	if hasImage {
		if image, err = uc.upload(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	msg, err := chat.NewMessage(conv.ID, in.Sender.ID, in.Text, image)
	if err != nil {
		uc.discard(ctx, image)
		return nil, err
	}
	stored, err := uc.Repo.AppendMessage(ctx, msg)
	if err != nil {
		uc.discard(ctx, image)
		return nil, storeError(err)
	}
	metrics.RecordMessageSent(stored.Type.String())

	uc.Emitter.EmitNewMessage(conv.ID, stored)

	switch {
	case uc.Emitter.IsUserInRoom(recipient, conv.ID):
		ids, at, err := uc.MarkSeen.Execute(ctx, MarkSeenInput{ConversationID: conv.ID, ViewerID: recipient, UpTo: stored.CreatedAt})
		if err != nil {
			uc.Log.Warn().Err(err).Str("chat_id", conv.ID).Msg("mark seen on delivery failed")
			break
		}
		for _, id := range ids {
			if id == stored.ID {
				stored.MarkSeen(at)
			}
		}
	case !uc.Emitter.IsUserOnline(recipient):
		uc.Publisher.Publish(ctx, task.MessageDigestTaskType, task.MessageDigestPayload{
			ChatID:      conv.ID,
			MessageID:   stored.ID,
			SenderID:    in.Sender.ID,
			SenderName:  in.Sender.Name,
			RecipientID: recipient,
			Preview:     stored.Preview(),
			SentAt:      stored.CreatedAt,
		})
	}

	return &stored, nil
}

func (uc *SendMessageUseCase) upload(ctx context.Context, img *ImageUpload) (*chat.Image, error) {
	if uc.Store == nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, storage.ErrDisabled)
	}
	if uc.MaxImageBytes > 0 && int64(len(img.Data)) > uc.MaxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", chat.ErrInvalidPayload, uc.MaxImageBytes)
	}
	mt := mimetype.Detect(img.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: unsupported image type %s", chat.ErrInvalidPayload, mt.String())
	}

	key := ulid.Make().String() + mt.Extension()
	if uc.KeyPrefix != "" {
		key = path.Join(uc.KeyPrefix, key)
	}
	url, err := uc.Store.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), mt.String())
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			uc.Log.Debug().Msg("image upload rejected, storage disabled")
		}
		return nil, fmt.Errorf("%w: upload image: %v", ErrPersistence, err)
	}
	return &chat.Image{URL: url, PublicID: key}, nil
}

// discard removes an uploaded object whose message was never stored.
func (uc *SendMessageUseCase) discard(ctx context.Context, img *chat.Image) {
	if img == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := uc.Store.Delete(ctx, img.PublicID); err != nil {
		uc.Log.Warn().Err(err).Str("public_id", img.PublicID).Msg("orphaned image left in storage")
	}
}
