package repository

import (
	"context"
	"errors"

	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
)

// ErrProfileNotFound is returned when the identity service has no such user.
var ErrProfileNotFound = errors.New("profile: not found")

// ProfileRepository resolves public user profiles by id.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (chat.Profile, error)
}
