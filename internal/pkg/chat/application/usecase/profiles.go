package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/metrics"
	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	profiles "github.com/ruturajs19/chat-app/internal/repository/port"
)

// resolveProfile never fails: an unreachable or unknown user degrades to
// the placeholder profile.
func resolveProfile(ctx context.Context, repo profiles.ProfileRepository, id string, log zerolog.Logger) chat.Profile {
	p, err := repo.FindByID(ctx, id)
	if err == nil {
		return p
	}
	if !errors.Is(err, profiles.ErrProfileNotFound) {
		log.Warn().Err(err).Str("user_id", id).Msg("profile lookup failed")
	}
	metrics.RecordProfileLookup("fallback")
	return chat.UnknownProfile(id)
}
