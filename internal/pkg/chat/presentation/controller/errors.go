package controller

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/auth"
	"github.com/ruturajs19/chat-app/internal/infrastructure/httperr"
	chat "github.com/ruturajs19/chat-app/internal/pkg/chat/application/domain"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
)

// respondError maps use case errors onto the HTTP error envelope.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidPayload):
		httperr.BadRequest(c, strings.TrimPrefix(err.Error(), chat.ErrInvalidPayload.Error()+": "))
	case errors.Is(err, chat.ErrNotParticipant):
		httperr.Forbidden(c, "you are not a participant of this chat")
	case errors.Is(err, chat.ErrNotFound):
		httperr.NotFound(c, "chat not found")
	default:
		if !errors.Is(err, usecase.ErrPersistence) {
			log.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected use case error")
		} else {
			log.Warn().Err(err).Str("path", c.FullPath()).Msg("store unavailable")
		}
		httperr.Unavailable(c)
	}
}

// caller returns the authenticated user or aborts with 401.
func caller(c *gin.Context) (chat.Profile, bool) {
	u, ok := auth.CurrentUser(c)
	if !ok {
		httperr.Unauthorized(c, "please login")
		return chat.Profile{}, false
	}
	return chat.Profile{ID: u.ID, Name: u.Name, Email: u.Email}, true
}
