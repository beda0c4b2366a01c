package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/httperr"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/dto"
)

// GetMessageController handles fetching the messages of a chat.
type GetMessageController struct {
	UC      *usecase.GetMessageUseCase
	Timeout time.Duration
	Log     zerolog.Logger
}

func NewGetMessageController(uc *usecase.GetMessageUseCase, timeout time.Duration, log zerolog.Logger) *GetMessageController {
	return &GetMessageController{UC: uc, Timeout: timeout, Log: log}
}

// Handle returns the messages oldest first along with the other participant.
// Reading marks the caller's incoming messages as seen.
func (h *GetMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := caller(c)
		if !ok {
			return
		}
		chatID := strings.TrimSpace(c.Param("chatId"))
		if chatID == "" {
			httperr.BadRequest(c, "chatId is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.GetMessageInput{ConversationID: chatID, ViewerID: me.ID})
		if err != nil {
			respondError(c, h.Log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": dto.FromMessages(out.Messages),
			"user":     dto.FromProfile(out.Counterpart),
		})
	}
}
