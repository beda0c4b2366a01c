package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/httperr"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
)

// CreateChatController handles the chat creation endpoint
// One controller per endpoint
type CreateChatController struct {
	UC      *usecase.CreateChatUseCase
	Timeout time.Duration
	Log     zerolog.Logger
}

func NewCreateChatController(uc *usecase.CreateChatUseCase, timeout time.Duration, log zerolog.Logger) *CreateChatController {
	return &CreateChatController{UC: uc, Timeout: timeout, Log: log}
}

type createChatRequest struct {
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

func (h *CreateChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := caller(c)
		if !ok {
			return
		}
		var req createChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid request body")
			return
		}
		if req.OtherUserID == "" {
			httperr.BadRequest(c, "otherUserId is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()
		out, err := h.UC.Execute(ctx, usecase.CreateChatInput{
			CallerID:    me.ID,
			UserID:      req.UserID,
			OtherUserID: req.OtherUserID,
		})
		if err != nil {
			respondError(c, h.Log, err)
			return
		}

		if !out.Created {
			c.JSON(http.StatusOK, gin.H{"message": "chat already exists", "chatId": out.Conversation.ID})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "new chat created", "chatId": out.Conversation.ID})
	}
}
