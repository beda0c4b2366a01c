package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/dto"
)

// ListChatsController serves the caller's chat list.
type ListChatsController struct {
	UC      *usecase.ListChatsUseCase
	Timeout time.Duration
	Log     zerolog.Logger
}

func NewListChatsController(uc *usecase.ListChatsUseCase, timeout time.Duration, log zerolog.Logger) *ListChatsController {
	return &ListChatsController{UC: uc, Timeout: timeout, Log: log}
}

func (h *ListChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := caller(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
		defer cancel()

		items, err := h.UC.Execute(ctx, me.ID)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}

		chats := make([]dto.ChatListEntry, 0, len(items))
		for _, it := range items {
			user := dto.FromProfile(it.Counterpart)
			chats = append(chats, dto.ChatListEntry{
				ID:   user.ID,
				User: user,
				Chat: dto.FromConversation(it.Summary.Conversation, it.Summary.UnseenCount),
			})
		}
		c.JSON(http.StatusOK, gin.H{"chats": chats})
	}
}
