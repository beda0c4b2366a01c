package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ruturajs19/chat-app/internal/infrastructure/auth"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/controller"
)

// Controllers groups the per-endpoint chat controllers.
type Controllers struct {
	CreateChat  *controller.CreateChatController
	ListChats   *controller.ListChatsController
	SendMessage *controller.SendMessageController
	GetMessage  *controller.GetMessageController
	Socket      *controller.ChatSocketController
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group.
// The websocket route authenticates its own handshake.
func RegisterRoutes(g *gin.RouterGroup, ctl Controllers, tokens *auth.Validator) {
	// GET /api/v1/ws -> websocket endpoint for realtime chat
	g.GET("/ws", ctl.Socket.Handle())

	authed := g.Group("", tokens.Middleware())

	// POST /api/v1/chat/new -> open a chat with another user
	authed.POST("/chat/new", ctl.CreateChat.Handle())

	// GET /api/v1/chat/all -> the caller's chats, most recent first
	authed.GET("/chat/all", ctl.ListChats.Handle())

	// POST /api/v1/message -> send a text or image message
	authed.POST("/message", ctl.SendMessage.Handle())

	// GET /api/v1/message/:chatId -> fetch messages and mark them seen
	authed.GET("/message/:chatId", ctl.GetMessage.Handle())
}
