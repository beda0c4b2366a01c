package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ruturajs19/chat-app/internal/infrastructure/auth"
	"github.com/ruturajs19/chat-app/internal/infrastructure/httpserver"
	httpHandler "github.com/ruturajs19/chat-app/internal/pkg/chat/presentation/http"
)

// Routes mounts all version 1 API routes under /api/v1
func Routes(ctl httpHandler.Controllers, tokens *auth.Validator) httpserver.Route {
	return func(r *gin.Engine) {
		v1 := r.Group("/api/v1")
		httpHandler.RegisterRoutes(v1, ctl, tokens)
	}
}
