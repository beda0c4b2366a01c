package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/auth"
	"github.com/ruturajs19/chat-app/internal/infrastructure/httperr"
	"github.com/ruturajs19/chat-app/internal/infrastructure/metrics"
	"github.com/ruturajs19/chat-app/internal/infrastructure/realtime"
	"github.com/ruturajs19/chat-app/internal/pkg/chat/application/usecase"
)

const (
	defaultReadTimeout = 60 * time.Second
	maxFrameBytes      = 64 << 10
)

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
type ChatSocketController struct {
	router          *realtime.Router
	tokens          *auth.Validator
	joinRoomUC      *usecase.JoinConversationUseCase
	inflightTimeout time.Duration
	log             zerolog.Logger
}

func NewChatSocketController(router *realtime.Router, tokens *auth.Validator, join *usecase.JoinConversationUseCase, timeout time.Duration, log zerolog.Logger) *ChatSocketController {
	return &ChatSocketController{
		router:          router,
		tokens:          tokens,
		joinRoomUC:      join,
		inflightTimeout: timeout,
		log:             log.With().Str("component", "socket").Logger(),
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers connect from the frontend origin; identity comes from the token.
		return true
	},
}

// Handle authenticates the handshake, upgrades it and processes frames
// until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request)
		if token == "" {
			httperr.Unauthorized(c, "please login - no auth token")
			return
		}
		user, err := ctl.tokens.Parse(token)
		if err != nil {
			ctl.log.Debug().Err(err).Msg("socket handshake rejected")
			httperr.Unauthorized(c, "invalid token")
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		conn := realtime.NewConnection(user.ID, ws)
		conn.Start()
		ctl.router.Connect(conn)
		defer func() {
			ctl.router.Disconnect(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		if ack, err := realtime.Encode(realtime.EventConnected, realtime.ConnectedPayload{ConnectionID: conn.ID(), UserID: user.ID}); err == nil {
			_ = conn.Send(ack)
		}

		ws.SetReadLimit(maxFrameBytes)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctx := c.Request.Context()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					ctl.log.Debug().Err(err).Str("conn_id", conn.ID()).Msg("socket read ended")
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
			ctl.dispatch(ctx, conn, data)
		}
	}
}

// dispatch handles one inbound frame. Invalid frames are dropped.
func (ctl *ChatSocketController) dispatch(ctx context.Context, conn *realtime.Connection, data []byte) {
	var frame realtime.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		ctl.log.Debug().Err(err).Str("conn_id", conn.ID()).Msg("dropping malformed frame")
		return
	}
	metrics.RecordSocketEvent(frame.Event, "in")

	switch frame.Event {
	case realtime.EventJoinChat:
		chatID, ok := realtime.DecodeChatID(frame.Data)
		if !ok {
			ctl.log.Debug().Str("conn_id", conn.ID()).Msg("joinChat without chat id")
			return
		}
		ctl.handleJoin(ctx, conn, chatID)
	case realtime.EventLeaveChat:
		if chatID, ok := realtime.DecodeChatID(frame.Data); ok {
			ctl.router.Leave(conn, chatID)
		}
	case realtime.EventTyping, realtime.EventStopTyping:
		var p realtime.TypingPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil || p.ChatID == "" {
			ctl.log.Debug().Str("conn_id", conn.ID()).Str("event", frame.Event).Msg("dropping typing frame")
			return
		}
		if frame.Event == realtime.EventTyping {
			ctl.router.Typing(conn, p.ChatID)
		} else {
			ctl.router.StopTyping(conn, p.ChatID)
		}
	default:
		ctl.log.Debug().Str("conn_id", conn.ID()).Str("event", frame.Event).Msg("unknown socket event")
	}
}

func (ctl *ChatSocketController) handleJoin(ctx context.Context, conn *realtime.Connection, chatID string) {
	ctx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: chatID,
		UserID:         conn.UserID(),
	})
	if err != nil {
		ctl.log.Debug().Err(err).Str("conn_id", conn.ID()).Str("chat_id", chatID).Msg("join rejected")
		return
	}
	ctl.router.Join(conn, chatID)
}
