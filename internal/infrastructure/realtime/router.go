package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ruturajs19/chat-app/internal/infrastructure/metrics"
)

// Router turns connection lifecycle and client events into registry
// mutations and fan-out. Presence changes are serialized so every
// connection observes online lists in mutation order.
type Router struct {
	registry   *Registry
	log        zerolog.Logger
	presenceMu sync.Mutex
}

func NewRouter(registry *Registry, log zerolog.Logger) *Router {
	return &Router{registry: registry, log: log.With().Str("component", "realtime").Logger()}
}

// Connect registers p and broadcasts the online list to everyone.
func (r *Router) Connect(p Peer) {
	r.presenceMu.Lock()
	defer r.presenceMu.Unlock()

	cameOnline := r.registry.OnConnect(p)
	r.log.Debug().Str("conn_id", p.ID()).Str("user_id", p.UserID()).Bool("came_online", cameOnline).Msg("connection registered")
	r.broadcastPresenceLocked()
}

// Disconnect unregisters p. Presence is broadcast only when its user has no
// remaining connections.
func (r *Router) Disconnect(p Peer) {
	r.presenceMu.Lock()
	defer r.presenceMu.Unlock()

	userID, wentOffline, ok := r.registry.OnDisconnect(p.ID())
	if !ok {
		return
	}
	r.log.Debug().Str("conn_id", p.ID()).Str("user_id", userID).Bool("went_offline", wentOffline).Msg("connection removed")
	if wentOffline {
		r.broadcastPresenceLocked()
		return
	}
	metrics.RecordPresence(r.registry.Len(), len(r.registry.OnlineUsers()))
}

// Join sets conversationID as p's active room. Callers authorize first.
func (r *Router) Join(p Peer, conversationID string) bool {
	return r.registry.JoinRoom(p.ID(), conversationID)
}

func (r *Router) Leave(p Peer, conversationID string) bool {
	return r.registry.LeaveRoom(p.ID(), conversationID)
}

// Typing relays a typing indicator to the other connections in the room.
// It is dropped unless conversationID is p's active room.
func (r *Router) Typing(p Peer, conversationID string) int {
	return r.relayTyping(p, conversationID, EventUserTyping)
}

func (r *Router) StopTyping(p Peer, conversationID string) int {
	return r.relayTyping(p, conversationID, EventUserStoppedTyping)
}

func (r *Router) relayTyping(p Peer, conversationID, event string) int {
	room, ok := r.registry.ActiveRoom(p.ID())
	if !ok || room != conversationID {
		r.log.Debug().Str("conn_id", p.ID()).Str("chat_id", conversationID).Str("event", event).Msg("typing outside active room dropped")
		return 0
	}
	return r.emitRoom(conversationID, event, TypingPayload{ChatID: conversationID, UserID: p.UserID()}, p.ID())
}

// EmitNewMessage delivers a persisted message to every connection viewing
// the conversation, including the sender's.
func (r *Router) EmitNewMessage(conversationID string, message any) int {
	return r.emitRoom(conversationID, EventNewMessage, message, "")
}

// EmitMessagesSeen tells the room which messages viewerID has just seen.
func (r *Router) EmitMessagesSeen(conversationID, viewerID string, messageIDs []string) int {
	return r.emitRoom(conversationID, EventMessagesSeen, MessagesSeenPayload{
		ChatID:     conversationID,
		SeenBy:     viewerID,
		MessageIDs: messageIDs,
	}, "")
}

func (r *Router) IsUserInRoom(userID, conversationID string) bool {
	return r.registry.IsUserInRoom(userID, conversationID)
}

func (r *Router) IsUserOnline(userID string) bool {
	return r.registry.IsUserOnline(userID)
}

func (r *Router) OnlineUsers() []string {
	return r.registry.OnlineUsers()
}

// Close disconnects every connection.
func (r *Router) Close() {
	r.presenceMu.Lock()
	peers := r.registry.Drain()
	r.presenceMu.Unlock()

	for _, p := range peers {
		if c, ok := p.(interface{ Close(int, string) }); ok {
			c.Close(websocket.CloseGoingAway, "server shutdown")
		}
	}
	metrics.RecordPresence(0, 0)
}

func (r *Router) emitRoom(conversationID, event string, data any, excludeConnID string) int {
	payload, err := Encode(event, data)
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("encode event")
		return 0
	}
	n := r.registry.BroadcastRoom(conversationID, payload, excludeConnID)
	metrics.RecordSocketEvent(event, "out")
	return n
}

func (r *Router) broadcastPresenceLocked() {
	online := r.registry.OnlineUsers()
	metrics.RecordPresence(r.registry.Len(), len(online))

	payload, err := Encode(EventOnlineUsers, online)
	if err != nil {
		r.log.Error().Err(err).Msg("encode presence")
		return
	}
	r.registry.BroadcastAll(payload)
	metrics.RecordSocketEvent(EventOnlineUsers, "out")
}
