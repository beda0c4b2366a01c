package realtime

import (
	"sort"
	"sync"
)

// Peer is the registry's view of a live connection.
type Peer interface {
	ID() string
	UserID() string
	Send(payload []byte) error
}

type peerState struct {
	peer Peer
	room string // active conversation, empty when none
}

// Registry tracks which connections are live, who owns them, and which
// conversation each one is currently viewing. A user may hold several
// connections at once; the user is online while any of them is registered.
//
// Fan-out helpers deliver while holding the read lock so a broadcast is
// ordered entirely before or after any concurrent membership change.
type Registry struct {
	mu     sync.RWMutex
	peers  map[string]*peerState       // connID -> state
	byUser map[string]map[string]Peer // userID -> connID -> peer
}

func NewRegistry() *Registry {
	return &Registry{
		peers:  make(map[string]*peerState),
		byUser: make(map[string]map[string]Peer),
	}
}

// OnConnect registers p and reports whether its user just came online.
// Re-adding a known connection id is a no-op.
func (r *Registry) OnConnect(p Peer) (cameOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[p.ID()]; ok {
		return false
	}
	r.peers[p.ID()] = &peerState{peer: p}

	conns := r.byUser[p.UserID()]
	if conns == nil {
		conns = make(map[string]Peer)
		r.byUser[p.UserID()] = conns
	}
	conns[p.ID()] = p
	return len(conns) == 1
}

// OnDisconnect forgets connID, clearing its room. It reports the owning user and
// whether that user has no connections left. ok is false for unknown ids.
func (r *Registry) OnDisconnect(connID string) (userID string, wentOffline bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, found := r.peers[connID]
	if !found {
		return "", false, false
	}
	delete(r.peers, connID)

	userID = st.peer.UserID()
	conns := r.byUser[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.byUser, userID)
		wentOffline = true
	}
	return userID, wentOffline, true
}

// JoinRoom makes conversationID the connection's only active room,
// replacing any previous one.
func (r *Registry) JoinRoom(connID, conversationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.peers[connID]
	if !ok || conversationID == "" {
		return false
	}
	st.room = conversationID
	return true
}

// LeaveRoom clears the active room only if it equals conversationID.
func (r *Registry) LeaveRoom(connID, conversationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.peers[connID]
	if !ok || st.room == "" || st.room != conversationID {
		return false
	}
	st.room = ""
	return true
}

// ActiveRoom returns the conversation connID is viewing, if any.
func (r *Registry) ActiveRoom(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.peers[connID]
	if !ok || st.room == "" {
		return "", false
	}
	return st.room, true
}

func (r *Registry) IsUserOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// IsUserInRoom reports whether any of userID's connections has
// conversationID as its active room.
func (r *Registry) IsUserInRoom(userID, conversationID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for connID := range r.byUser[userID] {
		if st := r.peers[connID]; st != nil && st.room == conversationID {
			return true
		}
	}
	return false
}

// OnlineUsers returns the distinct online user ids, sorted.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

// RoomMembers returns the connections whose active room is conversationID,
// excluding excludeConnID when non-empty.
func (r *Registry) RoomMembers(conversationID, excludeConnID string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Peer
	for id, st := range r.peers {
		if id == excludeConnID || st.room != conversationID {
			continue
		}
		out = append(out, st.peer)
	}
	return out
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// BroadcastRoom sends payload to every connection in conversationID except
// excludeConnID and returns how many accepted it.
func (r *Registry) BroadcastRoom(conversationID string, payload []byte, excludeConnID string) int {
	if conversationID == "" {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for id, st := range r.peers {
		if id == excludeConnID || st.room != conversationID {
			continue
		}
		if err := st.peer.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// BroadcastAll sends payload to every registered connection.
func (r *Registry) BroadcastAll(payload []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, st := range r.peers {
		if err := st.peer.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Drain removes every connection and returns them.
func (r *Registry) Drain() []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Peer, 0, len(r.peers))
	for _, st := range r.peers {
		out = append(out, st.peer)
	}
	r.peers = make(map[string]*peerState)
	r.byUser = make(map[string]map[string]Peer)
	return out
}
