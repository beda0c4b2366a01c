package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 128
)

var (
	ErrConnectionClosed = errors.New("realtime: connection closed")
	ErrBufferExceeded   = errors.New("realtime: send buffer exceeded")
)

// Connection is one authenticated websocket. Outbound frames go through a
// buffered channel drained by a single write loop, so Send never blocks.
type Connection struct {
	id     string
	userID string

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

// NewConnection wraps ws for userID and assigns a fresh connection id.
func NewConnection(userID string, ws *websocket.Conn) *Connection {
	return &Connection{
		id:     uuid.NewString(),
		userID: userID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		close:  make(chan struct{}),
	}
}

func (c *Connection) ID() string     { return c.id }
func (c *Connection) UserID() string { return c.userID }

// Start launches the write loop. Call it once.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload. A slow client whose buffer is full gets disconnected.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	default:
	}

	select {
	case <-c.close:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return ErrBufferExceeded
	}
}

// Close marks the connection closed without blocking. The close frame and
// socket teardown happen in the background. Safe to call repeatedly.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.close)
		go func() {
			deadline := time.Now().Add(writeWait)
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
			_ = c.ws.Close()
		}()
	})
}

// Done is closed once the connection has been closed.
func (c *Connection) Done() <-chan struct{} {
	return c.close
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
