package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	pingPeriod      = 30 * time.Second
	defaultSendSize = 128
)

// ErrConnectionClosed is returned by Send once the connection has been closed.
var ErrConnectionClosed = errors.New("realtime: connection closed")

// Socket is the write side of a websocket as used by Connection.
// *websocket.Conn satisfies it.
type Socket interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

var _ Socket = (*websocket.Conn)(nil)

// Connection wraps a websocket and serializes outbound writes through a buffered
// channel so that fan-out from many goroutines never interleaves frames.
// A user may hold several connections at once (one per device/tab); each gets
// its own session id.
type Connection struct {
	ID     string
	UserID int64

	ws    Socket
	send  chan []byte
	once  sync.Once
	close chan struct{}

	closeCode   int
	closeReason string
}

// NewConnection constructs a Connection for the given user. bufferSize <= 0
// falls back to the default outbound buffer.
func NewConnection(userID int64, ws Socket, bufferSize int) *Connection {
	if bufferSize <= 0 {
		bufferSize = defaultSendSize
	}
	return &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, bufferSize),
		close:  make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer is
// full, the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("realtime: send buffer exceeded")
	}
}

// Close terminates the connection. Safe to call more than once and from any
// goroutine. The write loop flushes frames queued before the close, writes the
// close frame and releases the socket, so an acknowledgement enqueued just
// before Close still reaches the client.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.close)
	})
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	select {
	case <-c.close:
		return true
	default:
		return false
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			c.shutdown()
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failed")
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
			}
		}
	}
}

// shutdown drains frames that were queued before the close signal, then
// performs the websocket closing handshake.
func (c *Connection) shutdown() {
	for {
		select {
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				c.closeSocket()
				return
			}
		default:
			c.closeSocket()
			return
		}
	}
}

func (c *Connection) closeSocket() {
	deadline := time.Now().Add(writeWait)
	_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeReason), deadline)
	_ = c.ws.Close()
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
