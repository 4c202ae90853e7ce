package peer

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendQueueSize bounds the number of outbound messages a session will
// buffer; once a slow peer's queue is full, further messages to it are
// dropped.
const sendQueueSize = 64

// Session is one peer connection, inbound or outbound. Writes to the
// underlying connection are serialized through a single writer goroutine
// reading off send, so concurrent broadcasts never interleave frames.
type Session struct {
	ID         uuid.UUID
	RemoteAddr string

	conn   *websocket.Conn
	send   chan Message
	closed chan struct{}
	once   sync.Once
}

// newSession wraps conn as a registered, writable peer session.
func newSession(conn *websocket.Conn) *Session {
	return &Session{
		ID:         uuid.New(),
		RemoteAddr: conn.RemoteAddr().String(),
		conn:       conn,
		send:       make(chan Message, sendQueueSize),
		closed:     make(chan struct{}),
	}
}

// writeLoop drains s.send and writes each message as a single text frame
// until the session closes or a write fails.
func (s *Session) writeLoop() {
	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				s.Close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

// Send enqueues msg for delivery. Best-effort: if the session's queue is
// full, the message is dropped rather than blocking the broadcaster.
func (s *Session) Send(msg Message) {
	select {
	case s.send <- msg:
	case <-s.closed:
	default:
	}
}

// Close terminates the session's writer and underlying connection. Safe to
// call more than once or concurrently.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
}
