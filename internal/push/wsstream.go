package push

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

// WSStream adapts a websocket connection to the registry Handle. It is
// the alternative push transport for clients that prefer a socket over
// the NDJSON HTTP stream; frames carry the same JSON envelopes.
type WSStream struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewWSStream(conn *websocket.Conn) *WSStream {
	return &WSStream{conn: conn}
}

// WriteEnvelope writes one envelope as a text frame under a deadline.
func (s *WSStream) WriteEnvelope(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame best-effort and tears down the socket.
func (s *WSStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
	return s.conn.Close()
}
