package communication

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"ataxx/communication/protocol"
)

// WebSocketChannel carries one protocol message per text frame.
type WebSocketChannel struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	conn.SetReadLimit(MaxLineSize)
	return &WebSocketChannel{conn: conn}
}

func (c *WebSocketChannel) Receive() (protocol.Message, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read from %v: %w", c.conn.RemoteAddr(), err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		return protocol.Decode(data)
	}
}

func (c *WebSocketChannel) Send(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write to %v: %w", c.conn.RemoteAddr(), err)
	}
	return nil
}

func (c *WebSocketChannel) Close() error {
	c.mutex.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mutex.Unlock()
	return c.conn.Close()
}

func (c *WebSocketChannel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
