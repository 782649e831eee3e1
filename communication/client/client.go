package client

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/gorilla/websocket"

	"ataxx/communication"
)

// Dial connects to a match server at addr (host:port). path is only used by
// the websocket transport.
func Dial(ctx context.Context, transport communication.Transport, addr, path string) (communication.Channel, error) {
	switch transport {
	case communication.TCP, "":
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
		}
		return communication.NewLineChannel(conn), nil

	case communication.WebSocket:
		u := url.URL{Scheme: "ws", Host: addr, Path: path}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", u.String(), err)
		}
		return communication.NewWebSocketChannel(conn), nil

	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}
