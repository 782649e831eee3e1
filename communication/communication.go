package communication

import (
	"errors"

	"ataxx/communication/protocol"
)

// Transport names how protocol messages are framed on the wire.
type Transport string

const (
	TCP       Transport = "tcp"       // one JSON object per line
	WebSocket Transport = "websocket" // one JSON object per text frame
)

// Channel is an interface that abstracts the transport carrying protocol
// messages between a player and a match server.
type Channel interface {
	// Receive blocks for the next message. Errors matching IsProtocolError
	// concern a single line and the channel stays usable; any other error
	// means the transport is gone.
	Receive() (protocol.Message, error)
	Send(msg protocol.Message) error
	Close() error
}

// IsProtocolError reports whether err was caused by the content of one
// message rather than by the transport.
func IsProtocolError(err error) bool {
	return errors.Is(err, protocol.ErrMalformed) ||
		errors.Is(err, protocol.ErrMissingField) ||
		errors.Is(err, protocol.ErrUnknownType)
}
