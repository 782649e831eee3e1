package communication

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"ataxx/communication/protocol"
)

// MaxLineSize bounds a single protocol line.
const MaxLineSize = 1 << 20

// LineChannel frames messages as newline-terminated JSON over a stream.
type LineChannel struct {
	conn   net.Conn
	reader *bufio.Reader
	mutex  sync.Mutex
}

func NewLineChannel(conn net.Conn) *LineChannel {
	return &LineChannel{conn: conn, reader: bufio.NewReaderSize(conn, 64*1024)}
}

// Receive returns the next message. A line over MaxLineSize is dropped up to
// its newline and reported as malformed, leaving the stream usable.
func (c *LineChannel) Receive() (protocol.Message, error) {
	for {
		line, tooLong, err := c.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read from %v: %w", c.conn.RemoteAddr(), err)
		}
		if tooLong {
			return nil, fmt.Errorf("%w: line exceeds %d bytes", protocol.ErrMalformed, MaxLineSize)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return protocol.Decode(line)
	}
}

// readLine reads through the next newline. Once the line passes MaxLineSize
// its bytes are discarded and tooLong is set. A final unterminated line is
// returned before io.EOF.
func (c *LineChannel) readLine() ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := c.reader.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > MaxLineSize+1 {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && (len(line) > 0 || tooLong):
			return line, tooLong, nil
		case err != nil:
			return nil, false, err
		}
		return line, tooLong, nil
	}
}

func (c *LineChannel) Send(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to write to %v: %w", c.conn.RemoteAddr(), err)
	}
	return nil
}

func (c *LineChannel) Close() error {
	return c.conn.Close()
}

func (c *LineChannel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
