package connection

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
)

const readChunk = 4096

// Connection is the session state of one client socket. Only the goroutine
// running serve touches it.
type Connection struct {
	id     uint64
	socket net.Conn
	addr   string
	srv    *Server
	log    zerolog.Logger

	state           constants.State
	protocolVersion int32
	identity        *Identity
	lastActivity    time.Time

	decoder protocol.FrameDecoder
}

func newConnection(s *Server, id uint64, socket net.Conn) *Connection {
	addr := socket.RemoteAddr().String()
	return &Connection{
		id:           id,
		socket:       socket,
		addr:         addr,
		srv:          s,
		log:          s.log.With().Str("addr", addr).Uint64("conn", id).Logger(),
		state:        constants.Handshaking,
		lastActivity: time.Now(),
	}
}

// State is the current protocol state.
func (c *Connection) State() constants.State { return c.state }

// ProtocolVersion is the version sent in the handshake, or zero before it.
func (c *Connection) ProtocolVersion() int32 { return c.protocolVersion }

// Identity is set once login succeeds.
func (c *Connection) Identity() (Identity, bool) {
	if c.identity == nil {
		return Identity{}, false
	}
	return *c.identity, true
}

// RemoteAddr is the client's address.
func (c *Connection) RemoteAddr() string { return c.addr }

// LastActivity is when the last packet was dispatched.
func (c *Connection) LastActivity() time.Time { return c.lastActivity }

// serve reads and dispatches frames until the connection fails. The
// returned error is always non-nil and belongs to the protocol taxonomy.
func (c *Connection) serve() error {
	buf := make([]byte, readChunk)
	for {
		if err := c.socket.SetReadDeadline(time.Now().Add(c.srv.idleTimeout)); err != nil {
			return c.classify(err)
		}
		n, readErr := c.socket.Read(buf)
		if n > 0 {
			c.decoder.Feed(buf[:n])
			if err := c.drain(); err != nil {
				return err
			}
		}
		if readErr != nil {
			return c.classify(readErr)
		}
	}
}

// drain dispatches every complete frame currently buffered, in order.
func (c *Connection) drain() error {
	for {
		frame, err := c.decoder.Next()
		if errors.Is(err, protocol.ErrNeedMoreData) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := c.dispatch(frame); err != nil {
			return err
		}
	}
}

// writePacket writes one complete frame; it returns only after the bytes
// have been handed to the socket.
func (c *Connection) writePacket(frame []byte) error {
	if err := c.socket.SetWriteDeadline(time.Now().Add(c.srv.idleTimeout)); err != nil {
		return c.classify(err)
	}
	if _, err := c.socket.Write(frame); err != nil {
		return c.classify(err)
	}
	return nil
}

var transitions = map[constants.State][]constants.State{
	constants.Handshaking: {constants.Status, constants.Login},
	constants.Login:       {constants.Play},
}

func canTransition(from, to constants.State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// changeState moves the connection forward. States never regress.
func (c *Connection) changeState(next constants.State) error {
	if !canTransition(c.state, next) {
		return fmt.Errorf("illegal state transition %s -> %s", c.state, next)
	}
	c.log.Debug().Str("from", c.state.String()).Str("to", next.String()).Msg("State change")
	c.state = next
	return nil
}

// release hands back the identity, if login had completed.
func (c *Connection) release() {
	if c.identity != nil {
		c.srv.players.Unregister(*c.identity)
	}
}

func (c *Connection) classify(err error) error {
	var ne net.Error
	switch {
	case errors.As(err, &ne) && ne.Timeout():
		return fmt.Errorf("%w: %v", protocol.ErrTimeout, err)
	case c.srv.shuttingDown():
		return protocol.ErrServerShutdown
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe), errors.Is(err, syscall.ECONNRESET):
		return protocol.ErrPeerClosed
	}
	return fmt.Errorf("%w: %v", protocol.ErrPeerClosed, err)
}
