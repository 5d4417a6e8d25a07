package protocol

import (
	"errors"
	"fmt"
)

// ErrNeedMoreData is not a failure: the buffer does not yet hold a whole
// frame and the caller should read more bytes from the socket.
var ErrNeedMoreData = errors.New("need more data")

// Fatal conditions. Any of these ends the connection.
var (
	ErrFrameTooLarge              = errors.New("frame too large")
	ErrMalformedVarInt            = errors.New("malformed varint")
	ErrMalformedPacket            = errors.New("malformed packet")
	ErrInvalidHandshakeIntent     = errors.New("invalid handshake intent")
	ErrUnsupportedProtocolVersion = errors.New("unsupported protocol version")
	ErrTimeout                    = errors.New("timeout")
	ErrPeerClosed                 = errors.New("peer closed")
	ErrServerShutdown             = errors.New("server shutting down")
)

var reasons = []struct {
	err  error
	name string
}{
	{ErrFrameTooLarge, "frame_too_large"},
	{ErrMalformedVarInt, "malformed_varint"},
	{ErrMalformedPacket, "malformed_packet"},
	{ErrInvalidHandshakeIntent, "invalid_handshake_intent"},
	{ErrUnsupportedProtocolVersion, "unsupported_protocol_version"},
	{ErrTimeout, "timeout"},
	{ErrPeerClosed, "peer_closed"},
	{ErrServerShutdown, "shutdown"},
}

// Reason returns a short label for err, suitable for log fields and metric
// labels. Errors outside the taxonomy map to "internal".
func Reason(err error) string {
	if err == nil {
		return "none"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.name
		}
	}
	return "internal"
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedPacket, fmt.Sprintf(format, args...))
}
