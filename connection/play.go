package connection

import (
	"github.com/rs/zerolog"

	"github.com/skyezerfox/magma/protocol"
)

// PlaySink receives every packet of a connection in the play state.
// Calls for one identity are sequential and in arrival order; different
// identities may call concurrently. body aliases the read buffer and must
// be copied if retained.
type PlaySink interface {
	HandlePlayPacket(id Identity, packetID int32, body []byte) error
}

// LoggingSink logs play packets and drops them.
type LoggingSink struct {
	Log zerolog.Logger
}

func (s LoggingSink) HandlePlayPacket(id Identity, packetID int32, body []byte) error {
	s.Log.Debug().Str("username", id.Username).Uint64("id", id.ID).Int32("packet", packetID).Int("len", len(body)).Msg("Play packet")
	return nil
}

func handlePlay(c *Connection, id int32, r *protocol.Reader) error {
	return c.srv.sink.HandlePlayPacket(*c.identity, id, r.Rest())
}
