package connection

import (
	"time"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
)

// handlerFunc parses the rest of a packet body from r. The dispatcher
// rejects any bytes the handler leaves unread.
type handlerFunc func(c *Connection, id int32, r *protocol.Reader) error

type stateHandlers struct {
	packets map[int32]handlerFunc
	// any receives every packet ID when set; used for play.
	any handlerFunc
}

var handlers = map[constants.State]stateHandlers{
	constants.Handshaking: {packets: map[int32]handlerFunc{
		constants.HandshakeServerbound: handleHandshake,
	}},
	constants.Status: {packets: map[int32]handlerFunc{
		constants.StatusRequestServerbound: handleStatusRequest,
		constants.StatusPingServerbound:    handlePing,
	}},
	constants.Login: {packets: map[int32]handlerFunc{
		constants.LoginStartServerbound:         handleLoginStart,
		constants.EncryptionResponseServerbound: handleEncryptionResponse,
	}},
	constants.Play: {any: handlePlay},
}

func lookup(state constants.State, id int32) (handlerFunc, bool) {
	h, ok := handlers[state]
	if !ok {
		return nil, false
	}
	if h.any != nil {
		return h.any, true
	}
	fn, ok := h.packets[id]
	return fn, ok
}

// dispatch routes one frame. Unknown IDs are skipped because the frame
// boundary is already known; a known packet that fails to parse is fatal.
func (c *Connection) dispatch(frame []byte) error {
	r := protocol.NewReader(frame)
	id, err := r.VarInt()
	if err != nil {
		return err
	}

	state := c.state
	fn, ok := lookup(state, id)
	if !ok {
		c.log.Debug().Str("state", state.String()).Int32("id", id).Int("len", len(frame)).Msg("Skipping unknown packet")
		c.srv.metrics.UnknownPacket(state.String())
		return nil
	}

	c.srv.metrics.Packet(state.String())
	if err := fn(c, id, r); err != nil {
		return err
	}
	if err := r.Finish(); err != nil {
		return err
	}
	c.lastActivity = time.Now()
	return nil
}
