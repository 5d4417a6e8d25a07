package connection

import (
	"encoding/json"
	"fmt"

	"github.com/Tnze/go-mc/net/packet"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/protocol"
)

func handleHandshake(c *Connection, _ int32, r *protocol.Reader) error {
	version, err := r.VarInt()
	if err != nil {
		return err
	}
	address, err := r.String()
	if err != nil {
		return err
	}
	port, err := r.UnsignedShort()
	if err != nil {
		return err
	}
	intent, err := r.VarInt()
	if err != nil {
		return err
	}
	if err := r.Finish(); err != nil {
		return err
	}

	c.log.Debug().Int32("version", version).Str("address", address).Uint16("port", port).Int32("intent", intent).Msg("Handshake")

	var next constants.State
	switch intent {
	case constants.IntentStatus:
		next = constants.Status
	case constants.IntentLogin:
		next = constants.Login
	default:
		return fmt.Errorf("%w: %d", protocol.ErrInvalidHandshakeIntent, intent)
	}

	if version != constants.MCProtocol {
		if next == constants.Login {
			c.sendLoginDisconnect(outdatedMessage(version))
		}
		return fmt.Errorf("%w: client %d, server %d", protocol.ErrUnsupportedProtocolVersion, version, constants.MCProtocol)
	}

	c.protocolVersion = version
	return c.changeState(next)
}

func outdatedMessage(version int32) string {
	if version < constants.MCProtocol {
		return "Outdated client! Please use " + constants.MCVersion
	}
	return "Outdated server! I'm still on " + constants.MCVersion
}

// sendLoginDisconnect writes a best-effort Login Disconnect. Errors are
// ignored: the connection is closed right after either way.
func (c *Connection) sendLoginDisconnect(message string) {
	out, err := json.Marshal(models.ChatText{Text: message})
	if err != nil {
		return
	}
	_ = c.writePacket(protocol.Frame(constants.LoginDisconnectClientbound, packet.Chat(out)))
}
