package connection

import (
	"github.com/Tnze/go-mc/net/packet"
	"github.com/google/uuid"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
)

// handleLoginStart accepts any username; there is no session server check
// in offline mode.
func handleLoginStart(c *Connection, _ int32, r *protocol.Reader) error {
	username, err := r.String()
	if err != nil {
		return err
	}
	// 1.20.1 clients append an optional profile UUID. It is read so the
	// body is fully consumed, then ignored.
	if r.Len() > 0 {
		hasUUID, err := r.Boolean()
		if err != nil {
			return err
		}
		if hasUUID {
			claimed, err := r.UUID()
			if err != nil {
				return err
			}
			c.log.Debug().Str("username", username).Str("claimed", claimed.String()).Msg("Ignoring client UUID")
		}
	}
	if err := r.Finish(); err != nil {
		return err
	}

	c.log.Info().Str("username", username).Msg("Got login request")

	err = c.writePacket(protocol.Frame(
		constants.LoginSuccessClientbound,
		packet.String(constants.OfflineUUID),
		packet.String(username),
	))
	if err != nil {
		return err
	}

	if err := c.changeState(constants.Play); err != nil {
		return err
	}
	c.identity = &Identity{
		ID:       c.id,
		UUID:     uuid.Nil,
		Username: username,
		Addr:     c.addr,
	}
	c.log = c.log.With().Str("username", username).Logger()
	c.srv.players.Register(*c.identity)

	c.log.Info().Msg("Login successful")
	return nil
}

// handleEncryptionResponse exists because the ID is legal in the login
// state, but no Encryption Request is ever sent, so the body is dropped.
func handleEncryptionResponse(c *Connection, _ int32, r *protocol.Reader) error {
	n := len(r.Rest())
	c.log.Debug().Int("len", n).Msg("Ignoring encryption response in offline mode")
	return nil
}
