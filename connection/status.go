package connection

import (
	"encoding/json"

	"github.com/Tnze/go-mc/net/packet"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/protocol"
)

func (s *Server) status() models.ServerStatus {
	st := models.ServerStatus{
		Version: models.Version{
			Name:     constants.MCVersion,
			Protocol: constants.MCProtocol,
		},
		Players: models.Players{
			Max:    s.settings.MaxPlayers(),
			Online: s.players.OnlineCount(),
		},
		Description: models.Description{
			Text: s.settings.MOTD(),
		},
	}
	if l, ok := s.players.(Lister); ok {
		st.Players.Sample = sample(l.Players())
	}
	return st
}

func sample(players []Identity) []models.Sample {
	if len(players) == 0 {
		return nil
	}
	if len(players) > constants.StatusSampleSize {
		players = players[:constants.StatusSampleSize]
	}
	out := make([]models.Sample, len(players))
	for i, p := range players {
		out[i] = models.Sample{Name: p.Username, ID: p.UUID.String()}
	}
	return out
}

func handleStatusRequest(c *Connection, _ int32, _ *protocol.Reader) error {
	out, err := json.Marshal(c.srv.status())
	if err != nil {
		return err
	}
	return c.writePacket(protocol.Frame(constants.StatusResponseClientbound, packet.String(out)))
}

func handlePing(c *Connection, _ int32, r *protocol.Reader) error {
	payload, err := r.Long()
	if err != nil {
		return err
	}
	return c.writePacket(protocol.Frame(constants.StatusPongClientbound, packet.Long(payload)))
}
