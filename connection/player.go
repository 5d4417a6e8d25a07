package connection

import (
	"github.com/google/uuid"
)

// Identity is assigned to a connection once login completes. In offline
// mode every player shares the nil UUID, so ID is the connection's own
// number and is what registries and play sinks key on.
type Identity struct {
	ID       uint64
	UUID     uuid.UUID
	Username string
	Addr     string
}

// Settings is the configuration the protocol core reads.
type Settings interface {
	MaxPlayers() int
	MOTD() string
	ServerPort() int
	BindAddress() string
}

// Players tracks logged-in identities. Implementations must be safe for
// concurrent use by every connection.
type Players interface {
	OnlineCount() int
	Register(Identity)
	Unregister(Identity)
}

// Lister is implemented by Players that can enumerate who is online. The
// status response includes a sample of names when it is available.
type Lister interface {
	Players() []Identity
}
