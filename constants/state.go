package constants

// State is the protocol state of a single connection.
type State int

const (
	Handshaking State = iota
	Status
	Login
	Play
)

func (s State) String() string {
	switch s {
	case Handshaking:
		return "handshaking"
	case Status:
		return "status"
	case Login:
		return "login"
	case Play:
		return "play"
	}
	return "unknown"
}

// Handshake next-state intents.
const (
	IntentStatus = 1
	IntentLogin  = 2
)
