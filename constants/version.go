package constants

import "time"

const (
	MCVersion  = "1.20.1"
	MCProtocol = 763
)

const (
	MaxFrameSize    = 2097152 // 2 MiB
	MaxStringLength = 32767
	MaxVarIntBytes  = 5

	// StatusSampleSize caps the player names listed in a status response.
	StatusSampleSize = 12

	IdleTimeout = 30 * time.Second
)

// OfflineUUID is sent in Login Success for every player; offline mode has no
// account lookup.
const OfflineUUID = "00000000-0000-0000-0000-000000000000"
