package constants

// Serverbound packet IDs.
const (
	HandshakeServerbound          = 0x00
	StatusRequestServerbound      = 0x00
	StatusPingServerbound         = 0x01
	LoginStartServerbound         = 0x00
	EncryptionResponseServerbound = 0x01
)

// Clientbound packet IDs.
const (
	StatusResponseClientbound  = 0x00
	StatusPongClientbound      = 0x01
	LoginDisconnectClientbound = 0x00
	LoginSuccessClientbound    = 0x02
)
