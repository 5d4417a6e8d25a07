package protocol

import (
	"github.com/Tnze/go-mc/net/packet"
)

// Field is anything go-mc knows how to put on the wire.
type Field = packet.FieldEncoder

// Marshal encodes a clientbound packet as packet ID followed by fields,
// without the frame length prefix.
func Marshal(id int32, fields ...Field) []byte {
	p := packet.Marshal(id, fields...)
	return append(EncodeVarInt(p.ID), p.Data...)
}

// Frame encodes a clientbound packet ready to be written to the socket.
func Frame(id int32, fields ...Field) []byte {
	return AppendFrame(nil, Marshal(id, fields...))
}
