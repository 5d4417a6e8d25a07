package protocol

import (
	"github.com/Tnze/go-mc/net/packet"

	"github.com/skyezerfox/magma/constants"
)

// DecodeVarInt decodes a VarInt from the front of b and returns the value
// with the number of bytes consumed. A short buffer yields ErrNeedMoreData;
// a fifth byte with the continuation bit set yields ErrMalformedVarInt
// without looking at a sixth byte.
func DecodeVarInt(b []byte) (int32, int, error) {
	var v uint32
	for i := 0; i < constants.MaxVarIntBytes; i++ {
		if i >= len(b) {
			return 0, 0, ErrNeedMoreData
		}
		v |= uint32(b[i]&0x7F) << uint(7*i)
		if b[i]&0x80 == 0 {
			return int32(v), i + 1, nil
		}
	}
	return 0, 0, ErrMalformedVarInt
}

// EncodeVarInt returns the wire form of v. Negative values use their
// unsigned 32-bit pattern and always take five bytes.
func EncodeVarInt(v int32) []byte {
	return packet.VarInt(v).Encode()
}

// VarIntSize is the number of bytes EncodeVarInt(v) produces.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}
