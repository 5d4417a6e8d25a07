package protocol

import (
	"bytes"
	"io"

	"github.com/Tnze/go-mc/net/packet"
	"github.com/google/uuid"

	"github.com/skyezerfox/magma/constants"
)

// Reader decodes the fields of a single packet body. Every failure is
// reported as ErrMalformedPacket so that callers never confuse a bad field
// with a framing problem.
type Reader struct {
	body []byte
	r    *bytes.Reader
}

// NewReader returns a Reader over body.
func NewReader(body []byte) *Reader {
	return &Reader{body: body, r: bytes.NewReader(body)}
}

// Len is the number of unread bytes.
func (r *Reader) Len() int { return r.r.Len() }

func (r *Reader) offset() int { return len(r.body) - r.r.Len() }

// VarInt reads a VarInt field.
func (r *Reader) VarInt() (int32, error) {
	off := r.offset()
	v, n, err := DecodeVarInt(r.body[off:])
	if err != nil {
		return 0, malformed("varint at offset %d: %v", off, err)
	}
	_, _ = r.r.Seek(int64(off+n), io.SeekStart)
	return v, nil
}

// String reads a VarInt length followed by that many UTF-8 bytes. The
// length is checked against the protocol limit before the payload is
// touched.
func (r *Reader) String() (string, error) {
	n, err := r.VarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || n > constants.MaxStringLength {
		return "", malformed("string length %d out of range", n)
	}
	if int(n) > r.Len() {
		return "", malformed("string length %d exceeds remaining %d bytes", n, r.Len())
	}
	b := make([]byte, n)
	_, _ = r.r.Read(b)
	return string(b), nil
}

// UnsignedShort reads a big-endian uint16.
func (r *Reader) UnsignedShort() (uint16, error) {
	var v packet.UnsignedShort
	if err := v.Decode(r.r); err != nil {
		return 0, malformed("unsigned short: %v", err)
	}
	return uint16(v), nil
}

// Long reads a big-endian int64.
func (r *Reader) Long() (int64, error) {
	var v packet.Long
	if err := v.Decode(r.r); err != nil {
		return 0, malformed("long: %v", err)
	}
	return int64(v), nil
}

// Boolean reads a single byte; any non-zero value is true.
func (r *Reader) Boolean() (bool, error) {
	var v packet.Boolean
	if err := v.Decode(r.r); err != nil {
		return false, malformed("boolean: %v", err)
	}
	return bool(v), nil
}

// UUID reads a 128-bit big-endian UUID.
func (r *Reader) UUID() (uuid.UUID, error) {
	var v packet.UUID
	if err := v.Decode(r.r); err != nil {
		return uuid.Nil, malformed("uuid: %v", err)
	}
	return uuid.UUID(v), nil
}

// Rest consumes and returns every unread byte.
func (r *Reader) Rest() []byte {
	off := r.offset()
	_, _ = r.r.Seek(0, io.SeekEnd)
	return r.body[off:]
}

// Finish reports trailing bytes as a malformed packet.
func (r *Reader) Finish() error {
	if n := r.Len(); n != 0 {
		return malformed("%d trailing bytes", n)
	}
	return nil
}
