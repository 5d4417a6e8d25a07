package protocol

import (
	"errors"
	"fmt"

	"github.com/skyezerfox/magma/constants"
)

// ExtractFrame looks for one complete frame at the front of buf. On success
// it returns the payload and the total number of bytes (prefix plus payload)
// the caller must discard. A partial prefix or payload yields
// ErrNeedMoreData and leaves buf untouched.
//
// The size check runs as soon as the prefix is complete, before any payload
// byte is required.
func ExtractFrame(buf []byte) ([]byte, int, error) {
	length, n, err := DecodeVarInt(buf)
	if err != nil {
		return nil, 0, err
	}
	if uint32(length) > constants.MaxFrameSize {
		return nil, 0, fmt.Errorf("%w: declared %d bytes, limit %d", ErrFrameTooLarge, uint32(length), constants.MaxFrameSize)
	}
	end := n + int(length)
	if len(buf) < end {
		return nil, 0, ErrNeedMoreData
	}
	return buf[n:end], end, nil
}

// AppendFrame appends payload to dst behind its VarInt length prefix.
func AppendFrame(dst, payload []byte) []byte {
	dst = append(dst, EncodeVarInt(int32(len(payload)))...)
	return append(dst, payload...)
}

// FrameDecoder accumulates socket reads and yields frames in arrival order.
// It is owned by one connection and not safe for concurrent use.
type FrameDecoder struct {
	buf []byte
	off int
}

// Feed appends freshly read bytes.
func (d *FrameDecoder) Feed(p []byte) {
	if d.off > 0 && d.off == len(d.buf) {
		d.buf = d.buf[:0]
		d.off = 0
	}
	d.buf = append(d.buf, p...)
}

// Next returns the next complete frame. The returned slice aliases the
// internal buffer and is only valid until the following Next or Feed.
func (d *FrameDecoder) Next() ([]byte, error) {
	frame, n, err := ExtractFrame(d.buf[d.off:])
	if err != nil {
		if errors.Is(err, ErrNeedMoreData) && d.off > 0 {
			d.compact()
		}
		return nil, err
	}
	d.off += n
	return frame, nil
}

// Buffered reports how many bytes are waiting to be framed.
func (d *FrameDecoder) Buffered() int {
	return len(d.buf) - d.off
}

func (d *FrameDecoder) compact() {
	n := copy(d.buf, d.buf[d.off:])
	d.buf = d.buf[:n]
	d.off = 0
}
