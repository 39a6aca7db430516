package usb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned by Reader accessors when a read would extend
// past the end of the underlying buffer.
var ErrOutOfBounds = errors.New("read out of bounds")

// Reader is a bounds-checked, offset-addressed view over an immutable byte
// buffer. All multi-byte reads are little-endian, matching the USB wire
// format. Reader never copies or mutates the buffer; callers retain
// ownership.
type Reader struct {
	buf []byte
}

// NewReader wraps buf. The buffer must not be mutated while the Reader is
// in use.
func NewReader(buf []byte) Reader {
	return Reader{buf: buf}
}

// Len returns the total buffer length.
func (r Reader) Len() int {
	return len(r.buf)
}

// Remaining returns the number of bytes from offset to the end of the
// buffer, or 0 if offset is past the end.
func (r Reader) Remaining(offset int) int {
	if offset >= len(r.buf) {
		return 0
	}
	return len(r.buf) - offset
}

func (r Reader) require(offset, width int) error {
	if offset < 0 || offset+width > len(r.buf) {
		return fmt.Errorf("%w: offset %d width %d buffer %d", ErrOutOfBounds, offset, width, len(r.buf))
	}
	return nil
}

// U8 reads a single byte at offset.
func (r Reader) U8(offset int) (uint8, error) {
	if err := r.require(offset, 1); err != nil {
		return 0, err
	}
	return r.buf[offset], nil
}

// U16 reads a little-endian 16-bit value at offset.
func (r Reader) U16(offset int) (uint16, error) {
	if err := r.require(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[offset:]), nil
}

// U32 reads a little-endian 32-bit value at offset.
func (r Reader) U32(offset int) (uint32, error) {
	if err := r.require(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[offset:]), nil
}

// Bytes returns the n bytes starting at offset. The returned slice aliases
// the underlying buffer and must be treated as read-only.
func (r Reader) Bytes(offset, n int) ([]byte, error) {
	if err := r.require(offset, n); err != nil {
		return nil, err
	}
	return r.buf[offset : offset+n], nil
}
