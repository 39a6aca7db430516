package usb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

func TestReaderValues(t *testing.T) {
	r := usb.NewReader([]byte{0x05, 0x0F, 0x3D, 0x00, 0x02, 0xAA, 0xBB, 0xCC})

	v8, err := r.U8(0)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x05), v8)

	v16, err := r.U16(2)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x003D), v16, "u16 reads little-endian")

	v32, err := r.U32(4)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xCCBBAA02), v32, "u32 reads little-endian")

	b, err := r.Bytes(5, 3)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, b)
}

func TestReaderBounds(t *testing.T) {
	r := usb.NewReader([]byte{1, 2, 3, 4})

	tests := []struct {
		name string
		read func() error
	}{
		{"u8 past end", func() error { _, err := r.U8(4); return err }},
		{"u16 straddling end", func() error { _, err := r.U16(3); return err }},
		{"u32 straddling end", func() error { _, err := r.U32(1); return err }},
		{"bytes past end", func() error { _, err := r.Bytes(2, 3); return err }},
		{"negative offset", func() error { _, err := r.U8(-1); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.read(), usb.ErrOutOfBounds)
		})
	}
}

func TestReaderRemaining(t *testing.T) {
	r := usb.NewReader([]byte{1, 2, 3})
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Remaining(0))
	assert.Equal(t, 1, r.Remaining(2))
	assert.Equal(t, 0, r.Remaining(3))
	assert.Equal(t, 0, r.Remaining(100))
}

func TestReaderEmptyBuffer(t *testing.T) {
	r := usb.NewReader(nil)
	assert.Equal(t, 0, r.Len())
	_, err := r.U8(0)
	assert.ErrorIs(t, err, usb.ErrOutOfBounds)
}
