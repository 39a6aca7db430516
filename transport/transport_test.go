package transport_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/transport"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("libusb: pipe error")
	err := &transport.Error{Op: "get WebUSB URL", Kind: transport.KindStall, Err: cause}

	assert.Equal(t, "get WebUSB URL: stall (libusb: pipe error)", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := &transport.Error{Op: "open device", Kind: transport.KindNotFound}
	assert.Equal(t, "open device: not found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestErrorAsTarget(t *testing.T) {
	var wrapped error = &transport.Error{Op: "get BOS descriptor", Kind: transport.KindTimeout}

	var te *transport.Error
	assert.True(t, errors.As(wrapped, &te))
	assert.Equal(t, transport.KindTimeout, te.Kind)
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		kind transport.Kind
		want string
	}{
		{transport.KindOther, "other"},
		{transport.KindNotFound, "not found"},
		{transport.KindStall, "stall"},
		{transport.KindTimeout, "timeout"},
		{transport.KindDisconnected, "disconnected"},
		{transport.KindAccessDenied, "access denied"},
		{transport.KindUnsupported, "unsupported"},
		{transport.Kind(99), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}
