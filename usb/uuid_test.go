package usb_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

// Wire encodings of the two known platform UUIDs: the first three fields
// are stored little-endian, the rest in order.
var (
	webusbWire = [16]byte{
		0x38, 0xB6, 0x08, 0x34, 0xA9, 0x09, 0xA0, 0x47,
		0x8B, 0xFD, 0xA0, 0x76, 0x88, 0x15, 0xB6, 0x65,
	}
	msos20Wire = [16]byte{
		0xDF, 0x60, 0xDD, 0xD8, 0x89, 0x45, 0xC7, 0x4C,
		0x9C, 0xD2, 0x65, 0x9D, 0x9E, 0x64, 0x8A, 0x9F,
	}
)

func TestFormatUUID(t *testing.T) {
	assert.Equal(t, usb.WebUSBPlatformUUID, usb.FormatUUID(webusbWire))
	assert.Equal(t, usb.MSOS20PlatformUUID, usb.FormatUUID(msos20Wire))
}

func TestFormatUUIDDeterministic(t *testing.T) {
	assert.Equal(t, usb.FormatUUID(webusbWire), usb.FormatUUID(webusbWire))
}

func TestClassifyUUID(t *testing.T) {
	assert.Equal(t, usb.PlatformWebUSB, usb.ClassifyUUID(webusbWire))
	assert.Equal(t, usb.PlatformMSOS20, usb.ClassifyUUID(msos20Wire))

	var other [16]byte
	other[0] = 0x42
	assert.Equal(t, usb.PlatformUnknown, usb.ClassifyUUID(other))
}

func TestClassifyUUIDCaseInsensitive(t *testing.T) {
	// The formatted string is lowercase hex; classification must not
	// depend on the casing of the reference constants.
	formatted := usb.FormatUUID(webusbWire)
	assert.True(t, strings.EqualFold(formatted, strings.ToUpper(usb.WebUSBPlatformUUID)))
	assert.Equal(t, usb.PlatformWebUSB, usb.ClassifyUUID(webusbWire))
}

func TestPlatformKindString(t *testing.T) {
	assert.Equal(t, "WebUSB Platform Capability", usb.PlatformWebUSB.String())
	assert.Equal(t, "MS OS 2.0 Platform Capability", usb.PlatformMSOS20.String())
	assert.Equal(t, "Unknown Platform Capability", usb.PlatformUnknown.String())
}
