package render_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/bos"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/msos20"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/render"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/webusb"
)

var webusbWire = []byte{
	0x38, 0xB6, 0x08, 0x34, 0xA9, 0x09, 0xA0, 0x47,
	0x8B, 0xFD, 0xA0, 0x76, 0x88, 0x15, 0xB6, 0x65,
}

func webusbBOS(vendorCode, landingPage uint8) []byte {
	cap := []byte{24, usb.DeviceCapDescType, usb.PlatformDevCapType, 0}
	cap = append(cap, webusbWire...)
	cap = append(cap, 0x00, 0x01, vendorCode, landingPage)

	buf := []byte{5, usb.BOSDescType, 0, 0, 1}
	buf = append(buf, cap...)
	binary.LittleEndian.PutUint16(buf[2:], uint16(len(buf)))
	return buf
}

func TestRenderBOSReport(t *testing.T) {
	buf := webusbBOS(0x01, 1)
	d, res := bos.Parse(buf)
	require.NotNil(t, d)

	var out bytes.Buffer
	render.New(&out, false).BOS(d, res, len(buf))

	report := out.String()
	assert.Contains(t, report, "=== BOS Descriptor Analysis ===")
	assert.Contains(t, report, "Total BOS length: 29 bytes")
	assert.Contains(t, report, "bDescriptorType: 0x0f (BOS)")
	assert.Contains(t, report, "bNumDeviceCaps: 1")
	assert.Contains(t, report, "Device Capability 0 (offset 5):")
	assert.Contains(t, report, "UUID: "+usb.WebUSBPlatformUUID)
	assert.Contains(t, report, "Type: WebUSB Platform Capability")
	assert.Contains(t, report, "bcdVersion: 0x0100")
	assert.Contains(t, report, "iLandingPage: 1 (Present)")
	assert.Contains(t, report, "Parsed 1 device capabilities, 0 errors, 0 warnings")
	assert.Contains(t, report, "✓ BOS descriptor appears to be well-formed")
}

func TestRenderBOSWarnings(t *testing.T) {
	buf := webusbBOS(0x00, 0)
	d, res := bos.Parse(buf)

	var out bytes.Buffer
	render.New(&out, false).BOS(d, res, len(buf))

	report := out.String()
	assert.Contains(t, report, "iLandingPage: 0 (Not Present)")
	assert.Contains(t, report, "WARNING: WebUSB vendor code is 0 (invalid)")
	assert.Contains(t, report, "⚠ BOS descriptor is valid but has 1 warning(s)")
}

func TestRenderBOSInvalid(t *testing.T) {
	d, res := bos.Parse([]byte{0x05})

	var out bytes.Buffer
	render.New(&out, false).BOS(d, res, 1)

	report := out.String()
	assert.NotContains(t, report, "BOS Header:", "no header block for an undecodable buffer")
	assert.Contains(t, report, "ERROR: ")
	assert.Contains(t, report, "(offset 0)")
	assert.Contains(t, report, "✗ BOS descriptor has 1 error(s) and 0 warning(s)")
}

func TestRenderURLReport(t *testing.T) {
	buf := append([]byte{14, usb.WebUSBURLDescType, 1}, "example.com"...)
	d, res := webusb.Parse(buf)
	require.NotNil(t, d)

	var out bytes.Buffer
	render.New(&out, false).URL(d, res, len(buf))

	report := out.String()
	assert.Contains(t, report, "=== WebUSB URL Descriptor ===")
	assert.Contains(t, report, "bDescriptorType: 3 (WebUSB URL)")
	assert.Contains(t, report, "bScheme: 1 (HTTPS)")
	assert.Contains(t, report, "URL: https://example.com")
	assert.Contains(t, report, "✓ WebUSB URL descriptor appears to be well-formed")
}

func TestRenderMSOS20Report(t *testing.T) {
	var buf []byte
	buf = append(buf, 10, 0, 0, 0) // set header
	var winver [4]byte
	binary.LittleEndian.PutUint32(winver[:], usb.WindowsVersion81)
	buf = append(buf, winver[:]...)
	buf = append(buf, 0, 0) // wTotalLength, patched below
	// compatible ID feature
	buf = append(buf, 20, 0, 3, 0)
	buf = append(buf, "WINUSB\x00\x00"...)
	buf = append(buf, make([]byte, 8)...)
	binary.LittleEndian.PutUint16(buf[8:], uint16(len(buf)))

	set, res := msos20.Parse(buf)
	require.Len(t, set.Entries, 2)

	var out bytes.Buffer
	render.New(&out, false).MSOS20(set, res, len(buf))

	report := out.String()
	assert.Contains(t, report, "=== MS OS 2.0 Descriptor Analysis ===")
	assert.Contains(t, report, "Offset 0: Set Header (len=10, winver=0x06030000, total=30)")
	assert.Contains(t, report, "Offset 10: Compatible ID Feature (len=20, compat='WINUSB', subcompat='')")
	assert.Contains(t, report, "Parsing completed: 0 errors, 0 warnings")
	assert.Contains(t, report, "✓ MS OS 2.0 descriptor set appears to be well-formed")
}
