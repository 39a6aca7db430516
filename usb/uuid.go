package usb

import (
	"fmt"
	"strings"
)

// Known platform capability UUIDs, in canonical string form.
const (
	WebUSBPlatformUUID = "3408b638-09a9-47a0-8bfd-a0768815b665"
	MSOS20PlatformUUID = "d8dd60df-4589-4cc7-9cd2-659d9e648a9f"
)

// PlatformKind identifies the owner of a platform capability UUID.
type PlatformKind int

const (
	PlatformUnknown PlatformKind = iota
	PlatformWebUSB
	PlatformMSOS20
)

func (k PlatformKind) String() string {
	switch k {
	case PlatformWebUSB:
		return "WebUSB Platform Capability"
	case PlatformMSOS20:
		return "MS OS 2.0 Platform Capability"
	default:
		return "Unknown Platform Capability"
	}
}

// FormatUUID renders the 16 UUID bytes of a platform capability descriptor
// as xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx. The first three fields are
// stored little-endian on the wire and are byte-reversed here; the final
// eight bytes are rendered in storage order.
func FormatUUID(uuid [16]byte) string {
	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		uuid[3], uuid[2], uuid[1], uuid[0],
		uuid[5], uuid[4],
		uuid[7], uuid[6],
		uuid[8], uuid[9],
		uuid[10], uuid[11], uuid[12], uuid[13], uuid[14], uuid[15])
}

// ClassifyUUID matches the formatted UUID case-insensitively against the
// known WebUSB and MS OS 2.0 platform UUIDs.
func ClassifyUUID(uuid [16]byte) PlatformKind {
	s := FormatUUID(uuid)
	switch {
	case strings.EqualFold(s, WebUSBPlatformUUID):
		return PlatformWebUSB
	case strings.EqualFold(s, MSOS20PlatformUUID):
		return PlatformMSOS20
	default:
		return PlatformUnknown
	}
}
