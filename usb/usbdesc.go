// Package usb contains shared constants and low-level helpers for decoding
// USB descriptors.
package usb

// USB descriptor type constants
const (
	StringDescType    = 0x03
	BOSDescType       = 0x0F
	DeviceCapDescType = 0x10
)

// Device capability types within a BOS descriptor
const (
	PlatformDevCapType = 0x05
)

// Descriptor lengths in bytes (fixed values from USB spec)
const (
	BOSHeaderLen = 5
	// CapHeaderLen covers bLength, bDescriptorType and bDevCapabilityType.
	CapHeaderLen = 3
	// PlatformCapHeaderLen covers the capability header, bReserved and the
	// 16-byte UUID; capability-specific data follows.
	PlatformCapHeaderLen = 20
)

// WebUSB constants (WICG WebUSB spec)
const (
	WebUSBReqGetURL   = 2
	WebUSBURLDescType = 3
)

// MS OS 2.0 constants (Microsoft OS 2.0 Descriptors Specification)
const (
	// MSOS20DescriptorIndex is the wIndex value of the vendor request that
	// retrieves the descriptor set.
	MSOS20DescriptorIndex = 0x07
	// WindowsVersion81 is the NTDDI version constant for Windows 8.1, the
	// minimum version MS OS 2.0 descriptors apply to.
	WindowsVersion81 = 0x06030000
)
