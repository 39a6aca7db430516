// Package bos decodes the USB Binary Device Object Store descriptor and
// classifies its device capabilities, including the WebUSB and MS OS 2.0
// platform capabilities.
package bos

import (
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/diag"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

// Descriptor is the decoded BOS header plus its device capability array.
type Descriptor struct {
	BLength         uint8
	BDescriptorType uint8
	WTotalLength    uint16
	BNumDeviceCaps  uint8
	Capabilities    []Capability
}

// Capability is one device capability record, tagged with its byte offset
// within the BOS buffer. Platform is non-nil only for platform
// capabilities whose 20-byte header fits inside the buffer.
type Capability struct {
	Offset             int
	BLength            uint8
	BDescriptorType    uint8
	BDevCapabilityType uint8
	Platform           *PlatformCapability
}

// PlatformCapability is a decoded platform device capability. Exactly one
// of WebUSB and MSOS20 is non-nil when Kind is the corresponding value and
// the capability-specific data fit inside the declared capability length.
type PlatformCapability struct {
	BReserved uint8
	UUID      [16]byte
	Kind      usb.PlatformKind
	WebUSB    *WebUSBData
	MSOS20    *MSOS20Data
}

// UUIDString returns the canonical rendering of the capability UUID.
func (p *PlatformCapability) UUIDString() string {
	return usb.FormatUUID(p.UUID)
}

// WebUSBData is the WebUSB platform capability payload.
type WebUSBData struct {
	BcdVersion   uint16
	BVendorCode  uint8
	ILandingPage uint8
}

// MSOS20Data is the MS OS 2.0 platform capability payload.
type MSOS20Data struct {
	DwWindowsVersion          uint32
	WDescriptorSetTotalLength uint16
	BMSVendorCode             uint8
	BAltEnumCode              uint8
}

// Parse decodes a fetched BOS descriptor buffer. The returned Descriptor
// is nil only when the buffer is too short to hold the 5-byte header. All
// findings, fatal or not, are reported through the Result; Parse itself
// never fails.
func Parse(buf []byte) (*Descriptor, diag.Result) {
	var rep diag.Report
	r := usb.NewReader(buf)
	length := r.Len()

	if length < usb.BOSHeaderLen {
		rep.Errorf(0, "BOS descriptor too short (%d bytes, minimum %d)", length, usb.BOSHeaderLen)
		return nil, rep.Result()
	}

	d := &Descriptor{}
	d.BLength, _ = r.U8(0)
	d.BDescriptorType, _ = r.U8(1)
	d.WTotalLength, _ = r.U16(2)
	d.BNumDeviceCaps, _ = r.U8(4)

	if d.BDescriptorType != usb.BOSDescType {
		rep.Errorf(1, "invalid BOS descriptor type 0x%02x", d.BDescriptorType)
	}
	if int(d.WTotalLength) != length {
		rep.Warnf(2, "BOS total length mismatch (reported=%d, actual=%d)", d.WTotalLength, length)
	}

	offset := int(d.BLength)
	for offset < length && len(d.Capabilities) < int(d.BNumDeviceCaps) {
		if offset+usb.CapHeaderLen > length {
			rep.Errorf(offset, "truncated device capability at offset %d", offset)
			break
		}

		cap := Capability{Offset: offset}
		cap.BLength, _ = r.U8(offset)
		cap.BDescriptorType, _ = r.U8(offset + 1)
		cap.BDevCapabilityType, _ = r.U8(offset + 2)

		if int(cap.BLength) < usb.CapHeaderLen {
			rep.Errorf(offset, "invalid device capability length %d at offset %d (minimum %d)",
				cap.BLength, offset, usb.CapHeaderLen)
			d.Capabilities = append(d.Capabilities, cap)
			break
		}

		if cap.BDevCapabilityType == usb.PlatformDevCapType && offset+usb.PlatformCapHeaderLen <= length {
			cap.Platform = parsePlatform(r, offset, int(cap.BLength), &rep)
		}

		d.Capabilities = append(d.Capabilities, cap)
		// Advance by the declared length even when the payload could not be
		// interpreted; the capability still consumes its bytes.
		offset += int(cap.BLength)
	}

	return d, rep.Result()
}

// parsePlatform decodes the platform capability at offset. capLength is
// the capability's declared bLength; capability-specific data are decoded
// only when both capLength and the buffer can hold them.
func parsePlatform(r usb.Reader, offset, capLength int, rep *diag.Report) *PlatformCapability {
	p := &PlatformCapability{}
	p.BReserved, _ = r.U8(offset + 3)
	uuidBytes, err := r.Bytes(offset+4, 16)
	if err != nil {
		return nil
	}
	copy(p.UUID[:], uuidBytes)
	p.Kind = usb.ClassifyUUID(p.UUID)

	data := offset + usb.PlatformCapHeaderLen
	switch p.Kind {
	case usb.PlatformWebUSB:
		if capLength >= usb.PlatformCapHeaderLen+4 && data+4 <= r.Len() {
			w := &WebUSBData{}
			w.BcdVersion, _ = r.U16(data)
			w.BVendorCode, _ = r.U8(data + 2)
			w.ILandingPage, _ = r.U8(data + 3)
			if w.BVendorCode == 0 {
				rep.Warnf(data+2, "WebUSB vendor code is 0 (invalid)")
			}
			p.WebUSB = w
		}
	case usb.PlatformMSOS20:
		if capLength >= usb.PlatformCapHeaderLen+8 && data+8 <= r.Len() {
			m := &MSOS20Data{}
			m.DwWindowsVersion, _ = r.U32(data)
			m.WDescriptorSetTotalLength, _ = r.U16(data + 4)
			m.BMSVendorCode, _ = r.U8(data + 6)
			m.BAltEnumCode, _ = r.U8(data + 7)
			if m.DwWindowsVersion != usb.WindowsVersion81 {
				rep.Warnf(data, "unusual Windows version 0x%08x (expected 0x%08x)",
					m.DwWindowsVersion, uint32(usb.WindowsVersion81))
			}
			p.MSOS20 = m
		}
	}
	return p
}

// FindWebUSB scans a raw BOS buffer for a WebUSB platform capability and
// returns its vendor code and landing page index. Both are needed to fetch
// the landing page URL descriptor; ok is false when no WebUSB capability
// with a complete payload is present.
func FindWebUSB(buf []byte) (vendorCode, landingPage uint8, ok bool) {
	d, _ := Parse(buf)
	if d == nil {
		return 0, 0, false
	}
	for _, cap := range d.Capabilities {
		if cap.Platform != nil && cap.Platform.WebUSB != nil {
			return cap.Platform.WebUSB.BVendorCode, cap.Platform.WebUSB.ILandingPage, true
		}
	}
	return 0, 0, false
}

// FindMSOS20 returns the MS OS 2.0 vendor code advertised in the BOS
// buffer, used as bRequest for the descriptor set fetch.
func FindMSOS20(buf []byte) (vendorCode uint8, ok bool) {
	d, _ := Parse(buf)
	if d == nil {
		return 0, false
	}
	for _, cap := range d.Capabilities {
		if cap.Platform != nil && cap.Platform.MSOS20 != nil {
			return cap.Platform.MSOS20.BMSVendorCode, true
		}
	}
	return 0, false
}
