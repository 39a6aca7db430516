// Package msos20 decodes the Microsoft OS 2.0 descriptor set: a flat
// stream of length-prefixed sub-descriptors covering set/subset headers
// and the Compatible ID and Registry Property features.
package msos20

import (
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/diag"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

// wDescriptorType values (Microsoft OS 2.0 Descriptors Specification)
const (
	TypeSetHeader            uint16 = 0x00
	TypeConfigSubsetHeader   uint16 = 0x01
	TypeFunctionSubsetHeader uint16 = 0x02
	TypeCompatibleID         uint16 = 0x03
	TypeRegistryProperty     uint16 = 0x04
)

// EntryMeta is the common prefix of every sub-descriptor, tagged with its
// byte offset in the set.
type EntryMeta struct {
	Offset          int
	WLength         uint16
	WDescriptorType uint16
}

// Meta implements Entry.
func (m EntryMeta) Meta() EntryMeta { return m }

// Entry is one decoded sub-descriptor of the set.
type Entry interface {
	Meta() EntryMeta
}

// SetHeader is the mandatory first sub-descriptor of a set.
type SetHeader struct {
	EntryMeta
	DwWindowsVersion uint32
	WTotalLength     uint16
}

// ConfigSubsetHeader scopes the following sub-descriptors to one
// configuration.
type ConfigSubsetHeader struct {
	EntryMeta
	BConfigurationValue uint8
	BReserved           uint8
	WTotalLength        uint16
}

// FunctionSubsetHeader scopes the following sub-descriptors to one
// function (first interface).
type FunctionSubsetHeader struct {
	EntryMeta
	BFirstInterface uint8
	BReserved       uint8
	WSubsetLength   uint16
}

// CompatibleID is the compatible/sub-compatible ID feature descriptor.
type CompatibleID struct {
	EntryMeta
	ID    [8]byte
	SubID [8]byte
}

// DescriptorSet is the decoded sub-descriptor sequence, in stream order,
// up to the first fatal error.
type DescriptorSet struct {
	Entries []Entry
}

// Parse walks a fetched MS OS 2.0 descriptor set buffer. The walk stops at
// the first fatal finding (truncation, zero or undersized declared length,
// a declared length past the buffer, or an unknown descriptor type);
// recoverable findings are recorded and the walk continues with the next
// sub-descriptor. Parse never fails; all findings land in the Result.
func Parse(buf []byte) (*DescriptorSet, diag.Result) {
	var rep diag.Report
	r := usb.NewReader(buf)
	length := r.Len()
	set := &DescriptorSet{}

	offset := 0
	for offset < length {
		if offset+4 > length {
			rep.Errorf(offset, "truncated descriptor at offset %d (need 4 bytes, have %d)", offset, length-offset)
			break
		}

		wLength, _ := r.U16(offset)
		wType, _ := r.U16(offset + 2)

		if wLength == 0 {
			rep.Errorf(offset, "zero length descriptor at offset %d", offset)
			break
		}
		if wLength < 4 {
			rep.Errorf(offset, "invalid descriptor length %d at offset %d (minimum is 4)", wLength, offset)
			break
		}
		if offset+int(wLength) > length {
			rep.Errorf(offset, "descriptor extends beyond buffer (offset=%d, len=%d, buffer=%d)", offset, wLength, length)
			break
		}

		meta := EntryMeta{Offset: offset, WLength: wLength, WDescriptorType: wType}

		switch wType {
		case TypeSetHeader:
			if wLength < 10 {
				rep.Errorf(offset, "set header too short (len=%d, expected=10)", wLength)
				break
			}
			h := &SetHeader{EntryMeta: meta}
			h.DwWindowsVersion, _ = r.U32(offset + 4)
			h.WTotalLength, _ = r.U16(offset + 8)
			if int(h.WTotalLength) != length {
				rep.Warnf(offset+8, "total length mismatch (reported=%d, actual=%d)", h.WTotalLength, length)
			}
			if offset != 0 {
				rep.Warnf(offset, "set header not at beginning (offset=%d)", offset)
			}
			if h.DwWindowsVersion != usb.WindowsVersion81 {
				rep.Warnf(offset+4, "unusual Windows version 0x%08x (expected 0x%08x for Windows 8.1)",
					h.DwWindowsVersion, uint32(usb.WindowsVersion81))
			}
			set.Entries = append(set.Entries, h)

		case TypeConfigSubsetHeader:
			if wLength < 8 {
				rep.Errorf(offset, "configuration subset header too short (len=%d, expected=8)", wLength)
				break
			}
			h := &ConfigSubsetHeader{EntryMeta: meta}
			h.BConfigurationValue, _ = r.U8(offset + 4)
			h.BReserved, _ = r.U8(offset + 5)
			h.WTotalLength, _ = r.U16(offset + 6)
			if h.BReserved != 0 {
				rep.Warnf(offset+5, "reserved field not zero (value=%d)", h.BReserved)
			}
			if offset+int(h.WTotalLength) > length {
				rep.Errorf(offset, "configuration subset extends beyond buffer")
			}
			set.Entries = append(set.Entries, h)

		case TypeFunctionSubsetHeader:
			if wLength < 8 {
				rep.Errorf(offset, "function subset header too short (len=%d, expected=8)", wLength)
				break
			}
			h := &FunctionSubsetHeader{EntryMeta: meta}
			h.BFirstInterface, _ = r.U8(offset + 4)
			h.BReserved, _ = r.U8(offset + 5)
			h.WSubsetLength, _ = r.U16(offset + 6)
			if h.BReserved != 0 {
				rep.Warnf(offset+5, "reserved field not zero (value=%d)", h.BReserved)
			}
			if offset+int(h.WSubsetLength) > length {
				rep.Errorf(offset, "function subset extends beyond buffer")
			}
			if h.WSubsetLength < wLength {
				rep.Errorf(offset, "function subset length smaller than header length")
			}
			set.Entries = append(set.Entries, h)

		case TypeCompatibleID:
			if wLength < 20 {
				rep.Errorf(offset, "compatible ID feature too short (len=%d, expected=20)", wLength)
				break
			}
			c := &CompatibleID{EntryMeta: meta}
			id, _ := r.Bytes(offset+4, 8)
			sub, _ := r.Bytes(offset+12, 8)
			copy(c.ID[:], id)
			copy(c.SubID[:], sub)
			if string(c.ID[:6]) != "WINUSB" {
				rep.Warnf(offset+4, "compatible ID is not 'WINUSB'")
			}
			if c.ID[6] != 0 || c.ID[7] != 0 {
				rep.Warnf(offset+4, "compatible ID not properly null-terminated")
			}
			set.Entries = append(set.Entries, c)

		case TypeRegistryProperty:
			if wLength < 8 {
				rep.Errorf(offset, "registry property feature too short (len=%d, minimum=8)", wLength)
				break
			}
			if p := parseRegistryProperty(r, meta, &rep); p != nil {
				set.Entries = append(set.Entries, p)
			}

		default:
			rep.Errorf(offset, "unknown descriptor type 0x%04x (len=%d)", wType, wLength)
			return set, rep.Result()
		}

		offset += int(wLength)
	}

	return set, rep.Result()
}
