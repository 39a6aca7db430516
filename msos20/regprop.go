package msos20

import (
	"strings"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/diag"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

// Registry property data types relevant to driver installation.
const (
	RegSz      = 1
	RegMultiSz = 7
)

// RegistryProperty is the registry property feature descriptor. Name and
// data are UTF-16LE on the wire; PropertyName and PropertyData hold their
// printable rendering (low byte of each code unit, non-printable units
// shown as '?').
type RegistryProperty struct {
	EntryMeta
	WPropertyDataType   uint16
	WPropertyNameLength uint16
	PropertyName        string
	WPropertyDataLength uint16
	PropertyData        string
}

// parseRegistryProperty decodes the registry property at meta.Offset. The
// caller has already verified that the declared length is at least 8 and
// lies within the buffer; the name and data regions still need their own
// bounds checks because their lengths are independent of wLength.
func parseRegistryProperty(r usb.Reader, meta EntryMeta, rep *diag.Report) *RegistryProperty {
	offset := meta.Offset
	length := r.Len()
	wLength := int(meta.WLength)

	p := &RegistryProperty{EntryMeta: meta}
	p.WPropertyDataType, _ = r.U16(offset + 4)
	p.WPropertyNameLength, _ = r.U16(offset + 6)

	if p.WPropertyDataType != RegSz && p.WPropertyDataType != RegMultiSz {
		rep.Warnf(offset+4, "unusual property data type %d (1=REG_SZ, 7=REG_MULTI_SZ)", p.WPropertyDataType)
	}

	nameLen := int(p.WPropertyNameLength)
	if nameLen == 0 || nameLen%2 != 0 {
		rep.Errorf(offset+6, "invalid property name length %d (must be even and >0)", nameLen)
		return p
	}
	if offset+8+nameLen > length {
		rep.Errorf(offset+8, "property name extends beyond descriptor")
		return p
	}

	name, _ := r.Bytes(offset+8, nameLen)
	var visible int
	p.PropertyName, visible = decodeDisplayString(name)
	if visible == 0 {
		rep.Warnf(offset+8, "empty property name")
	}

	dataOffset := offset + 8 + nameLen
	if dataOffset+2 > length {
		rep.Errorf(dataOffset, "property data length field beyond descriptor")
		return p
	}
	p.WPropertyDataLength, _ = r.U16(dataOffset)
	dataLen := int(p.WPropertyDataLength)

	if expected := 8 + nameLen + 2 + dataLen; expected != wLength {
		rep.Errorf(offset, "length mismatch (calculated=%d, reported=%d)", expected, wLength)
	}

	if dataOffset+2+dataLen > length {
		rep.Errorf(dataOffset+2, "property data extends beyond descriptor")
	} else if dataLen > 0 {
		data, _ := r.Bytes(dataOffset+2, dataLen)
		p.PropertyData, _ = decodeDisplayString(data)
	}

	return p
}

// decodeDisplayString renders a UTF-16LE region for display. It walks
// 2-byte code units over len(b)-2 bytes, excluding the trailing null code
// unit, and keeps only the low byte of each unit: printable ASCII is
// copied, a zero low byte terminates the string early, anything else
// becomes '?'. visible counts the printable characters kept.
func decodeDisplayString(b []byte) (s string, visible int) {
	var sb strings.Builder
	for i := 0; i < len(b)-2; i += 2 {
		c := b[i]
		switch {
		case c >= 32 && c <= 126:
			sb.WriteByte(c)
			visible++
		case c == 0:
			return sb.String(), visible
		default:
			sb.WriteByte('?')
		}
	}
	return sb.String(), visible
}
