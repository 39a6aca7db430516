// Package webusb decodes the WebUSB URL descriptor returned by the
// GET_URL vendor request.
package webusb

import (
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/diag"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

// URL scheme prefix codes (bScheme)
const (
	SchemeHTTP  = 0
	SchemeHTTPS = 1
	SchemeNone  = 255
)

// Scheme is the decoded bScheme value.
type Scheme int

const (
	HTTP Scheme = iota
	HTTPS
	None
	Unknown
)

func (s Scheme) String() string {
	switch s {
	case HTTP:
		return "HTTP"
	case HTTPS:
		return "HTTPS"
	case None:
		return "None"
	default:
		return "Unknown"
	}
}

// Prefix returns the string prepended to the URL suffix. An unrecognized
// scheme gets a visible marker rather than an error; the suffix is still
// usable.
func (s Scheme) Prefix() string {
	switch s {
	case HTTP:
		return "http://"
	case HTTPS:
		return "https://"
	case None:
		return ""
	default:
		return "unknown://"
	}
}

// URLDescriptor is a decoded WebUSB URL descriptor.
type URLDescriptor struct {
	BLength         uint8
	BDescriptorType uint8
	BScheme         uint8
	Scheme          Scheme
	// URL is the scheme prefix plus the raw URL suffix bytes.
	URL string
}

// Parse decodes a fetched WebUSB URL descriptor buffer. The descriptor is
// nil when the buffer cannot hold the 3-byte header.
func Parse(buf []byte) (*URLDescriptor, diag.Result) {
	var rep diag.Report
	r := usb.NewReader(buf)
	length := r.Len()

	if length < 3 {
		rep.Errorf(0, "WebUSB URL descriptor too short (%d bytes, minimum 3)", length)
		return nil, rep.Result()
	}

	d := &URLDescriptor{}
	d.BLength, _ = r.U8(0)
	d.BDescriptorType, _ = r.U8(1)
	d.BScheme, _ = r.U8(2)

	switch d.BScheme {
	case SchemeHTTP:
		d.Scheme = HTTP
	case SchemeHTTPS:
		d.Scheme = HTTPS
	case SchemeNone:
		d.Scheme = None
	default:
		d.Scheme = Unknown
	}

	d.URL = d.Scheme.Prefix()
	if length > 3 {
		// The suffix runs to the declared bLength, clamped to the buffer.
		end := int(d.BLength)
		if end > length {
			end = length
		}
		if end > 3 {
			suffix, _ := r.Bytes(3, end-3)
			d.URL += string(suffix)
		}
	}

	return d, rep.Result()
}
