// Package render turns analysis results into a terminal report. It owns
// all presentation concerns (color, layout, severity marks); the parsers
// only produce data.
package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/bos"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/diag"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/msos20"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/webusb"
)

var (
	errColor  = lipgloss.AdaptiveColor{Light: "#8B0000", Dark: "#FF6B6B"}
	warnColor = lipgloss.AdaptiveColor{Light: "#8B5A00", Dark: "#FFB86C"}
	okColor   = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#9FF29A"}
)

type styles struct {
	header lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	ok     lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{header: plain, err: plain, warn: plain, ok: plain}
	}
	return styles{
		header: lipgloss.NewStyle().Bold(true),
		err:    lipgloss.NewStyle().Foreground(errColor),
		warn:   lipgloss.NewStyle().Foreground(warnColor),
		ok:     lipgloss.NewStyle().Foreground(okColor),
	}
}

// Renderer writes reports to a single output stream.
type Renderer struct {
	w  io.Writer
	st styles
}

// New creates a Renderer. color selects styled output; pass false when the
// stream is not a terminal.
func New(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, st: newStyles(color)}
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) section(title string) {
	r.printf("%s\n", r.st.header.Render("=== "+title+" ==="))
}

func (r *Renderer) diagnostics(res diag.Result) {
	for _, d := range res.Diagnostics {
		line := d.Severity.String() + ": " + d.Message
		if d.Offset != diag.NoOffset {
			line = fmt.Sprintf("%s (offset %d)", line, d.Offset)
		}
		switch d.Severity {
		case diag.SeverityError:
			r.printf("%s\n", r.st.err.Render(line))
		default:
			r.printf("%s\n", r.st.warn.Render(line))
		}
	}
}

func (r *Renderer) summary(what string, res diag.Result) {
	switch res.Verdict {
	case diag.WellFormed:
		r.printf("%s\n", r.st.ok.Render(fmt.Sprintf("✓ %s appears to be well-formed", what)))
	case diag.ValidWithWarnings:
		r.printf("%s\n", r.st.warn.Render(fmt.Sprintf("⚠ %s is valid but has %d warning(s)", what, res.WarningCount)))
	default:
		r.printf("%s\n", r.st.err.Render(fmt.Sprintf("✗ %s has %d error(s) and %d warning(s)", what, res.ErrorCount, res.WarningCount)))
	}
	r.printf("\n")
}

// BOS renders a BOS descriptor analysis. d may be nil when the buffer was
// too short to decode a header.
func (r *Renderer) BOS(d *bos.Descriptor, res diag.Result, bufLen int) {
	r.section("BOS Descriptor Analysis")
	r.printf("Total BOS length: %d bytes\n\n", bufLen)

	if d != nil {
		r.printf("BOS Header:\n")
		r.printf("  bLength: %d\n", d.BLength)
		typeName := "UNKNOWN"
		if d.BDescriptorType == usb.BOSDescType {
			typeName = "BOS"
		}
		r.printf("  bDescriptorType: 0x%02x (%s)\n", d.BDescriptorType, typeName)
		r.printf("  wTotalLength: %d\n", d.WTotalLength)
		r.printf("  bNumDeviceCaps: %d\n\n", d.BNumDeviceCaps)

		for i, c := range d.Capabilities {
			r.capability(i, c)
		}
	}

	r.diagnostics(res)
	r.printf("Parsed %d device capabilities, %d errors, %d warnings\n",
		capCount(d), res.ErrorCount, res.WarningCount)
	r.summary("BOS descriptor", res)
}

func capCount(d *bos.Descriptor) int {
	if d == nil {
		return 0
	}
	return len(d.Capabilities)
}

func (r *Renderer) capability(i int, c bos.Capability) {
	r.printf("Device Capability %d (offset %d):\n", i, c.Offset)
	r.printf("  bLength: %d\n", c.BLength)
	typeName := "UNKNOWN"
	if c.BDescriptorType == usb.DeviceCapDescType {
		typeName = "DEVICE_CAPABILITY"
	}
	r.printf("  bDescriptorType: 0x%02x (%s)\n", c.BDescriptorType, typeName)
	r.printf("  bDevCapabilityType: 0x%02x\n", c.BDevCapabilityType)

	p := c.Platform
	if p == nil {
		r.printf("  Non-Platform Capability (type 0x%02x)\n\n", c.BDevCapabilityType)
		return
	}

	r.printf("  Platform Capability:\n")
	r.printf("    bReserved: %d\n", p.BReserved)
	r.printf("    UUID: %s\n", p.UUIDString())
	r.printf("    Type: %s\n", p.Kind)

	if w := p.WebUSB; w != nil {
		landing := "Not Present"
		if w.ILandingPage == 1 {
			landing = "Present"
		}
		r.printf("    WebUSB Data:\n")
		r.printf("      bcdVersion: 0x%04x\n", w.BcdVersion)
		r.printf("      bVendorCode: 0x%02x\n", w.BVendorCode)
		r.printf("      iLandingPage: %d (%s)\n", w.ILandingPage, landing)
	}
	if m := p.MSOS20; m != nil {
		r.printf("    MS OS 2.0 Data:\n")
		r.printf("      dwWindowsVersion: 0x%08x\n", m.DwWindowsVersion)
		r.printf("      wMSOSDescriptorSetTotalLength: %d\n", m.WDescriptorSetTotalLength)
		r.printf("      bMS_VendorCode: 0x%02x\n", m.BMSVendorCode)
		r.printf("      bAltEnumCode: %d\n", m.BAltEnumCode)
	}
	r.printf("\n")
}

// URL renders a WebUSB URL descriptor analysis.
func (r *Renderer) URL(d *webusb.URLDescriptor, res diag.Result, bufLen int) {
	r.section("WebUSB URL Descriptor")
	r.printf("Length: %d bytes\n", bufLen)

	if d != nil {
		r.printf("bLength: %d\n", d.BLength)
		typeName := "UNKNOWN"
		if d.BDescriptorType == usb.WebUSBURLDescType {
			typeName = "WebUSB URL"
		}
		r.printf("bDescriptorType: %d (%s)\n", d.BDescriptorType, typeName)
		r.printf("bScheme: %d (%s)\n", d.BScheme, d.Scheme)
		if d.URL != "" {
			r.printf("URL: %s\n", d.URL)
		}
	}

	r.diagnostics(res)
	r.summary("WebUSB URL descriptor", res)
}

// MSOS20 renders an MS OS 2.0 descriptor set analysis.
func (r *Renderer) MSOS20(set *msos20.DescriptorSet, res diag.Result, bufLen int) {
	r.section("MS OS 2.0 Descriptor Analysis")
	r.printf("Total descriptor length: %d bytes\n\n", bufLen)

	if set != nil {
		for _, e := range set.Entries {
			r.entry(e)
		}
		r.printf("\n")
	}

	r.diagnostics(res)
	r.printf("Parsing completed: %d errors, %d warnings\n", res.ErrorCount, res.WarningCount)
	r.summary("MS OS 2.0 descriptor set", res)
}

func (r *Renderer) entry(e msos20.Entry) {
	m := e.Meta()
	r.printf("Offset %d: ", m.Offset)
	switch v := e.(type) {
	case *msos20.SetHeader:
		r.printf("Set Header (len=%d, winver=0x%08x, total=%d)\n", m.WLength, v.DwWindowsVersion, v.WTotalLength)
	case *msos20.ConfigSubsetHeader:
		r.printf("Configuration Subset Header (len=%d, config=%d, total=%d)\n", m.WLength, v.BConfigurationValue, v.WTotalLength)
	case *msos20.FunctionSubsetHeader:
		r.printf("Function Subset Header (len=%d, interface=%d, subset=%d)\n", m.WLength, v.BFirstInterface, v.WSubsetLength)
	case *msos20.CompatibleID:
		r.printf("Compatible ID Feature (len=%d, compat='%s', subcompat='%s')\n", m.WLength, asciiTrim(v.ID), asciiTrim(v.SubID))
	case *msos20.RegistryProperty:
		r.printf("Registry Property Feature (len=%d, datatype=%d, namelen=%d)\n", m.WLength, v.WPropertyDataType, v.WPropertyNameLength)
		if v.PropertyName != "" {
			r.printf("  Property Name: %s\n", v.PropertyName)
		}
		r.printf("  Property Data Length: %d\n", v.WPropertyDataLength)
		if v.PropertyData != "" {
			r.printf("  Property Data: %s\n", v.PropertyData)
		}
	default:
		r.printf("descriptor type 0x%04x (len=%d)\n", m.WDescriptorType, m.WLength)
	}
}

// asciiTrim renders an 8-byte ID field up to its first NUL.
func asciiTrim(b [8]byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b[:])
}
