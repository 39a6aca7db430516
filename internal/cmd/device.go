// Package cmd implements the usbscan subcommands.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/bos"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/internal/log"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/msos20"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/render"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/transport"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/webusb"
)

// Device fetches descriptors from a connected device and analyzes them.
type Device struct {
	VID string `arg:"" help:"Vendor ID, hex (0x361d) or decimal"`
	PID string `arg:"" help:"Product ID, hex (0x0202) or decimal"`

	Timeout      time.Duration `help:"Control transfer timeout" default:"5s" env:"USBSCAN_TIMEOUT"`
	BufferSize   int           `help:"Transfer buffer size in bytes" default:"512"`
	MSVendorCode uint8         `name:"ms-vendor-code" help:"Fallback MS OS 2.0 vendor code when the BOS descriptor does not advertise one" default:"2"`
}

// Run is called by Kong when the device command is executed.
func (d *Device) Run(logger *slog.Logger, hex log.HexLogger, rend *render.Renderer) error {
	vid, err := parseID("VID", d.VID)
	if err != nil {
		return err
	}
	pid, err := parseID("PID", d.PID)
	if err != nil {
		return err
	}

	logger.Info("looking for USB device", "vid", fmt.Sprintf("%04x", vid), "pid", fmt.Sprintf("%04x", pid))

	dev, err := transport.Open(transport.DeviceConfig{
		VID:        vid,
		PID:        pid,
		Timeout:    d.Timeout,
		BufferSize: d.BufferSize,
	}, logger, hex)
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Kind == transport.KindNotFound {
			logger.Error("device not found; check that it is connected and that the VID:PID is correct (lsusb)")
		}
		return err
	}
	defer func() { _ = dev.Close() }()

	bosBuf := d.analyzeBOS(dev, logger, rend)
	d.analyzeMSOS20(dev, bosBuf, logger, rend)
	return nil
}

// analyzeBOS fetches and analyzes the BOS descriptor and, when a WebUSB
// capability with a landing page is advertised, the URL descriptor. It
// returns the raw BOS bytes for the MS OS 2.0 vendor code lookup, or nil
// when the fetch failed.
func (d *Device) analyzeBOS(dev transport.Transport, logger *slog.Logger, rend *render.Renderer) []byte {
	buf, err := dev.FetchBOS()
	if err != nil {
		logger.Info("BOS descriptor request failed; device may not support BOS descriptors (USB 2.0 device?)", "error", err)
		return nil
	}

	desc, res := bos.Parse(buf)
	rend.BOS(desc, res, len(buf))

	vendor, landing, ok := bos.FindWebUSB(buf)
	if !ok || vendor == 0 || landing == 0 {
		logger.Info("no WebUSB capability found in BOS descriptor")
		return buf
	}

	logger.Info("fetching WebUSB URL",
		"vendorCode", fmt.Sprintf("0x%02x", vendor), "landingPage", landing)
	urlBuf, err := dev.FetchWebUSBURL(vendor, landing)
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Kind == transport.KindStall {
			logger.Info("WebUSB URL request stalled; no landing page may be configured")
		} else {
			logger.Warn("WebUSB URL request failed", "error", err)
		}
		return buf
	}

	u, ures := webusb.Parse(urlBuf)
	rend.URL(u, ures, len(urlBuf))
	return buf
}

func (d *Device) analyzeMSOS20(dev transport.Transport, bosBuf []byte, logger *slog.Logger, rend *render.Renderer) {
	vendor := d.MSVendorCode
	if bosBuf != nil {
		if v, ok := bos.FindMSOS20(bosBuf); ok {
			vendor = v
		}
	}

	logger.Info("fetching MS OS 2.0 descriptor set", "vendorCode", fmt.Sprintf("0x%02x", vendor))
	buf, err := dev.FetchMSOS20(vendor)
	if err != nil {
		explainMSOS20Failure(logger, err)
		return
	}
	if len(buf) == 0 {
		logger.Warn("device returned 0 bytes; it likely does not support MS OS 2.0 descriptors")
		return
	}
	if len(buf) < 10 {
		logger.Warn("MS OS 2.0 descriptor very short, may be truncated", "bytes", len(buf))
	}

	set, res := msos20.Parse(buf)
	rend.MSOS20(set, res, len(buf))
}

func explainMSOS20Failure(logger *slog.Logger, err error) {
	var terr *transport.Error
	if !errors.As(err, &terr) {
		logger.Error("MS OS 2.0 descriptor request failed", "error", err)
		return
	}
	switch terr.Kind {
	case transport.KindStall:
		logger.Error("device returned STALL; it likely does not support MS OS 2.0 descriptors or the vendor code is incorrect", "error", err)
	case transport.KindTimeout:
		logger.Error("MS OS 2.0 request timed out; device may be unresponsive", "error", err)
	case transport.KindDisconnected:
		logger.Error("device was disconnected during the MS OS 2.0 request", "error", err)
	case transport.KindAccessDenied:
		logger.Error("access denied; try running with elevated privileges", "error", err)
	case transport.KindUnsupported:
		logger.Error("control transfer not supported by device or host controller", "error", err)
	default:
		logger.Error("MS OS 2.0 descriptor request failed; check device documentation for supported vendor requests", "error", err)
	}
}

// parseID accepts hex (0x-prefixed) and decimal VID/PID values; zero is
// rejected because it is never a valid assigned ID.
func parseID(name, s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid %s %q (must be a nonzero hex or decimal number)", name, s)
	}
	return uint16(v), nil
}
