package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/gousb"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/internal/log"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/usb"
)

// Control setup constants; bmRequestType values are raw bytes as in the
// USB spec (IN|standard|device and IN|vendor|device).
const (
	reqGetDescriptor = 0x06
	bmStandardIn     = 0x80
	bmVendorIn       = 0xC0
)

// DeviceConfig selects and tunes the device to analyze.
type DeviceConfig struct {
	VID        uint16
	PID        uint16
	Timeout    time.Duration
	BufferSize int
}

// Device is a gousb-backed Transport talking to a physical device.
type Device struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	logger  *slog.Logger
	hex     log.HexLogger
	bufSize int
}

// Open locates the device by VID:PID and prepares it for vendor control
// transfers. The kernel driver, if bound, is detached automatically for
// the duration of the session.
func Open(cfg DeviceConfig, logger *slog.Logger, hex log.HexLogger) (*Device, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(cfg.VID), gousb.ID(cfg.PID))
	if err != nil {
		_ = ctx.Close()
		return nil, &Error{Op: "open", Kind: classify(err), Err: err}
	}
	if dev == nil {
		_ = ctx.Close()
		return nil, &Error{Op: "open", Kind: KindNotFound,
			Err: fmt.Errorf("device %04x:%04x not connected", cfg.VID, cfg.PID)}
	}

	if err := dev.SetAutoDetach(true); err != nil {
		logger.Warn("could not enable kernel driver auto-detach", "error", err)
	}
	if cfg.Timeout > 0 {
		dev.ControlTimeout = cfg.Timeout
	}

	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = 512
	}

	logger.Debug("device opened", "vid", fmt.Sprintf("%04x", cfg.VID), "pid", fmt.Sprintf("%04x", cfg.PID))
	return &Device{ctx: ctx, dev: dev, logger: logger, hex: hex, bufSize: bufSize}, nil
}

func (d *Device) Close() error {
	err := d.dev.Close()
	if cerr := d.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}

// controlIn issues an IN control transfer and returns the bytes the device
// actually produced.
func (d *Device) controlIn(op string, rType, request uint8, val, idx uint16) ([]byte, error) {
	buf := make([]byte, d.bufSize)
	n, err := d.dev.Control(rType, request, val, idx, buf)
	d.logger.Log(context.Background(), log.LevelTrace, "control transfer",
		"op", op,
		"bmRequestType", fmt.Sprintf("0x%02x", rType),
		"bRequest", fmt.Sprintf("0x%02x", request),
		"wValue", val, "wIndex", idx, "wLength", len(buf),
		"n", n, "error", err)
	if err != nil {
		return nil, &Error{Op: op, Kind: classify(err), Err: err}
	}
	data := buf[:n]
	d.hex.Dump("Raw "+op+" data", data)
	return data, nil
}

// FetchBOS implements Transport using the standard GET_DESCRIPTOR request.
func (d *Device) FetchBOS() ([]byte, error) {
	return d.controlIn("BOS descriptor", bmStandardIn,
		reqGetDescriptor, usb.BOSDescType<<8, 0)
}

// FetchMSOS20 implements Transport. The vendor code comes from the MS OS
// 2.0 platform capability in the BOS descriptor.
func (d *Device) FetchMSOS20(vendorCode uint8) ([]byte, error) {
	return d.controlIn("MS OS 2.0 descriptor", bmVendorIn,
		vendorCode, 0, usb.MSOS20DescriptorIndex)
}

// FetchWebUSBURL implements Transport via the WebUSB GET_URL request.
func (d *Device) FetchWebUSBURL(vendorCode, landingPage uint8) ([]byte, error) {
	return d.controlIn("WebUSB URL descriptor", bmVendorIn,
		vendorCode, uint16(landingPage), usb.WebUSBReqGetURL)
}

// classify maps gousb/libusb failures onto the transport error taxonomy.
func classify(err error) Kind {
	var le gousb.Error
	if !errors.As(err, &le) {
		return KindOther
	}
	switch le {
	case gousb.ErrorNotFound:
		return KindNotFound
	case gousb.ErrorPipe:
		return KindStall
	case gousb.ErrorTimeout:
		return KindTimeout
	case gousb.ErrorNoDevice:
		return KindDisconnected
	case gousb.ErrorAccess:
		return KindAccessDenied
	case gousb.ErrorNotSupported:
		return KindUnsupported
	default:
		return KindOther
	}
}
