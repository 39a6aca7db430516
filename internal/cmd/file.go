package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/bos"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/internal/log"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/msos20"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/render"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/webusb"
)

// File analyzes raw descriptor dumps without touching hardware. Each flag
// names a file holding exactly the bytes returned by the corresponding
// control transfer.
type File struct {
	BOS    string `help:"Raw BOS descriptor dump" type:"existingfile"`
	MSOS20 string `name:"msos20" help:"Raw MS OS 2.0 descriptor set dump" type:"existingfile"`
	URL    string `help:"Raw WebUSB URL descriptor dump" type:"existingfile"`
}

// Run is called by Kong when the file command is executed.
func (f *File) Run(logger *slog.Logger, hex log.HexLogger, rend *render.Renderer) error {
	if f.BOS == "" && f.MSOS20 == "" && f.URL == "" {
		return errors.New("at least one of --bos, --msos20 or --url is required")
	}

	if f.BOS != "" {
		buf, err := os.ReadFile(f.BOS)
		if err != nil {
			return err
		}
		logger.Debug("analyzing BOS dump", "path", f.BOS, "bytes", len(buf))
		hex.Dump("Raw BOS data", buf)
		desc, res := bos.Parse(buf)
		rend.BOS(desc, res, len(buf))
	}

	if f.URL != "" {
		buf, err := os.ReadFile(f.URL)
		if err != nil {
			return err
		}
		logger.Debug("analyzing WebUSB URL dump", "path", f.URL, "bytes", len(buf))
		hex.Dump("Raw WebUSB URL data", buf)
		u, res := webusb.Parse(buf)
		rend.URL(u, res, len(buf))
	}

	if f.MSOS20 != "" {
		buf, err := os.ReadFile(f.MSOS20)
		if err != nil {
			return err
		}
		logger.Debug("analyzing MS OS 2.0 dump", "path", f.MSOS20, "bytes", len(buf))
		hex.Dump("Raw MS OS 2.0 data", buf)
		set, res := msos20.Parse(buf)
		rend.MSOS20(set, res, len(buf))
	}

	return nil
}
