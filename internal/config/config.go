// Package config defines the top-level CLI grammar for usbscan.
package config

import (
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/internal/cmd"
)

// Log holds the logging flags shared by all commands.
type Log struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"USBSCAN_LOG_LEVEL"`
	File    string `help:"Write logs to this file (size-rotated) instead of the console" type:"path"`
	RawFile string `help:"Write raw descriptor hex dumps to this file" type:"path"`
}

// CLI is the root command structure parsed by Kong.
type CLI struct {
	Log        Log    `embed:"" prefix:"log."`
	ConfigPath string `name:"config" help:"Path to a configuration file" type:"path"`
	NoColor    bool   `help:"Disable colored output" env:"USBSCAN_NO_COLOR"`

	Device cmd.Device        `cmd:"" help:"Fetch and analyze descriptors from a connected device"`
	File   cmd.File          `cmd:"" help:"Analyze raw descriptor dumps from files"`
	Config cmd.ConfigCommand `cmd:"" help:"Manage configuration templates"`
}
