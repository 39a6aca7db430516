package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"golang.org/x/term"

	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/internal/config"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/internal/configpaths"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/internal/log"
	"github.com/maximevince/usb-bos-webusb-msos20-analyzer/render"
)

func main() {

	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("usbscan"),
		kong.Description("USB BOS / WebUSB / MS OS 2.0 descriptor analyzer"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeLog, err := log.Setup(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = closeLog() }()

	var hexLogger log.HexLogger
	if cli.Log.RawFile != "" {
		f, err := os.OpenFile(cli.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw dump file", "file", cli.Log.RawFile, "error", err)
			hexLogger = log.NewHex(nil)
		} else {
			hexLogger = log.NewHex(f)
			defer func() { _ = f.Close() }()
		}
	} else if cli.Log.Level == "trace" {
		hexLogger = log.NewHex(os.Stdout)
	} else {
		hexLogger = log.NewHex(nil)
	}

	color := !cli.NoColor && term.IsTerminal(int(os.Stdout.Fd()))
	renderer := render.New(os.Stdout, color)

	ctx.Bind(logger)
	ctx.BindTo(hexLogger, (*log.HexLogger)(nil))
	ctx.Bind(renderer)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("USBSCAN_CONFIG"); v != "" {
		return v
	}
	return ""
}
