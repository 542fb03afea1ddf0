// OpenRTX Companion - flash and backup tool for OpenRTX radios.
//
// - No args + display available → GUI mode
// - No args + no display → CLI help
// - --gui → GUI mode
// - --cli → CLI mode (force)
// - CLI subcommands/flags → CLI mode
package main

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/OpenRTX/OpenRTX-Companion/internal/cli"
	"github.com/OpenRTX/OpenRTX-Companion/internal/gui"
)

func main() {
	if isCLIMode() {
		if err := cli.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	// The GUI reads settings through the config layer; map the shared
	// --simulate flag onto its environment override.
	if slices.Contains(os.Args, "--simulate") {
		os.Setenv("OPENRTX_SIMULATE", "true")
	}
	if err := gui.Launch(configFileArg()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configFileArg extracts --config from the raw arguments so GUI mode
// honors it without going through cobra.
func configFileArg() string {
	for i, arg := range os.Args[1:] {
		if arg == "--config" || arg == "-c" {
			rest := os.Args[i+2:]
			if len(rest) > 0 {
				return rest[0]
			}
			return ""
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
	}
	return ""
}

// isCLIMode determines whether to run in CLI mode based on arguments
// and environment.
//
// CLI mode when:
// - --cli flag is present (force CLI mode)
// - CLI subcommands are present (ports, flash, backup, version)
// - CLI flags are present (--help, --version, -h, -v)
// - No display available (DISPLAY/WAYLAND_DISPLAY not set on Linux)
//
// GUI mode when:
// - --gui flag is present (force GUI mode)
// - No arguments and display is available
func isCLIMode() bool {
	if slices.Contains(os.Args, "--cli") {
		return true
	}
	if slices.Contains(os.Args, "--gui") {
		return false
	}

	cliPatterns := []string{
		// Subcommands
		"ports", "flash", "backup", "version", "completion",
		// Flags
		"--help", "-h", "--version", "-v",
	}

	for _, arg := range os.Args[1:] {
		if slices.Contains(cliPatterns, arg) {
			return true
		}
	}

	// Flags the GUI understands; anything else goes to the CLI so
	// typos show help instead of silently opening a window.
	guiOK := func(arg string) bool {
		return arg == "--simulate" || arg == "--config" || arg == "-c" ||
			strings.HasPrefix(arg, "--config=")
	}

	if len(os.Args) == 1 {
		if runtime.GOOS == "linux" {
			if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
				return true // No display, default to CLI
			}
		}
		return false
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			i++ // skip the value
			continue
		}
		if !guiOK(args[i]) {
			return true
		}
	}
	return false
}
