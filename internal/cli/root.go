// Package cli provides the command-line interface for openrtx-companion.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/OpenRTX/OpenRTX-Companion/internal/config"
	"github.com/OpenRTX/OpenRTX-Companion/internal/logging"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
	"github.com/OpenRTX/OpenRTX-Companion/internal/version"
)

var (
	// Global flags
	cfgFile  string
	portFlag string
	simulate bool
	verbose  bool

	// Loaded settings, available to all subcommands after PersistentPreRunE.
	settings *config.Settings

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command for CLI mode.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "openrtx-companion",
		Short: "OpenRTX Companion - flash and back up OpenRTX radios",
		Long: `OpenRTX Companion ` + version.Version + ` - Built: ` + version.BuildTime + `
Companion tool for OpenRTX handheld radios via CLI or GUI.

CLI Mode (default on headless systems):
  Commands for listing ports, flashing firmware and backing up
  device contents.

GUI Mode (--gui flag, or default when a display is present):
  Graphical interface with flash and backup tabs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.New("cli")

			var err error
			settings, err = config.Load(cfgFile)
			if err != nil {
				return err
			}

			// Flags win over config file and environment.
			if portFlag != "" {
				settings.Port = portFlag
			}
			if simulate {
				settings.Simulate = true
			}
			if verbose || settings.Debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "Serial port of the radio (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Use a simulated radio instead of real hardware")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newPortsCmd())
	rootCmd.AddCommand(newFlashCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.New("cli")
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context is cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// device returns the radio backend selected by the settings.
func device() radio.Device {
	if settings != nil && settings.Simulate {
		GetLogger().Warn().Msg("Running against the simulator, no hardware will be touched")
		return radio.NewSimulator()
	}
	return radio.NewSerialDevice()
}

// resolveTarget picks the radio to operate on. An explicit port always
// wins; otherwise exactly one attached radio must be present.
func resolveTarget(enum radio.Enumerator) (radio.FlashTarget, error) {
	targets, err := enum.FlashTargets()
	if err != nil {
		return radio.FlashTarget{}, err
	}

	if settings != nil && settings.Port != "" {
		for _, t := range targets {
			if t.Port == settings.Port {
				return t, nil
			}
		}
		// Not a recognized radio; trust the user's port anyway.
		return radio.TargetFromPort(radio.SerialPort{Name: settings.Port}), nil
	}

	switch len(targets) {
	case 0:
		return radio.FlashTarget{}, fmt.Errorf("no radio found (connect one or pass --port)")
	case 1:
		return targets[0], nil
	default:
		names := ""
		for _, t := range targets {
			names += "\n  " + t.String()
		}
		return radio.FlashTarget{}, fmt.Errorf("multiple radios found, pick one with --port:%s", names)
	}
}
