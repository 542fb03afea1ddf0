package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
	"github.com/OpenRTX/OpenRTX-Companion/internal/version"
)

// newPortsCmd lists serial ports and recognized radios.
func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports and attached radios",
		RunE: func(cmd *cobra.Command, args []string) error {
			enum := radio.NewEnumerator()

			ports, err := enum.SerialPorts()
			if err != nil {
				return err
			}
			targets, err := enum.FlashTargets()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Serial ports:")
			for _, p := range ports {
				fmt.Fprintf(out, "  %s\n", p.String())
			}

			fmt.Fprintln(out, "Radios:")
			if len(targets) == 0 {
				fmt.Fprintln(out, "  none recognized")
				return nil
			}
			for _, t := range targets {
				fmt.Fprintf(out, "  [%d] %s\n", t.Index, t.String())
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "OpenRTX Companion %s (built %s)\n",
				version.Version, version.BuildTime)
		},
	}
}
