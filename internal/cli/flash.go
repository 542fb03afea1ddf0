package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/OpenRTX/OpenRTX-Companion/internal/operation"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// newFlashCmd flashes a firmware image onto an attached radio.
func newFlashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flash <firmware.bin>",
		Short: "Flash a firmware image onto the radio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			firmware := args[0]
			info, err := os.Stat(firmware)
			if err != nil {
				return fmt.Errorf("firmware image: %w", err)
			}

			target, err := resolveTarget(radio.NewEnumerator())
			if err != nil {
				return err
			}

			log := GetLogger()
			log.Info().
				Str("target", target.String()).
				Str("firmware", firmware).
				Msg("Flashing")

			orch := operation.NewOrchestrator(GetContext(), device(), log)
			st := operation.NewState(operation.KindFlash)
			orch.SelectTarget(st, target)
			orch.SelectPath(st, firmware)
			if err := orch.Start(st); err != nil {
				return err
			}

			bar := newFlashBar(info.Size(), target.String())
			total := float64(info.Size())

			// Drain on the same cadence the GUI ticks at. Ctrl+C cancels
			// the worker through the root context; the failure surfaces
			// on the next drain.
			ticker := time.NewTicker(settings.TickInterval)
			defer ticker.Stop()
			for st.Status() == operation.StatusRunning {
				<-ticker.C
				orch.Drain(st)
				_ = bar.Set64(int64(st.Progress() / 100 * total))
			}

			if st.Status() == operation.StatusFailed {
				fmt.Fprintln(os.Stderr)
				return st.Err()
			}
			_ = bar.Finish()
			log.Info().Msg("Flash complete")
			return nil
		},
	}
}

// newFlashBar builds the terminal progress bar for flashing. Non-TTY
// output gets no bar, just the log lines.
func newFlashBar(total int64, description string) *progressbar.ProgressBar {
	out := io.Writer(os.Stderr)
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		out = io.Discard
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}
