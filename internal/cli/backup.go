package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/OpenRTX/OpenRTX-Companion/internal/operation"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// newBackupCmd dumps the radio's memory into a timestamped file.
func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [dest-dir]",
		Short: "Back up the radio's contents to a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destDir := settings.BackupDir
			if len(args) == 1 {
				destDir = args[0]
			}
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				return fmt.Errorf("backup directory: %w", err)
			}

			target, err := resolveTarget(radio.NewEnumerator())
			if err != nil {
				return err
			}

			log := GetLogger()
			log.Info().
				Str("port", target.Port).
				Str("dest", destDir).
				Msg("Backing up")

			orch := operation.NewOrchestrator(GetContext(), device(), log)
			st := operation.NewState(operation.KindBackup)
			orch.SelectTarget(st, target)
			orch.SelectPath(st, destDir)
			if err := orch.Start(st); err != nil {
				return err
			}

			p, bar := newBackupBar(target.Port, st)

			ticker := time.NewTicker(settings.TickInterval)
			defer ticker.Stop()
			for st.Status() == operation.StatusRunning {
				<-ticker.C
				orch.Drain(st)
				bar.SetCurrent(int64(st.Progress()))
			}

			if st.Status() == operation.StatusFailed {
				bar.Abort(true)
				p.Wait()
				return st.Err()
			}
			bar.SetCurrent(100)
			p.Wait()
			log.Info().Msg("Backup complete")
			return nil
		},
	}
}

// newBackupBar builds an mpb progress bar tracking the operation state.
// The bar runs in percent because the dump size is only known once the
// radio reports it.
func newBackupBar(port string, st *operation.State) (*mpb.Progress, *mpb.Bar) {
	var p *mpb.Progress
	if term.IsTerminal(int(os.Stderr.Fd())) {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(64),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	bar := p.New(100,
		mpb.BarStyle().
			Lbound("[").
			Filler("█").
			Tip("█").
			Padding("░").
			Rbound("]"),
		mpb.PrependDecorators(
			decor.Name("backup ← "+port, decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Name("  "),
			decor.Any(func(decor.Statistics) string {
				return st.StatusText()
			}, decor.WCSyncSpace),
		),
	)
	return p, bar
}
