package gui

import (
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/OpenRTX/OpenRTX-Companion/internal/events"
	"github.com/OpenRTX/OpenRTX-Companion/internal/operation"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// FlashTab lets the user pick a radio and a firmware image and flash it.
type FlashTab struct {
	tabs   *operation.Tabs
	enum   radio.Enumerator
	bus    *events.EventBus
	window fyne.Window

	targets []radio.FlashTarget

	targetSelect *widget.Select
	fileLabel    *widget.Label
	progressBar  *widget.ProgressBar
	statusLabel  *widget.Label
	flashButton  *widget.Button
}

// NewFlashTab creates the flash tab view.
func NewFlashTab(tabs *operation.Tabs, enum radio.Enumerator, bus *events.EventBus, window fyne.Window) *FlashTab {
	return &FlashTab{
		tabs:   tabs,
		enum:   enum,
		bus:    bus,
		window: window,
	}
}

// Build creates the tab layout.
func (ft *FlashTab) Build() fyne.CanvasObject {
	ft.targetSelect = widget.NewSelect(nil, ft.onTargetSelected)
	ft.fileLabel = widget.NewLabel("No firmware selected")
	ft.progressBar = widget.NewProgressBar()
	ft.statusLabel = widget.NewLabel("")

	browseButton := widget.NewButton("Choose firmware...", ft.selectFirmware)
	refreshButton := widget.NewButton("Refresh", ft.refreshTargets)
	ft.flashButton = NewPrimaryButton("Flash radio", ft.startFlash)

	ft.refreshTargets()
	ft.Refresh()

	return container.NewVBox(
		VerticalSpacer(8),
		widget.NewLabel("Radio"),
		container.NewBorder(nil, nil, nil, refreshButton, ft.targetSelect),
		VerticalSpacer(8),
		widget.NewLabel("Firmware image"),
		container.NewBorder(nil, nil, nil, browseButton, ft.fileLabel),
		VerticalSpacer(16),
		ft.flashButton,
		VerticalSpacer(8),
		ft.progressBar,
		ft.statusLabel,
	)
}

// Refresh repaints the widgets from the current operation state. Must
// run on the UI thread.
func (ft *FlashTab) Refresh() {
	snap := ft.tabs.State(operation.TabFlash).Snapshot()
	ft.progressBar.SetValue(snap.Progress / 100)
	ft.statusLabel.SetText(snap.StatusText)
	if snap.Status == operation.StatusRunning {
		ft.flashButton.Disable()
	} else {
		ft.flashButton.Enable()
	}
}

func (ft *FlashTab) refreshTargets() {
	targets, err := ft.enum.FlashTargets()
	if err != nil {
		guiLogger.Error().Err(err).Msg("Flash target enumeration failed")
		targets = nil
	}
	ft.targets = targets

	options := make([]string, 0, len(targets))
	for _, t := range targets {
		options = append(options, t.String())
	}
	if len(options) == 0 {
		options = []string{radio.Sentinel().Name}
	}

	ft.targetSelect.Options = options
	ft.targetSelect.SetSelectedIndex(0)
	ft.targetSelect.Refresh()

	if ft.bus != nil {
		ft.bus.Publish(&events.PortsEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventPortsRefreshed, Time: time.Now()},
			Targets:   len(targets),
		})
	}
}

func (ft *FlashTab) onTargetSelected(string) {
	i := ft.targetSelect.SelectedIndex()
	if i < 0 || i >= len(ft.targets) {
		return
	}
	ft.tabs.SelectTarget(operation.TabFlash, ft.targets[i])
}

func (ft *FlashTab) selectFirmware() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ft.window)
			return
		}
		if reader == nil {
			ft.tabs.PathPicked(operation.TabFlash, "", false)
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		ft.tabs.PathPicked(operation.TabFlash, path, true)
		ft.fileLabel.SetText(filepath.Base(path))
	}, ft.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".bin"}))
	fd.Show()
}

func (ft *FlashTab) startFlash() {
	if err := ft.tabs.Start(operation.TabFlash); err != nil {
		// The status line already carries the reason.
		guiLogger.Debug().Err(err).Msg("Flash not started")
	}
	ft.Refresh()
}
