package gui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/OpenRTX/OpenRTX-Companion/internal/events"
	"github.com/OpenRTX/OpenRTX-Companion/internal/operation"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

// BackupTab lets the user dump the radio's memory to a local directory.
type BackupTab struct {
	tabs   *operation.Tabs
	enum   radio.Enumerator
	bus    *events.EventBus
	window fyne.Window

	ports []radio.SerialPort

	portSelect   *widget.Select
	dirLabel     *widget.Label
	progressBar  *widget.ProgressBar
	statusLabel  *widget.Label
	backupButton *widget.Button
}

// NewBackupTab creates the backup tab view. The default destination
// comes from the settings and can be changed with the folder picker.
func NewBackupTab(tabs *operation.Tabs, enum radio.Enumerator, bus *events.EventBus, window fyne.Window, defaultDir string) *BackupTab {
	bt := &BackupTab{
		tabs:   tabs,
		enum:   enum,
		bus:    bus,
		window: window,
	}
	if defaultDir != "" {
		tabs.PathPicked(operation.TabBackup, defaultDir, true)
	}
	return bt
}

// Build creates the tab layout.
func (bt *BackupTab) Build() fyne.CanvasObject {
	bt.portSelect = widget.NewSelect(nil, bt.onPortSelected)
	bt.dirLabel = widget.NewLabel(bt.tabs.State(operation.TabBackup).Path())
	bt.progressBar = widget.NewProgressBar()
	bt.statusLabel = widget.NewLabel("")

	browseButton := widget.NewButton("Choose folder...", bt.selectFolder)
	refreshButton := widget.NewButton("Refresh", bt.refreshPorts)
	bt.backupButton = NewPrimaryButton("Back up radio", bt.startBackup)

	bt.refreshPorts()
	bt.Refresh()

	return container.NewVBox(
		VerticalSpacer(8),
		widget.NewLabel("Serial port"),
		container.NewBorder(nil, nil, nil, refreshButton, bt.portSelect),
		VerticalSpacer(8),
		widget.NewLabel("Destination folder"),
		container.NewBorder(nil, nil, nil, browseButton, bt.dirLabel),
		VerticalSpacer(16),
		bt.backupButton,
		VerticalSpacer(8),
		bt.progressBar,
		bt.statusLabel,
	)
}

// Refresh repaints the widgets from the current operation state. Must
// run on the UI thread.
func (bt *BackupTab) Refresh() {
	snap := bt.tabs.State(operation.TabBackup).Snapshot()
	bt.progressBar.SetValue(snap.Progress / 100)
	bt.statusLabel.SetText(snap.StatusText)
	if snap.Status == operation.StatusRunning {
		bt.backupButton.Disable()
	} else {
		bt.backupButton.Enable()
	}
}

func (bt *BackupTab) refreshPorts() {
	ports, err := bt.enum.SerialPorts()
	if err != nil {
		guiLogger.Error().Err(err).Msg("Serial port enumeration failed")
		ports = []radio.SerialPort{radio.Sentinel()}
	}
	bt.ports = ports

	options := make([]string, 0, len(ports))
	for _, p := range ports {
		options = append(options, p.String())
	}

	bt.portSelect.Options = options
	bt.portSelect.SetSelectedIndex(0)
	bt.portSelect.Refresh()

	if bt.bus != nil {
		real := 0
		for _, p := range ports {
			if !p.IsSentinel() {
				real++
			}
		}
		bt.bus.Publish(&events.PortsEvent{
			BaseEvent: events.BaseEvent{EventType: events.EventPortsRefreshed, Time: time.Now()},
			Ports:     real,
		})
	}
}

func (bt *BackupTab) onPortSelected(string) {
	i := bt.portSelect.SelectedIndex()
	if i < 0 || i >= len(bt.ports) {
		return
	}
	p := bt.ports[i]
	if p.IsSentinel() {
		return
	}
	bt.tabs.SelectTarget(operation.TabBackup, radio.TargetFromPort(p))
}

func (bt *BackupTab) selectFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, bt.window)
			return
		}
		if uri == nil {
			bt.tabs.PathPicked(operation.TabBackup, "", false)
			return
		}

		path := uri.Path()
		bt.tabs.PathPicked(operation.TabBackup, path, true)
		bt.dirLabel.SetText(path)
	}, bt.window)
}

func (bt *BackupTab) startBackup() {
	if err := bt.tabs.Start(operation.TabBackup); err != nil {
		guiLogger.Debug().Err(err).Msg("Backup not started")
	}
	bt.Refresh()
}
