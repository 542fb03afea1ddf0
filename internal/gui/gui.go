// Package gui provides the graphical user interface for openrtx-companion.
package gui

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"github.com/rs/zerolog"

	"github.com/OpenRTX/OpenRTX-Companion/internal/config"
	"github.com/OpenRTX/OpenRTX-Companion/internal/constants"
	"github.com/OpenRTX/OpenRTX-Companion/internal/events"
	"github.com/OpenRTX/OpenRTX-Companion/internal/logging"
	"github.com/OpenRTX/OpenRTX-Companion/internal/operation"
	"github.com/OpenRTX/OpenRTX-Companion/internal/radio"
)

var (
	// guiLogger is the package-level logger for GUI mode
	guiLogger *logging.Logger
)

// Launch starts the GUI application and blocks until the window closes.
func Launch(configFile string) error {
	guiLogger = logging.New("gui")

	// GUI mode defaults to warnings only; OPENRTX_DEBUG opens the tap.
	if os.Getenv("OPENRTX_DEBUG") != "" {
		logging.SetGlobalLevel(zerolog.DebugLevel)
		guiLogger.Info().Msg("Debug logging enabled via OPENRTX_DEBUG")
	} else {
		logging.SetGlobalLevel(zerolog.WarnLevel)
	}

	if runtime.GOOS == "linux" {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return fmt.Errorf("GUI mode requires a display. No display detected.\n" +
				"DISPLAY and WAYLAND_DISPLAY are not set.\n" +
				"Use the CLI commands instead (see --help)")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		guiLogger.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg, err = config.Load("")
		if err != nil {
			return fmt.Errorf("create default config: %w", err)
		}
	}

	myApp := app.NewWithID("org.openrtx.companion")

	mainWindow := myApp.NewWindow("OpenRTX Companion")
	mainWindow.SetMaster()

	ui := NewUI(cfg, mainWindow)
	ui.Start()

	mainWindow.SetContent(ui.Build())
	mainWindow.Resize(fyne.NewSize(600, 340))
	mainWindow.CenterOnScreen()

	mainWindow.SetOnClosed(func() {
		ui.Stop()
	})

	mainWindow.ShowAndRun()

	return nil
}

// UI wires the operation core to the Fyne widgets.
type UI struct {
	cfg    *config.Settings
	window fyne.Window

	bus  *events.EventBus
	tabs *operation.Tabs

	flashTab  *FlashTab
	backupTab *BackupTab

	ctx    context.Context
	cancel context.CancelFunc
}

// NewUI assembles the device backend, orchestrator and tab views.
func NewUI(cfg *config.Settings, window fyne.Window) *UI {
	if guiLogger == nil {
		guiLogger = logging.New("gui")
	}
	ctx, cancel := context.WithCancel(context.Background())

	var dev radio.Device
	if cfg.Simulate {
		guiLogger.Warn().Msg("Running against the simulator, no hardware will be touched")
		dev = radio.NewSimulator()
	} else {
		dev = radio.NewSerialDevice()
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	orch := operation.NewOrchestrator(ctx, dev, guiLogger)
	tabs := operation.NewTabs(orch, bus, guiLogger)

	enum := radio.NewEnumerator()

	ui := &UI{
		cfg:    cfg,
		window: window,
		bus:    bus,
		tabs:   tabs,
		ctx:    ctx,
		cancel: cancel,
	}
	ui.flashTab = NewFlashTab(tabs, enum, bus, window)
	ui.backupTab = NewBackupTab(tabs, enum, bus, window, cfg.BackupDir)

	return ui
}

// Build creates the UI layout.
func (ui *UI) Build() fyne.CanvasObject {
	appTabs := container.NewAppTabs(
		container.NewTabItemWithIcon("  Flash  ", theme.DownloadIcon(), ui.flashTab.Build()),
		container.NewTabItemWithIcon("  Backup  ", theme.StorageIcon(), ui.backupTab.Build()),
	)

	appTabs.OnSelected = func(tab *container.TabItem) {
		switch appTabs.SelectedIndex() {
		case 0:
			ui.tabs.Select(operation.TabFlash)
		case 1:
			ui.tabs.Select(operation.TabBackup)
		}
	}
	appTabs.SelectIndex(0)

	return appTabs
}

// Start begins the tick driver and the event listener.
func (ui *UI) Start() {
	go ui.tabs.Run(ui.ctx, ui.cfg.TickInterval)
	go ui.monitorOperations()
}

// Stop cancels the tick driver and any running workers.
func (ui *UI) Stop() {
	ui.cancel()
	ui.bus.Close()
}

// monitorOperations refreshes the tab views whenever the tick driver
// publishes a visible change. Widget updates go through fyne.Do since
// this runs off the UI thread.
func (ui *UI) monitorOperations() {
	ch := ui.bus.SubscribeAll()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			op, isOp := event.(*events.OperationEvent)
			if !isOp {
				continue
			}
			fyne.Do(func() {
				switch operation.TabID(op.Tab) {
				case operation.TabFlash:
					ui.flashTab.Refresh()
				case operation.TabBackup:
					ui.backupTab.Refresh()
				}
			})

		case <-ui.ctx.Done():
			return
		}
	}
}
