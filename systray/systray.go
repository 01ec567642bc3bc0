package systray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/getlantern/systray"
)

// Manager runs the tray icon and menu.
type Manager struct {
	webPort  int
	iconData []byte
	onPause  func(paused bool)
	quit     chan struct{}
}

// NewManager creates a tray manager. onPause toggles global hotkeys.
func NewManager(webPort int, iconData []byte, onPause func(paused bool)) *Manager {
	return &Manager{
		webPort:  webPort,
		iconData: iconData,
		onPause:  onPause,
		quit:     make(chan struct{}),
	}
}

// Run starts the system tray (blocking call).
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray.
func (m *Manager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel closed when the user clicks Quit.
func (m *Manager) WaitForQuit() <-chan struct{} {
	return m.quit
}

func (m *Manager) onReady() {
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}
	systray.SetTitle("keysnip")
	systray.SetTooltip("keysnip - Snippet Typer")

	mOpenUI := systray.AddMenuItem("Open Web UI", "Open the keysnip editor")
	mPause := systray.AddMenuItemCheckbox("Pause hotkeys", "Temporarily disable all snippet hotkeys", false)
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit keysnip")

	go func() {
		for {
			select {
			case <-mOpenUI.ClickedCh:
				m.openWebUI()
			case <-mPause.ClickedCh:
				if mPause.Checked() {
					mPause.Uncheck()
					m.onPause(false)
				} else {
					mPause.Check()
					m.onPause(true)
				}
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

func (m *Manager) onExit() {
	slog.Info("System tray exited")
}

// openWebUI opens the web UI in the default browser.
func (m *Manager) openWebUI() {
	url := fmt.Sprintf("http://localhost:%d", m.webPort)
	slog.Info("Opening web UI", "url", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open web UI", "error", err)
	}
}
