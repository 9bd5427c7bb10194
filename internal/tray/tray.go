package tray

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// Actions are the callbacks behind the menu items.
type Actions struct {
	// Reload re-reads the configuration file and swaps profiles.
	Reload func()
	// Exit is called once when "Exit" is clicked.
	Exit func()
}

// Tray is the notification area icon with the monitor, reload and exit items.
type Tray struct {
	url          string
	actions      Actions
	log          *slog.Logger
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuReload   *systray.MenuItem
	menuExit     *systray.MenuItem
}

// New creates a tray whose "Open monitor" item opens url.
func New(url string, actions Actions, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{
		url:     url,
		actions: actions,
		log:     logger.With("component", "tray"),
	}
}

// Run shows the icon and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon; Run returns afterwards.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

func (t *Tray) onReady() {
	if icon, err := Icon(); err != nil {
		t.log.Warn("tray icon unavailable", "error", err)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle("padmux")
	systray.SetTooltip("padmux - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open monitor", "Open the event monitor in a browser")
	t.menuReload = systray.AddMenuItem("Reload profiles", "Re-read the configuration file")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit padmux")

	go t.handleMenuClicks()

	t.log.Info("system tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuReload.ClickedCh:
			if !t.shuttingDown.Load() && t.actions.Reload != nil {
				t.actions.Reload()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.actions.Exit != nil {
					t.once.Do(t.actions.Exit)
				}
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.log.Info("system tray exiting")
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		t.log.Warn("failed to open browser", "url", t.url, "error", err)
		return
	}
	go cmd.Wait()
}
