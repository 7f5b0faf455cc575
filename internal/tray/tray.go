// Package tray provides an optional system tray menu for the heroswap server.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onOpen   func()
	onReplay func()
	onQuit   func()
	status   string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{status: "Loading scene…"}
}

// OnOpen sets the callback function to be called when "Open in browser" is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnReplay sets the callback function to be called when "Replay" is clicked.
func (t *Tray) OnReplay(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReplay = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu, for example on SIGINT.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("heroswap")
	systray.SetTooltip("heroswap face compositor")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Scene status")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in browser", "Open the heroswap page")
	menuReplay := systray.AddMenuItem("Replay", "Play the sequence again")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit heroswap")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuOpen.ClickedCh:
				t.fire(func() func() { return t.onOpen })
			case <-menuReplay.ClickedCh:
				t.fire(func() func() { return t.onReplay })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// fire runs the callback get returns, outside the lock.
func (t *Tray) fire(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.fire(func() func() { return t.onQuit })
	systray.Quit()
}

// SetStatus updates the status line at the top of the menu.
func (t *Tray) SetStatus(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = text
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(text)
	}
}

// Status returns the current status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}
