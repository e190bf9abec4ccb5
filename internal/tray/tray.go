// Package tray provides a system tray menu for running the calculator without
// a preview window.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onQuit func()
	mu     sync.RWMutex

	display     string
	lastGesture string

	// Menu items stored for later updates
	menuDisplay     *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{display: "0"}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main thread.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Ganita")
	systray.SetTooltip("Hand Gesture Calculator")

	t.mu.Lock()
	t.menuDisplay = systray.AddMenuItem(DisplayTitle(t.display), "Calculator display")
	t.menuDisplay.Disable()
	t.menuLastGesture = systray.AddMenuItem(GestureTitle(t.lastGesture), "Last accepted gesture")
	t.menuLastGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit the calculator")

	go func() {
		<-menuQuit.ClickedCh
		t.handleQuit()
	}()
}

func (t *Tray) onExit() {}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetDisplay updates the calculator display line in the menu.
func (t *Tray) SetDisplay(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.display = text
	if t.menuDisplay != nil {
		t.menuDisplay.SetTitle(DisplayTitle(text))
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastGesture = name
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(GestureTitle(name))
	}
}

// DisplayTitle is the menu text for the calculator display.
func DisplayTitle(text string) string {
	if text == "" {
		text = "0"
	}
	return "= " + text
}

// GestureTitle is the menu text for the last gesture.
func GestureTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}
