// Package display shows rendered frames and reports key presses.
package display

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// QuitKey ends the frame loop.
const QuitKey = 'q'

// NoKey is returned by WaitKey when nothing was pressed.
const NoKey = -1

// Display presents frames to the user.
type Display interface {
	// Show presents frame. The frame may be closed after Show returns.
	Show(frame *gocv.Mat)
	// WaitKey refreshes the display for up to delay and returns the key
	// pressed, or NoKey.
	WaitKey(delay time.Duration) int
	Close() error
}

// IsQuit reports whether key is the quit key.
func IsQuit(key int) bool {
	return key != NoKey && key&0xFF == QuitKey
}

// Window is an OpenCV highgui window. It must be used from the main thread.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window titled title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws frame in the window.
func (w *Window) Show(frame *gocv.Mat) {
	w.win.IMShow(*frame)
}

// WaitKey pumps window events. A delay under one millisecond is rounded up
// so the window keeps refreshing.
func (w *Window) WaitKey(delay time.Duration) int {
	ms := int(delay / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return w.win.WaitKey(ms)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// Headless discards frames. Keys can be injected with Press, which is how the
// tray menu and tests stop the loop.
type Headless struct {
	mu    sync.Mutex
	shown int
	keys  chan int
}

// NewHeadless creates a Headless display.
func NewHeadless() *Headless {
	return &Headless{keys: make(chan int, 8)}
}

// Show counts the frame.
func (h *Headless) Show(*gocv.Mat) {
	h.mu.Lock()
	h.shown++
	h.mu.Unlock()
}

// WaitKey returns a pressed key, or NoKey once delay has passed.
func (h *Headless) WaitKey(delay time.Duration) int {
	if delay <= 0 {
		select {
		case k := <-h.keys:
			return k
		default:
			return NoKey
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case k := <-h.keys:
		return k
	case <-timer.C:
		return NoKey
	}
}

// Press queues key for the next WaitKey. It never blocks; keys beyond the
// buffer are dropped.
func (h *Headless) Press(key int) {
	select {
	case h.keys <- key:
	default:
	}
}

// Shown returns how many frames were shown.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Close is a no-op.
func (h *Headless) Close() error { return nil }

var (
	_ Display = (*Window)(nil)
	_ Display = (*Headless)(nil)
)
