// Package app runs the calculator's frame loop: capture, detect, classify,
// debounce, calculate, narrate, render and display.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/ganita/internal/calculator"
	"github.com/ayusman/ganita/internal/capture"
	"github.com/ayusman/ganita/internal/detector"
	"github.com/ayusman/ganita/internal/display"
	"github.com/ayusman/ganita/internal/gesture"
	"github.com/ayusman/ganita/internal/log"
	"github.com/ayusman/ganita/internal/narrator"
	"github.com/ayusman/ganita/internal/overlay"
	"github.com/ayusman/ganita/internal/server"
	"github.com/ayusman/ganita/internal/server/api"
	"github.com/ayusman/ganita/internal/store"
)

// ErrCameraUnavailable is returned by Run when the camera cannot be opened or
// stops delivering frames.
var ErrCameraUnavailable = errors.New("camera unavailable")

// Lifecycle narrations.
const (
	MsgReady       = "Hand gesture calculator ready. Show your hand to start."
	MsgShutdown    = "Calculator shutting down"
	MsgCameraError = "Error: Could not open camera"
	MsgCameraLost  = "Error: Camera stopped responding"
)

// keyWait is how long each iteration lets the display process events.
const keyWait = time.Millisecond

// Config holds the application's collaborators. Camera, Detector, Display
// and Narrator are required; the rest are optional.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Display  display.Display
	Narrator *narrator.Narrator

	// Debouncer and Machine default to the standard thresholds and a
	// cleared calculator.
	Debouncer *gesture.Debouncer
	Machine   *calculator.Machine

	// CameraDevice is recorded with the session.
	CameraDevice int

	Store  *store.Store
	Frames *server.FrameBuffer
	Events *server.EventHub

	// OnAccepted runs on the frame loop after every accepted gesture.
	OnAccepted func(Accepted)
}

// Accepted describes a gesture that passed the debounce filter.
type Accepted struct {
	Label   gesture.Label
	Outcome calculator.Outcome
	State   calculator.State
	Time    time.Time
}

// Result is what one frame's hand did.
type Result struct {
	// Label is the frame's classification, empty when no hand was seen.
	Label    gesture.Label
	Decision gesture.Decision
	// Outcome is set only when the label was accepted.
	Outcome *calculator.Outcome
}

// App is the gesture calculator.
type App struct {
	config    Config
	debouncer *gesture.Debouncer
	machine   *calculator.Machine

	mu          sync.RWMutex
	lastGesture gesture.Label
	sessionID   string

	lastDetectErr string
}

// New creates an App from config.
func New(config Config) (*App, error) {
	switch {
	case config.Camera == nil:
		return nil, errors.New("app: camera is required")
	case config.Detector == nil:
		return nil, errors.New("app: detector is required")
	case config.Display == nil:
		return nil, errors.New("app: display is required")
	case config.Narrator == nil:
		return nil, errors.New("app: narrator is required")
	}

	a := &App{
		config:    config,
		debouncer: config.Debouncer,
		machine:   config.Machine,
	}
	if a.debouncer == nil {
		a.debouncer = gesture.NewDebouncer(gesture.DefaultConfirmFrames, gesture.DefaultCooldown)
	}
	if a.machine == nil {
		a.machine = calculator.NewMachine()
	}
	return a, nil
}

// Run opens the camera and processes frames until ctx is cancelled, the quit
// key is pressed, or the camera fails. A camera failure is narrated and
// returned wrapped in ErrCameraUnavailable. Run must be called from the main
// thread when the display is a window.
func (a *App) Run(ctx context.Context) error {
	if err := a.config.Camera.Open(); err != nil {
		a.say(MsgCameraError)
		log.Error("failed to open camera", "error", err)
		return fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}
	defer a.config.Camera.Close()

	a.startSession()
	defer a.endSession()

	a.say(MsgReady)
	log.Info("calculator ready")

	err := a.loop(ctx)
	if err != nil {
		a.say(MsgCameraLost)
		log.Error("camera stopped delivering frames", "error", err)
		err = fmt.Errorf("%w: %w", ErrCameraUnavailable, err)
	}

	a.say(MsgShutdown)
	return err
}

func (a *App) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("frame loop stopped", "reason", ctx.Err())
			return nil
		default:
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			return err
		}

		a.processFrame(frame)
		frame.Close()

		if display.IsQuit(a.config.Display.WaitKey(keyWait)) {
			log.Info("quit key pressed")
			return nil
		}
	}
}

// processFrame runs one frame through detection, the state machine and
// rendering. The frame is drawn on in place.
func (a *App) processFrame(frame *gocv.Mat) {
	hands, err := a.config.Detector.Detect(frame)
	if err != nil {
		a.logDetectError(err)
		hands = nil
	} else {
		a.lastDetectErr = ""
	}

	hand := detector.First(hands)
	res := a.Observe(hand)

	overlay.Draw(frame, overlay.Scene{
		State:   a.machine.Snapshot(),
		Gesture: res.Label,
		Hand:    hand,
	})

	a.config.Display.Show(frame)

	if a.config.Frames != nil {
		if err := a.config.Frames.PublishMat(frame); err != nil {
			log.Debug("failed to publish frame", "error", err)
		}
	}
}

// logDetectError logs detector failures once per distinct message; the
// frame loop would otherwise repeat them at the camera rate.
func (a *App) logDetectError(err error) {
	if msg := err.Error(); msg != a.lastDetectErr {
		log.Warn("hand detection failed", "error", err)
		a.lastDetectErr = msg
	}
}

// Observe feeds one frame's hand (nil when none was detected) through the
// classifier, the debouncer and, when accepted, the calculator.
func (a *App) Observe(hand *detector.HandLandmarks) Result {
	if hand == nil {
		return Result{Decision: gesture.Pending}
	}

	label := gesture.Classify(hand)
	res := Result{Label: label, Decision: a.debouncer.Observe(label)}

	switch res.Decision {
	case gesture.Accepted:
		out := a.accept(label)
		res.Outcome = &out
	case gesture.Dropped:
		log.Debug("gesture dropped during cooldown", "gesture", label)
	}
	return res
}

func (a *App) accept(label gesture.Label) calculator.Outcome {
	out := a.machine.Dispatch(label)
	state := a.machine.Snapshot()
	now := time.Now()

	a.mu.Lock()
	a.lastGesture = label
	sessionID := a.sessionID
	a.mu.Unlock()

	log.Debug("gesture accepted", "gesture", label, "narration", out.Narration, "fault", out.Fault)
	a.say(out.Narration)

	if out.Calculation != nil && a.config.Store != nil && sessionID != "" {
		a.record(sessionID, out.Calculation)
	}

	if a.config.Events != nil {
		a.config.Events.Publish(server.Event{
			Gesture:   string(label),
			Narration: out.Narration,
			Fault:     out.Fault.String(),
			Display:   state.Display(),
			Time:      now,
		})
	}

	if a.config.OnAccepted != nil {
		a.config.OnAccepted(Accepted{Label: label, Outcome: out, State: state, Time: now})
	}
	return out
}

func (a *App) record(sessionID string, c *calculator.Calculation) {
	err := a.config.Store.Calculations().Create(&store.Calculation{
		SessionID: sessionID,
		Left:      c.Left,
		Operator:  string(c.Operator),
		Right:     c.Right,
		Result:    c.Result,
		Entry:     c.Entry,
	})
	if err != nil {
		log.Warn("failed to record calculation", "error", err)
	}
}

func (a *App) startSession() {
	if a.config.Store == nil {
		return
	}

	sess, err := a.config.Store.Sessions().Start(a.config.CameraDevice)
	if err != nil {
		log.Warn("failed to start session", "error", err)
		return
	}

	a.mu.Lock()
	a.sessionID = sess.ID
	a.mu.Unlock()
	log.Info("session started", "session", sess.ID)
}

func (a *App) endSession() {
	a.mu.RLock()
	id := a.sessionID
	a.mu.RUnlock()

	if a.config.Store == nil || id == "" {
		return
	}
	if err := a.config.Store.Sessions().End(id); err != nil {
		log.Warn("failed to end session", "session", id, "error", err)
	}
}

func (a *App) say(text string) {
	if err := a.config.Narrator.Say(text); err != nil {
		log.Debug("narration skipped", "text", text, "error", err)
	}
}

// State returns a snapshot of the calculator.
func (a *App) State() calculator.State {
	return a.machine.Snapshot()
}

// Status reports the calculator for the HTTP surface.
func (a *App) Status() api.Status {
	state := a.machine.Snapshot()

	a.mu.RLock()
	defer a.mu.RUnlock()

	return api.Status{
		Display:     state.Display(),
		Input:       state.Input,
		Stored:      state.Stored,
		Operator:    string(state.Operator),
		History:     state.History,
		LastGesture: string(a.lastGesture),
		SessionID:   a.sessionID,
	}
}

// SessionID returns the current session's ID, empty without a store.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}
