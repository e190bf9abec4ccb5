package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/ganita/internal/calculator"
	"github.com/ayusman/ganita/internal/capture"
	"github.com/ayusman/ganita/internal/detector"
	"github.com/ayusman/ganita/internal/display"
	"github.com/ayusman/ganita/internal/gesture"
	"github.com/ayusman/ganita/internal/narrator"
	"github.com/ayusman/ganita/internal/store"
)

// stepClock advances by step every time it is read.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type harness struct {
	app     *App
	speaker *narrator.MockSpeaker
	narr    *narrator.Narrator
	camera  *capture.MockCamera
	det     *detector.MockDetector
	screen  *display.Headless
}

// newHarness builds an App on mocks. Each clock read moves a full second so
// the cooldown never drops a gesture unless step says otherwise.
func newHarness(t *testing.T, step time.Duration, mutate func(*Config)) *harness {
	t.Helper()

	h := &harness{
		speaker: narrator.NewMockSpeaker(0),
		camera:  capture.NewMockCamera(nil, false),
		det:     detector.NewMockDetector(),
		screen:  display.NewHeadless(),
	}
	h.narr = narrator.New(h.speaker)

	clock := &stepClock{now: time.Unix(0, 0), step: step}
	cfg := Config{
		Camera:    h.camera,
		Detector:  h.det,
		Display:   h.screen,
		Narrator:  h.narr,
		Debouncer: gesture.NewDebouncer(5, 800*time.Millisecond, gesture.WithClock(clock.Now)),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := New(cfg)
	require.NoError(t, err)
	h.app = a

	t.Cleanup(func() { h.closeNarrator(t) })
	return h
}

func (h *harness) closeNarrator(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.narr.Close(ctx))
}

// hold shows the same hand for n frames and returns the last result.
func (h *harness) hold(hand detector.HandLandmarks, n int) Result {
	var res Result
	for i := 0; i < n; i++ {
		res = h.app.Observe(&hand)
	}
	return res
}

func TestNew_RequiresCollaborators(t *testing.T) {
	n := narrator.New(narrator.NewMockSpeaker(0))
	defer n.Close(context.Background())

	full := Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
		Display:  display.NewHeadless(),
		Narrator: n,
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"camera", func(c *Config) { c.Camera = nil }},
		{"detector", func(c *Config) { c.Detector = nil }},
		{"display", func(c *Config) { c.Display = nil }},
		{"narrator", func(c *Config) { c.Narrator = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			_, err := New(cfg)
			assert.ErrorContains(t, err, tt.name)
		})
	}

	a, err := New(full)
	require.NoError(t, err)
	assert.NotNil(t, a.debouncer)
	assert.NotNil(t, a.machine)
}

func TestObserve_NoHand(t *testing.T) {
	h := newHarness(t, time.Second, nil)

	res := h.app.Observe(nil)
	assert.Equal(t, gesture.Label(""), res.Label)
	assert.Equal(t, gesture.Pending, res.Decision)
	assert.Nil(t, res.Outcome)
}

func TestObserve_Calculation(t *testing.T) {
	h := newHarness(t, time.Second, nil)

	steps := []struct {
		hand  detector.HandLandmarks
		label gesture.Label
	}{
		{detector.VSignLandmarks(0.15), "2"},
		{detector.VSignLandmarks(0.5), gesture.Add},
		{detector.ThreeFingerLandmarks(0.5), "3"},
		{detector.VSignLandmarks(0.05), gesture.Equals},
	}

	for _, step := range steps {
		pending := h.hold(step.hand, 4)
		assert.Equal(t, gesture.Pending, pending.Decision, step.label)

		res := h.app.Observe(&step.hand)
		require.Equal(t, gesture.Accepted, res.Decision, step.label)
		assert.Equal(t, step.label, res.Label)
		require.NotNil(t, res.Outcome)
	}

	state := h.app.State()
	assert.Equal(t, "5.0", state.Input)
	assert.Equal(t, []string{"2.0 + 3.0 = 5.00"}, state.History)
	assert.Equal(t, calculator.None, state.Operator)

	h.closeNarrator(t)
	assert.Equal(t, []string{"2", "2.0 +", "3", "The result is 5.00"}, h.speaker.Started())
}

func TestObserve_MissingHandDoesNotReset(t *testing.T) {
	h := newHarness(t, time.Second, nil)
	add := detector.VSignLandmarks(0.5)

	h.hold(add, 3)
	h.app.Observe(nil)
	res := h.hold(add, 2)

	assert.Equal(t, gesture.Accepted, res.Decision)
}

func TestObserve_InterruptionResets(t *testing.T) {
	h := newHarness(t, time.Second, nil)

	h.hold(detector.VSignLandmarks(0.5), 4)
	h.hold(detector.OpenPalmLandmarks(), 1)
	res := h.hold(detector.VSignLandmarks(0.5), 4)
	assert.Equal(t, gesture.Pending, res.Decision)

	res = h.hold(detector.VSignLandmarks(0.5), 1)
	assert.Equal(t, gesture.Accepted, res.Decision)
}

func TestObserve_Cooldown(t *testing.T) {
	// The clock never moves, so every confirmation lands inside the cooldown.
	h := newHarness(t, 0, nil)

	res := h.hold(detector.PointLandmarks(), 5)
	assert.Equal(t, gesture.Dropped, res.Decision)
	assert.Nil(t, res.Outcome)
	assert.Equal(t, "", h.app.State().Input)
}

func TestObserve_FaultIsNarrated(t *testing.T) {
	h := newHarness(t, time.Second, nil)

	res := h.hold(detector.VSignLandmarks(0.05), 5)
	require.NotNil(t, res.Outcome)
	assert.Equal(t, calculator.InputFault, res.Outcome.Fault)

	h.closeNarrator(t)
	assert.Equal(t, []string{calculator.MsgIncomplete}, h.speaker.Started())
}

func TestObserve_OnAcceptedAndStatus(t *testing.T) {
	var got []Accepted
	h := newHarness(t, time.Second, func(c *Config) {
		c.OnAccepted = func(a Accepted) { got = append(got, a) }
	})

	h.hold(detector.FourFingerLandmarks(), 5)
	h.hold(detector.VSignLandmarks(0.5), 5)

	require.Len(t, got, 2)
	assert.Equal(t, gesture.Label("4"), got[0].Label)
	assert.Equal(t, "4.0 +", got[1].Outcome.Narration)
	assert.Equal(t, calculator.Plus, got[1].State.Operator)

	status := h.app.Status()
	assert.Equal(t, "4.0 + 0", status.Display)
	assert.Equal(t, "+", status.Operator)
	assert.Equal(t, string(gesture.Add), status.LastGesture)
}

func TestObserve_RecordsCalculations(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	h := newHarness(t, time.Second, func(c *Config) {
		c.Store = s
	})
	h.app.startSession()
	require.NotEmpty(t, h.app.SessionID())

	h.hold(detector.FourFingerLandmarks(), 5)
	h.hold(detector.ThreeFingerLandmarks(0.05), 5)
	h.hold(detector.VSignLandmarks(0.15), 5)
	h.hold(detector.VSignLandmarks(0.05), 5)
	h.app.endSession()

	calcs, err := s.Calculations().ListBySession(h.app.SessionID())
	require.NoError(t, err)
	require.Len(t, calcs, 1)
	assert.Equal(t, "4.0 * 2.0 = 8.00", calcs[0].Entry)
	assert.Equal(t, "*", calcs[0].Operator)
	assert.Equal(t, 8.0, calcs[0].Result)

	sess, err := s.Sessions().GetByID(h.app.SessionID())
	require.NoError(t, err)
	assert.NotNil(t, sess.EndedAt)
}
