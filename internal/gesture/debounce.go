package gesture

import "time"

// Debounce defaults.
const (
	DefaultConfirmFrames = 5
	DefaultCooldown      = 800 * time.Millisecond
)

// Decision is the result of observing one frame.
type Decision int

const (
	// Pending means no label reached the frame threshold.
	Pending Decision = iota
	// Accepted means a label was confirmed and the cooldown had elapsed.
	Accepted
	// Dropped means a label was confirmed inside the cooldown window.
	Dropped
)

// Debouncer requires a label to be seen on a number of frames before it is
// accepted, and spaces accepted labels by a cooldown.
//
// Frames must be consecutive: observing a label different from the previous
// one resets every count, and so does any confirmation. Frames without a hand
// are not passed to Observe and leave the counts untouched.
type Debouncer struct {
	confirmFrames int
	cooldown      time.Duration
	now           func() time.Time

	counts       map[Label]int
	current      Label
	lastLabel    Label
	lastAccepted time.Time
}

// DebouncerOption configures a Debouncer.
type DebouncerOption func(*Debouncer)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) DebouncerOption {
	return func(d *Debouncer) {
		d.now = now
	}
}

// NewDebouncer creates a Debouncer. The cooldown is measured from creation,
// so a label confirmed right after start-up is dropped.
func NewDebouncer(confirmFrames int, cooldown time.Duration, opts ...DebouncerOption) *Debouncer {
	if confirmFrames <= 0 {
		confirmFrames = DefaultConfirmFrames
	}
	if cooldown < 0 {
		cooldown = 0
	}

	d := &Debouncer{
		confirmFrames: confirmFrames,
		cooldown:      cooldown,
		now:           time.Now,
		counts:        make(map[Label]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.lastAccepted = d.now()

	return d
}

// Observe records one frame's label and reports whether it produced an event.
func (d *Debouncer) Observe(label Label) Decision {
	if label != d.current {
		clear(d.counts)
		d.current = label
	}

	d.counts[label]++
	if d.counts[label] < d.confirmFrames {
		return Pending
	}

	clear(d.counts)
	d.current = ""

	now := d.now()
	if now.Sub(d.lastAccepted) < d.cooldown {
		return Dropped
	}

	d.lastAccepted = now
	d.lastLabel = label
	return Accepted
}

// Count returns the current frame count for label.
func (d *Debouncer) Count(label Label) int {
	return d.counts[label]
}

// Last returns the most recently accepted label and when it was accepted.
func (d *Debouncer) Last() (Label, time.Time) {
	return d.lastLabel, d.lastAccepted
}
