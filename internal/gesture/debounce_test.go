package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDebouncer(clock *fakeClock) *Debouncer {
	d := NewDebouncer(DefaultConfirmFrames, DefaultCooldown, WithClock(clock.Now))
	clock.Advance(time.Second) // past the start-up cooldown
	return d
}

func observeN(d *Debouncer, label Label, n int) []Decision {
	out := make([]Decision, n)
	for i := range out {
		out[i] = d.Observe(label)
	}
	return out
}

func TestDebouncer_ConfirmsOnFifthFrame(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDebouncer(clock)

	got := observeN(d, Add, 5)
	assert.Equal(t, []Decision{Pending, Pending, Pending, Pending, Accepted}, got)

	last, at := d.Last()
	assert.Equal(t, Add, last)
	assert.Equal(t, clock.Now(), at)
	assert.Equal(t, 0, d.Count(Add))
}

func TestDebouncer_InterruptionResetsCounts(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDebouncer(clock)

	observeN(d, Add, 4)
	assert.Equal(t, Pending, d.Observe(Clear))
	assert.Equal(t, 0, d.Count(Add))
	assert.Equal(t, 1, d.Count(Clear))

	got := observeN(d, Add, 5)
	assert.Equal(t, []Decision{Pending, Pending, Pending, Pending, Accepted}, got)
}

func TestDebouncer_ConfirmationResetsAllCounts(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDebouncer(clock)

	observeN(d, "3", 5)
	for _, l := range []Label{"3", Add, Clear} {
		assert.Equal(t, 0, d.Count(l))
	}

	// The same label needs a fresh run after a confirmation.
	clock.Advance(time.Second)
	got := observeN(d, "3", 5)
	assert.Equal(t, Accepted, got[4])
	assert.NotContains(t, got[:4], Accepted)
}

func TestDebouncer_Cooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := newTestDebouncer(clock)

	assert.Equal(t, Accepted, observeN(d, "1", 5)[4])

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, Dropped, observeN(d, "2", 5)[4])

	// A dropped confirmation does not move the reference point.
	last, _ := d.Last()
	assert.Equal(t, Label("1"), last)
	assert.Equal(t, 0, d.Count("2"))

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, Accepted, observeN(d, "2", 5)[4])
}

func TestDebouncer_StartupCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := NewDebouncer(DefaultConfirmFrames, DefaultCooldown, WithClock(clock.Now))

	assert.Equal(t, Dropped, observeN(d, Clear, 5)[4])

	clock.Advance(DefaultCooldown)
	assert.Equal(t, Accepted, observeN(d, Clear, 5)[4])
}

func TestNewDebouncer_Defaults(t *testing.T) {
	d := NewDebouncer(0, -time.Second)
	assert.Equal(t, DefaultConfirmFrames, d.confirmFrames)
	assert.Equal(t, time.Duration(0), d.cooldown)
}
