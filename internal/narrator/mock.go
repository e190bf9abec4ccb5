package narrator

import (
	"context"
	"sync"
	"time"
)

// MockSpeaker implements Speaker for testing. Each utterance takes Delay to
// "play" unless Stop interrupts it.
type MockSpeaker struct {
	Delay time.Duration

	mu          sync.Mutex
	started     []string
	spoken      []string
	interrupted []string
	stops       int
	closed      bool
	current     chan struct{}
}

// NewMockSpeaker creates a MockSpeaker with the given playback time.
func NewMockSpeaker(delay time.Duration) *MockSpeaker {
	return &MockSpeaker{Delay: delay}
}

// Speak records text and waits for Delay, Stop or ctx.
func (m *MockSpeaker) Speak(ctx context.Context, text string) error {
	stop := make(chan struct{})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.started = append(m.started, text)
	m.current = stop
	m.mu.Unlock()

	timer := time.NewTimer(m.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		m.finish(stop, &m.spoken, text)
		return nil
	case <-stop:
		m.finish(stop, &m.interrupted, text)
		return ErrInterrupted
	case <-ctx.Done():
		m.finish(stop, &m.interrupted, text)
		return ctx.Err()
	}
}

func (m *MockSpeaker) finish(stop chan struct{}, list *[]string, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*list = append(*list, text)
	if m.current == stop {
		m.current = nil
	}
}

// Stop interrupts the utterance in progress.
func (m *MockSpeaker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	if m.current != nil {
		close(m.current)
		m.current = nil
	}
}

// Close marks the speaker closed.
func (m *MockSpeaker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Started returns every utterance that began playing.
func (m *MockSpeaker) Started() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.started...)
}

// Spoken returns utterances that played to completion.
func (m *MockSpeaker) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}

// Interrupted returns utterances cut short.
func (m *MockSpeaker) Interrupted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.interrupted...)
}

// Stops returns how many times Stop was called.
func (m *MockSpeaker) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Closed reports whether Close was called.
func (m *MockSpeaker) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Speaker = (*MockSpeaker)(nil)
