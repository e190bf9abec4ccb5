package narrator

import (
	"context"
	"errors"
	"sync"

	"github.com/ayusman/ganita/internal/log"
)

// ErrClosed is returned by Say after Close.
var ErrClosed = errors.New("narrator closed")

// Narrator plays messages in order on a single worker goroutine.
//
// Say never blocks on playback. It stops whatever is currently playing and
// then queues the new message, so a burst of messages cuts earlier ones
// short while every queued message is still played. The stop and the
// enqueue happen under one lock.
type Narrator struct {
	speaker Speaker

	mu     sync.Mutex
	queue  []string
	closed bool

	wake   chan struct{}
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	onSpoken func(text string, err error)
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithOnSpoken registers fn to run on the worker after each message finishes
// or is interrupted.
func WithOnSpoken(fn func(text string, err error)) Option {
	return func(n *Narrator) {
		n.onSpoken = fn
	}
}

// New starts a Narrator backed by speaker.
func New(speaker Speaker, opts ...Option) *Narrator {
	ctx, cancel := context.WithCancel(context.Background())

	n := &Narrator{
		speaker: speaker,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(n)
	}
	go n.run()
	return n
}

// Say interrupts current playback and queues text.
func (n *Narrator) Say(text string) error {
	if text == "" {
		return nil
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrClosed
	}
	n.speaker.Stop()
	n.queue = append(n.queue, text)
	n.mu.Unlock()

	n.signal()
	return nil
}

// Pending returns the number of queued messages not yet started.
func (n *Narrator) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

// Close stops accepting messages and lets the worker play what is queued.
// If ctx ends first the queue is dropped and playback is stopped. The worker
// has exited and the speaker is closed when Close returns.
func (n *Narrator) Close(ctx context.Context) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		<-n.done
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.signal()

	select {
	case <-n.done:
	case <-ctx.Done():
		n.mu.Lock()
		dropped := len(n.queue)
		n.queue = nil
		n.mu.Unlock()

		n.cancel()
		n.speaker.Stop()
		<-n.done

		if dropped > 0 {
			log.Debug("narration dropped at shutdown", "messages", dropped)
		}
	}

	n.cancel()
	return n.speaker.Close()
}

func (n *Narrator) signal() {
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest message. exit is true once closed and drained.
func (n *Narrator) next() (text string, ok, exit bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.queue) > 0 {
		text = n.queue[0]
		n.queue = n.queue[1:]
		return text, true, false
	}
	return "", false, n.closed
}

func (n *Narrator) run() {
	defer close(n.done)

	for {
		text, ok, exit := n.next()
		if exit {
			return
		}
		if !ok {
			<-n.wake
			continue
		}

		err := n.speaker.Speak(n.ctx, text)
		if err != nil && !errors.Is(err, ErrInterrupted) && !errors.Is(err, context.Canceled) {
			log.Warn("narration failed", "text", text, "error", err)
		}
		if n.onSpoken != nil {
			n.onSpoken(text, err)
		}
	}
}
