package server

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// FrameBuffer holds only the most recent encoded frame. Slow readers skip
// frames instead of queueing them.
type FrameBuffer struct {
	mu       sync.Mutex
	frame    []byte
	seq      uint64
	ready    chan struct{}
	watchers int
}

// NewFrameBuffer creates an empty FrameBuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{ready: make(chan struct{})}
}

// Publish replaces the current frame and wakes readers.
func (b *FrameBuffer) Publish(jpeg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frame = jpeg
	b.seq++
	close(b.ready)
	b.ready = make(chan struct{})
}

// PublishMat JPEG-encodes mat and publishes it. Nothing is encoded while no
// one is watching.
func (b *FrameBuffer) PublishMat(mat *gocv.Mat) error {
	if !b.Watching() {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *mat)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	b.Publish(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Watching reports whether any stream is reading frames.
func (b *FrameBuffer) Watching() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.watchers > 0
}

// Watch registers a reader. Call the returned func when done.
func (b *FrameBuffer) Watch() (unwatch func()) {
	b.mu.Lock()
	b.watchers++
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.watchers--
			b.mu.Unlock()
		})
	}
}

// Next returns the first frame newer than after, waiting for one if needed.
func (b *FrameBuffer) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > after && b.frame != nil {
			frame, seq := b.frame, b.seq
			b.mu.Unlock()
			return frame, seq, nil
		}
		ready := b.ready
		b.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return nil, after, ctx.Err()
		}
	}
}
