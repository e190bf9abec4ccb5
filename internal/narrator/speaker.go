// Package narrator speaks calculator feedback on a background worker.
package narrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/ayusman/ganita/internal/log"
)

// DefaultRate is the speech rate in words per minute.
const DefaultRate = 160

var (
	// ErrInterrupted is returned by Speak when Stop cut the utterance short.
	ErrInterrupted = errors.New("utterance interrupted")
	// ErrNoSpeechEngine is returned when no speech command is installed.
	ErrNoSpeechEngine = errors.New("no speech engine available")
)

// Speaker synthesizes and plays one utterance at a time.
type Speaker interface {
	// Speak plays text and blocks until playback finishes or is stopped.
	Speak(ctx context.Context, text string) error

	// Stop interrupts the current utterance, if any.
	Stop()

	// Close releases the speech engine.
	Close() error
}

// DefaultCommand returns the platform's speech command.
func DefaultCommand() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

// CommandSpeaker speaks by running a text-to-speech command line tool such as
// espeak or say. Stop kills the running process.
type CommandSpeaker struct {
	path string
	name string
	rate int

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	closed bool
}

// NewCommandSpeaker resolves command on PATH. An empty command selects the
// platform default; a non-positive rate selects DefaultRate.
func NewCommandSpeaker(command string, rate int) (*CommandSpeaker, error) {
	if command == "" {
		command = DefaultCommand()
	}
	if rate <= 0 {
		rate = DefaultRate
	}

	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoSpeechEngine, command, err)
	}

	return &CommandSpeaker{
		path: path,
		name: filepath.Base(command),
		rate: rate,
	}, nil
}

// Args returns the arguments used to speak text.
func (s *CommandSpeaker) Args(text string) []string {
	rate := strconv.Itoa(s.rate)
	switch s.name {
	case "espeak", "espeak-ng":
		return []string{"-s", rate, text}
	case "say":
		return []string{"-r", rate, text}
	default:
		return []string{text}
	}
}

// Speak runs the command and waits for it to exit.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	cmd := exec.CommandContext(ctx, s.path, s.Args(text)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("%s failed: %w, stderr: %s", s.name, err, stderr.String())
		}
		return fmt.Errorf("%s failed: %w", s.name, err)
	}
	return nil
}

// Stop kills the running utterance.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel(ErrInterrupted)
	}
}

// Close stops playback and refuses further utterances.
func (s *CommandSpeaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancel != nil {
		s.cancel(ErrInterrupted)
	}
	return nil
}

// LogSpeaker writes utterances to the log instead of playing them. It is the
// fallback when no speech engine is installed.
type LogSpeaker struct{}

// Speak logs text.
func (LogSpeaker) Speak(_ context.Context, text string) error {
	log.Info("narration", "text", text)
	return nil
}

// Stop is a no-op.
func (LogSpeaker) Stop() {}

// Close is a no-op.
func (LogSpeaker) Close() error { return nil }

var (
	_ Speaker = (*CommandSpeaker)(nil)
	_ Speaker = LogSpeaker{}
)
