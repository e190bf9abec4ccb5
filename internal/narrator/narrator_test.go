package narrator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func closeNarrator(t *testing.T, n *Narrator, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	require.NoError(t, n.Close(ctx))
}

func TestNarrator_PlaysInOrder(t *testing.T) {
	speaker := NewMockSpeaker(time.Millisecond)
	n := New(speaker)

	for _, msg := range []string{"5", "0", "50.0 +"} {
		require.NoError(t, n.Say(msg))
	}
	closeNarrator(t, n, waitFor)

	assert.Equal(t, []string{"5", "0", "50.0 +"}, speaker.Started())
	assert.Contains(t, speaker.Spoken(), "50.0 +")
	assert.True(t, speaker.Closed())
	assert.Equal(t, 0, n.Pending())
}

func TestNarrator_NewMessageInterruptsPlayback(t *testing.T) {
	speaker := NewMockSpeaker(time.Hour)
	n := New(speaker)

	require.NoError(t, n.Say("The result is 70.00"))
	require.Eventually(t, func() bool {
		return len(speaker.Started()) == 1
	}, waitFor, time.Millisecond)

	require.NoError(t, n.Say("Calculator cleared"))
	require.Eventually(t, func() bool {
		return len(speaker.Started()) == 2
	}, waitFor, time.Millisecond)

	assert.Equal(t, []string{"The result is 70.00"}, speaker.Interrupted())
	assert.Empty(t, speaker.Spoken())

	// Shutdown with a short deadline cuts the second message too.
	closeNarrator(t, n, 20*time.Millisecond)
	assert.Equal(t, []string{"The result is 70.00", "Calculator cleared"}, speaker.Interrupted())
	assert.True(t, speaker.Closed())
}

func TestNarrator_SayStopsFirst(t *testing.T) {
	speaker := NewMockSpeaker(time.Millisecond)
	n := New(speaker)

	for i := 0; i < 4; i++ {
		require.NoError(t, n.Say("x"))
	}
	closeNarrator(t, n, waitFor)

	assert.Equal(t, 4, speaker.Stops())
}

func TestNarrator_CloseDropsQueueOnDeadline(t *testing.T) {
	speaker := NewMockSpeaker(time.Hour)
	n := New(speaker)

	require.NoError(t, n.Say("a"))
	require.Eventually(t, func() bool {
		return len(speaker.Started()) == 1
	}, waitFor, time.Millisecond)

	// Queue two more without letting the worker pick them up first.
	n.mu.Lock()
	n.queue = append(n.queue, "b", "c")
	n.mu.Unlock()

	start := time.Now()
	closeNarrator(t, n, 20*time.Millisecond)
	assert.Less(t, time.Since(start), waitFor)
	assert.Equal(t, []string{"a"}, speaker.Started())
}

func TestNarrator_SayAfterClose(t *testing.T) {
	n := New(NewMockSpeaker(0))
	closeNarrator(t, n, waitFor)

	assert.ErrorIs(t, n.Say("late"), ErrClosed)
	// Closing again is harmless.
	closeNarrator(t, n, waitFor)
}

func TestNarrator_IgnoresEmpty(t *testing.T) {
	speaker := NewMockSpeaker(0)
	n := New(speaker)

	require.NoError(t, n.Say(""))
	closeNarrator(t, n, waitFor)

	assert.Empty(t, speaker.Started())
	assert.Equal(t, 0, speaker.Stops())
}

func TestNarrator_OnSpoken(t *testing.T) {
	var mu sync.Mutex
	var got []string

	n := New(NewMockSpeaker(0), WithOnSpoken(func(text string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			got = append(got, text)
		}
	}))

	require.NoError(t, n.Say("ready"))
	closeNarrator(t, n, waitFor)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ready"}, got)
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestCommandSpeaker_Args(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"espeak", []string{"-s", "160", "hello"}},
		{"espeak-ng", []string{"-s", "160", "hello"}},
		{"say", []string{"-r", "160", "hello"}},
		{"spd-say", []string{"hello"}},
	}

	for _, tt := range tests {
		s := &CommandSpeaker{name: tt.name, rate: DefaultRate}
		assert.Equal(t, tt.want, s.Args("hello"), tt.name)
	}
}

func TestCommandSpeaker_Speak(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "args.txt")
	script := writeScript(t, dir, "espeak", `echo "$@" > "`+out+`"`+"\n")

	s, err := NewCommandSpeaker(script, 200)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Speak(context.Background(), "The result is 70.00"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "-s 200 The result is 70.00", strings.TrimSpace(string(data)))
}

func TestCommandSpeaker_Stop(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := writeScript(t, t.TempDir(), "espeak", "exec sleep 10\n")

	s, err := NewCommandSpeaker(script, 0)
	require.NoError(t, err)
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Speak(context.Background(), "long")
	}()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cancel != nil
	}, waitFor, time.Millisecond)

	s.Stop()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(5 * time.Second):
		t.Fatal("Speak did not return after Stop")
	}
}

func TestCommandSpeaker_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := writeScript(t, t.TempDir(), "espeak", "echo boom >&2\nexit 3\n")

	s, err := NewCommandSpeaker(script, 0)
	require.NoError(t, err)

	err = s.Speak(context.Background(), "x")
	assert.ErrorContains(t, err, "boom")

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Speak(context.Background(), "x"), ErrClosed)
}

func TestNewCommandSpeaker_Missing(t *testing.T) {
	_, err := NewCommandSpeaker("/nonexistent/espeak", 0)
	assert.ErrorIs(t, err, ErrNoSpeechEngine)
}
