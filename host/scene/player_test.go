package scene

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/led-icicles/icicles-serial/protocol"
)

type recordingDisplay struct {
	frames chan protocol.FrameSource
	err    error
}

func (d *recordingDisplay) Display(frame protocol.FrameSource) error {
	if d.err != nil {
		return d.err
	}
	d.frames <- frame
	return nil
}

func testScene(loop bool) *Scene {
	return &Scene{
		Loop: loop,
		Frames: []Frame{
			{View: protocol.DisplayFrame{Strip: []protocol.Color{protocol.RGB(1, 0, 0)}}, Duration: time.Second},
			{View: protocol.DisplayFrame{Strip: []protocol.Color{protocol.RGB(2, 0, 0)}}, Duration: 2 * time.Second},
		},
	}
}

func nextFrame(t *testing.T, d *recordingDisplay) protocol.FrameSource {
	t.Helper()
	select {
	case f := <-d.frames:
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestPlayOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	player := NewPlayer(clock, slog.New(slog.NewTextHandler(io.Discard, nil)))
	display := &recordingDisplay{frames: make(chan protocol.FrameSource, 4)}

	done := make(chan error, 1)
	go func() { done <- player.Play(context.Background(), display, testScene(false)) }()

	assert.Equal(t, uint8(1), nextFrame(t, display).Pixels()[0].R)
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	assert.Equal(t, uint8(2), nextFrame(t, display).Pixels()[0].R)
	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Play did not return")
	}
}

func TestPlayLoopUntilCancelled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	player := NewPlayer(clock, nil)
	display := &recordingDisplay{frames: make(chan protocol.FrameSource, 4)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- player.Play(ctx, display, testScene(true)) }()

	nextFrame(t, display)
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	nextFrame(t, display)
	clock.BlockUntil(1)
	clock.Advance(2 * time.Second)

	// Back at the first frame
	assert.Equal(t, uint8(1), nextFrame(t, display).Pixels()[0].R)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Play did not return after cancel")
	}
}

func TestPlayReturnsDisplayError(t *testing.T) {
	displayErr := errors.New("port gone")
	display := &recordingDisplay{err: displayErr}

	err := NewPlayer(clockwork.NewFakeClock(), nil).Play(context.Background(), display, testScene(true))
	require.Error(t, err)
	assert.ErrorIs(t, err, displayErr)
}
