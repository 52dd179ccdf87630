package scene

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/led-icicles/icicles-serial/protocol"
)

// Displayer shows a single frame, e.g. a link.Session
type Displayer interface {
	Display(frame protocol.FrameSource) error
}

// Player shows scene frames for their durations
type Player struct {
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewPlayer creates a player. nil arguments fall back to the real clock and slog.Default().
func NewPlayer(clock clockwork.Clock, logger *slog.Logger) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{clock: clock, logger: logger}
}

// Play shows every frame for its duration. Looping scenes play until ctx is
// done. Returns the first display error or ctx.Err().
func (p *Player) Play(ctx context.Context, d Displayer, s *Scene) error {
	for pass := 0; ; pass++ {
		for i := range s.Frames {
			frame := &s.Frames[i]
			if err := d.Display(frame.View); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(frame.Duration):
			}
		}

		if !s.Loop {
			return nil
		}
		p.logger.Debug("scene loop finished", "pass", pass)
	}
}
