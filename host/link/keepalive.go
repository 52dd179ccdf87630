package link

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPingEvery is the keepalive interval used when none is given
const DefaultPingEvery = 10 * time.Second

// StartOptions configures the keepalive scheduler
type StartOptions struct {
	// PingEvery is the keepalive interval. Zero or negative uses DefaultPingEvery.
	PingEvery time.Duration
}

// pingTimer is a single armed keepalive timer.
// A timer is never re-armed; rescheduling replaces it.
type pingTimer struct {
	ticker clockwork.Ticker
	stop   chan struct{}
	done   chan struct{}
}

// wait blocks until the timer goroutine has exited
func (t *pingTimer) wait() {
	if t != nil {
		<-t.done
	}
}

// Start arms the keepalive timer and sends one ping right away.
// Calling Start again replaces the interval and re-arms the timer.
func (s *Session) Start(opts StartOptions) error {
	every := opts.PingEvery
	if every <= 0 {
		every = DefaultPingEvery
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.pingEvery = every
	s.armLocked()
	s.mu.Unlock()

	s.logger.Info("keepalive started", "ping_every", every)

	return s.SendPing()
}

// Stop disarms the keepalive timer and sends End. It is safe to call when the
// timer is not armed; End is always attempted.
func (s *Session) Stop() error {
	s.disarm()

	err := s.SendEnd()

	// A Start racing with Stop must not leave a timer behind
	s.disarm()

	if err != nil {
		return err
	}
	s.logger.Info("keepalive stopped")
	return nil
}

// PingsEnabled reports whether the keepalive timer is armed
func (s *Session) PingsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// PingEvery returns the current keepalive interval
func (s *Session) PingEvery() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingEvery
}

// reschedule pushes the next automatic ping a full interval into the future.
// It does nothing while the timer is disarmed.
func (s *Session) reschedule() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return
	}
	s.armLocked()
	s.logger.Debug("keepalive rescheduled", "ping_every", s.pingEvery)
}

// disarm cancels the timer and waits for an automatic ping in progress
func (s *Session) disarm() {
	s.mu.Lock()
	t := s.disarmLocked()
	s.mu.Unlock()

	t.wait()
}

// armLocked replaces the current timer with a fresh one.
// The old timer is cancelled before the new one is created.
func (s *Session) armLocked() {
	s.disarmLocked()

	t := &pingTimer{
		ticker: s.clock.NewTicker(s.pingEvery),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.timer = t
	s.observer.PingsEnabled(true)

	go s.pingLoop(t)
}

// disarmLocked cancels the current timer, if any, and returns it.
// Callers that need the timer goroutine gone wait on it after unlocking.
func (s *Session) disarmLocked() *pingTimer {
	t := s.timer
	if t == nil {
		return nil
	}

	t.ticker.Stop()
	close(t.stop)
	s.timer = nil
	s.observer.PingsEnabled(false)

	return t
}

// pingLoop sends a ping on every tick until the timer is cancelled
func (s *Session) pingLoop(t *pingTimer) {
	defer close(t.done)

	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.Chan():
		}

		// Cancellation wins over a tick that arrived at the same time
		select {
		case <-t.stop:
			return
		default:
		}

		if err := s.SendPing(); err != nil {
			s.logger.Warn("keepalive ping failed", "error", err)
		}
	}
}
