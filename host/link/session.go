// Package link drives an icicles controller over a byte-stream transport.
//
// A Session owns the transport and the keepalive scheduler. Every frame sent
// through it proves liveness to the device, so application sends push the next
// automatic ping back by a full interval.
package link

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/led-icicles/icicles-serial/protocol"
)

var (
	// ErrIncompleteWrite is returned when the transport accepts fewer bytes than given
	ErrIncompleteWrite = errors.New("link: incomplete write")

	// ErrClosed is returned by operations on a closed session
	ErrClosed = errors.New("link: session closed")
)

// readRetryDelay is the pause after a failed transport read
const readRetryDelay = 10 * time.Millisecond

// DataHandler receives raw inbound chunks from the device.
// Chunks are not parsed.
type DataHandler func(chunk []byte)

// Config configures a Session
type Config struct {
	// Clock drives the keepalive timer.
	// If nil, the real clock is used.
	Clock clockwork.Clock

	// Logger is used for session events.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Observer is notified about sends and keepalive state.
	// If nil, nothing is reported.
	Observer Observer
}

// SendOptions controls the keepalive side effects of a send
type SendOptions struct {
	// WithPing reschedules the keepalive timer so the next automatic ping
	// happens a full interval after this send. Default: true.
	WithPing bool
}

// DefaultSendOptions returns the options used by Send
func DefaultSendOptions() SendOptions {
	return SendOptions{WithPing: true}
}

// Session is a connection to a single icicles controller
type Session struct {
	port     io.ReadWriteCloser
	clock    clockwork.Clock
	logger   *slog.Logger
	observer Observer

	// Guards inFlight, pingEvery, timer and closed
	mu        sync.Mutex
	inFlight  int
	pingEvery time.Duration
	timer     *pingTimer
	closed    bool

	// Serializes transport writes so frames never interleave
	writeMu sync.Mutex

	handlerMu sync.RWMutex
	handler   DataHandler

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// NewSession binds a session to an already open transport and starts
// forwarding inbound data. The session takes ownership of port.
func NewSession(port io.ReadWriteCloser, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	s := &Session{
		port:      port,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		observer:  cfg.Observer,
		pingEvery: DefaultPingEvery,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}

	go s.readLoop()

	return s
}

// Send transmits an encoded message and reschedules the keepalive timer.
// Sends never arm the timer themselves; call Start first to enable keepalive.
func (s *Session) Send(data []byte) error {
	return s.SendWithOptions(data, DefaultSendOptions())
}

// SendWithOptions transmits an encoded message.
// Transport errors are returned as is; nothing is retried.
func (s *Session) SendWithOptions(data []byte, opts SendOptions) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if opts.WithPing {
		s.reschedule()
	}

	return s.write(data)
}

// Display encodes and transmits a display frame
func (s *Session) Display(frame protocol.FrameSource) error {
	return s.Send(protocol.EncodeDisplay(frame))
}

// SendPing transmits a ping without touching the keepalive timer
func (s *Session) SendPing() error {
	return s.SendWithOptions(protocol.EncodePing(), SendOptions{WithPing: false})
}

// SendEnd transmits an end message without touching the keepalive timer.
// The device falls back to its built-in animations.
func (s *Session) SendEnd() error {
	return s.SendWithOptions(protocol.EncodeEnd(), SendOptions{WithPing: false})
}

// IsSending reports whether any send is in flight
func (s *Session) IsSending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight != 0
}

// SetDataHandler sets the callback for raw inbound chunks
func (s *Session) SetDataHandler(handler DataHandler) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.handler = handler
}

// Close disarms the keepalive timer without sending End, stops forwarding
// inbound data and closes the transport. The read loop only notices the close
// if the transport's reads return, so serial ports need a read timeout.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		t := s.disarmLocked()
		s.mu.Unlock()

		// Closing the port unblocks a ping stuck in Write
		close(s.stopChan)
		err = s.port.Close()
		t.wait()
		<-s.doneChan // Wait for read loop to finish
	})
	return err
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.inFlight++
	s.observer.InFlight(s.inFlight)
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	s.observer.InFlight(s.inFlight)
}

// write sends a message to the transport
func (s *Session) write(msg []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	kind := protocol.KindOf(msg)

	n, err := s.port.Write(msg)
	if err != nil {
		s.observer.WriteFailed(kind)
		return err
	}
	if n != len(msg) {
		s.observer.WriteFailed(kind)
		return fmt.Errorf("%w: %d/%d bytes", ErrIncompleteWrite, n, len(msg))
	}

	s.observer.FrameSent(kind, n)
	return nil
}

// readLoop forwards inbound chunks until the session is closed
func (s *Session) readLoop() {
	defer close(s.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		n, err := s.port.Read(buffer)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buffer[:n])
			s.dispatch(chunk)
		}

		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
			}
			// Read timeouts surface as EOF on serial ports
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("serial read failed", "error", err)
			}
			time.Sleep(readRetryDelay)
		}
	}
}

func (s *Session) dispatch(chunk []byte) {
	s.handlerMu.RLock()
	handler := s.handler
	s.handlerMu.RUnlock()

	if handler == nil {
		s.logger.Debug("dropping inbound data", "bytes", len(chunk))
		return
	}
	handler(chunk)
}
