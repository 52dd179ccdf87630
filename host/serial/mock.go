package serial

import (
	"io"
	"sync"
)

// MockPort is an in-memory Port for tests.
// Writes are recorded and announced on Written. Inbound data is queued with Feed.
type MockPort struct {
	mu       sync.Mutex
	writes   [][]byte
	writeErr error
	short    bool
	gate     chan struct{}
	closed   bool
	flushes  int

	written chan []byte
	reads   chan []byte
	closeCh chan struct{}
}

// NewMockPort creates an open MockPort
func NewMockPort() *MockPort {
	return &MockPort{
		written: make(chan []byte, 256),
		reads:   make(chan []byte, 16),
		closeCh: make(chan struct{}),
	}
}

func (p *MockPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-p.closeCh:
			return 0, io.ErrClosedPipe
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.writeErr != nil {
		return 0, p.writeErr
	}

	data := make([]byte, len(b))
	copy(data, b)
	p.writes = append(p.writes, data)

	select {
	case p.written <- data:
	default:
	}

	if p.short && len(b) > 0 {
		return len(b) - 1, nil
	}
	return len(b), nil
}

func (p *MockPort) Read(b []byte) (int, error) {
	select {
	case chunk := <-p.reads:
		return copy(b, chunk), nil
	case <-p.closeCh:
		return 0, io.EOF
	}
}

func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.closed = true
		close(p.closeCh)
	}
	return nil
}

func (p *MockPort) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushes++
	return nil
}

// Flushes returns how many times Flush was called
func (p *MockPort) Flushes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushes
}

// Feed queues an inbound chunk for the next Read
func (p *MockPort) Feed(chunk []byte) {
	p.reads <- chunk
}

// Written announces every successful write
func (p *MockPort) Written() <-chan []byte {
	return p.written
}

// Writes returns all successful writes so far
func (p *MockPort) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][]byte, len(p.writes))
	copy(out, p.writes)
	return out
}

// SetWriteError makes subsequent writes fail with err (nil clears it)
func (p *MockPort) SetWriteError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// SetShortWrites makes subsequent writes report one byte less than given
func (p *MockPort) SetShortWrites(short bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.short = short
}

// HoldWrites blocks subsequent writes until ReleaseWrites is called
func (p *MockPort) HoldWrites() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate = make(chan struct{})
}

// ReleaseWrites unblocks writes held by HoldWrites
func (p *MockPort) ReleaseWrites() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gate != nil {
		close(p.gate)
		p.gate = nil
	}
}

// IsClosed reports whether Close has been called
func (p *MockPort) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
