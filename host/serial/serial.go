package serial

import (
	"errors"
	"io"
	"time"
)

// DefaultBaud is the baud rate the icicles controller listens on
const DefaultBaud = 921600

// ErrNilConfig is returned by Open when no configuration is given
var ErrNilConfig = errors.New("serial: config cannot be nil")

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate, passed through to the driver
	Baud int

	// Read timeout (0 = blocking). Sessions need a non-zero timeout to stop
	// their read loop on Close.
	ReadTimeout time.Duration
}

// DefaultConfig returns the default configuration for an icicles controller
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}
