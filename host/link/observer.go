package link

import "github.com/led-icicles/icicles-serial/protocol"

// Observer is notified about session activity.
// Methods are called with session locks held and must not block.
type Observer interface {
	// FrameSent is called after a message of kind was fully written
	FrameSent(kind protocol.MessageKind, bytes int)

	// WriteFailed is called when the transport rejected a message
	WriteFailed(kind protocol.MessageKind)

	// InFlight is called whenever the number of in-flight sends changes
	InFlight(n int)

	// PingsEnabled is called when the keepalive timer is armed or disarmed
	PingsEnabled(enabled bool)
}

type nopObserver struct{}

func (nopObserver) FrameSent(protocol.MessageKind, int) {}
func (nopObserver) WriteFailed(protocol.MessageKind) {}
func (nopObserver) InFlight(int) {}
func (nopObserver) PingsEnabled(bool) {}
