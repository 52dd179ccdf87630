// Package protocol implements the icicles serial wire protocol.
//
// Every message starts with a single MessageKind byte. Ping and End carry no
// payload. A display frame carries the pixel strip followed by the radio
// panels. There is no length prefix, delimiter or checksum: both ends agree on
// strip and panel topology out of band.
package protocol

// Version is the protocol library version
const Version = "0.1.0"

// Wire sizes
const (
	MessageKindSize = 1 // Message type byte
	ColorSize       = 3 // red, green, blue
	PixelSize       = ColorSize
	RadioPanelSize  = 1 + ColorSize // panel index + color
)

// MessageKind is the first byte of every message on the wire
type MessageKind uint8

// MessageKind values are part of the device contract and must not be renumbered
const (
	// MessagePing keeps the device in host mode. Built-in animations stay stopped.
	MessagePing MessageKind = 0

	// MessageDisplayFrame displays the frame that follows
	MessageDisplayFrame MessageKind = 1

	// MessageEnd ends host communication; the device resumes built-in animations.
	MessageEnd MessageKind = 10
)

func (k MessageKind) String() string {
	switch k {
	case MessagePing:
		return "ping"
	case MessageDisplayFrame:
		return "display"
	case MessageEnd:
		return "end"
	default:
		return "unknown"
	}
}

// KindOf returns the message kind of an encoded message
func KindOf(msg []byte) MessageKind {
	if len(msg) < MessageKindSize {
		return MessageKind(0xFF)
	}
	return MessageKind(msg[0])
}
