package protocol

import (
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a caller-supplied buffer cannot hold a frame
var ErrShortBuffer = errors.New("protocol: buffer too small for frame")

// DisplayFrameSize returns the exact encoded size of a display frame
func DisplayFrameSize(pixels, panels int) int {
	return MessageKindSize + PixelSize*pixels + RadioPanelSize*panels
}

// EncodePing returns a ping message
func EncodePing() []byte {
	return []byte{byte(MessagePing)}
}

// EncodeEnd returns an end message
func EncodeEnd() []byte {
	return []byte{byte(MessageEnd)}
}

// EncodeDisplay encodes a display frame.
//
// Layout: type byte, then R,G,B for each pixel, then index,R,G,B for each
// radio panel. Frame duration and animation type are not transmitted.
func EncodeDisplay(src FrameSource) []byte {
	pixels, panels := src.Pixels(), src.RadioPanels()
	buf := make([]byte, DisplayFrameSize(len(pixels), len(panels)))
	encodeDisplay(NewFrameWriter(buf), pixels, panels)
	return buf
}

// EncodeDisplayTo encodes a display frame into dst and returns the number of
// bytes written. dst can be reused across frames of the same topology.
func EncodeDisplayTo(dst []byte, src FrameSource) (int, error) {
	pixels, panels := src.Pixels(), src.RadioPanels()
	size := DisplayFrameSize(len(pixels), len(panels))
	if len(dst) < size {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, size, len(dst))
	}

	w := NewFrameWriter(dst[:size])
	encodeDisplay(w, pixels, panels)
	return w.CurPosition(), nil
}

func encodeDisplay(w *FrameWriter, pixels []Color, panels []RadioPanel) {
	w.Output(byte(MessageDisplayFrame))

	for _, p := range pixels {
		w.OutputColor(p)
	}

	for _, panel := range panels {
		w.Output(panel.Index)
		w.OutputColor(panel.Color)
	}
}
