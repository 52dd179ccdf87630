package protocol

// FrameWriter writes a message into a preallocated buffer.
// Writes past the end of the buffer are dropped; callers size the buffer
// with DisplayFrameSize before writing.
type FrameWriter struct {
	buf []byte
	pos int
}

// NewFrameWriter creates a FrameWriter over buf
func NewFrameWriter(buf []byte) *FrameWriter {
	return &FrameWriter{buf: buf}
}

// Output appends data at the current position
func (w *FrameWriter) Output(data ...byte) {
	n := copy(w.buf[w.pos:], data)
	w.pos += n
}

// OutputColor appends the red, green and blue channels of c
func (w *FrameWriter) OutputColor(c Color) {
	w.Output(c.R, c.G, c.B)
}

func (w *FrameWriter) CurPosition() int {
	return w.pos
}

// Remaining returns the number of bytes that can still be written
func (w *FrameWriter) Remaining() int {
	return len(w.buf) - w.pos
}

// Result returns the bytes written so far
func (w *FrameWriter) Result() []byte {
	return w.buf[:w.pos]
}

// Reset rewinds the writer to the start of its buffer
func (w *FrameWriter) Reset() {
	w.pos = 0
}
