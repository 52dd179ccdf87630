package protocol

// Color is a single RGB pixel color
type Color struct {
	R, G, B uint8
}

// RGB builds a Color from its channels
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// RadioPanel is an auxiliary indicator light addressed independently from the strip
type RadioPanel struct {
	Index uint8
	Color Color
}

// FrameSource provides the data for a single display frame.
// Pixels are in strip order (left to right = wire order).
type FrameSource interface {
	Pixels() []Color
	RadioPanels() []RadioPanel
}

// DisplayFrame is a FrameSource backed by plain slices
type DisplayFrame struct {
	Strip  []Color
	Panels []RadioPanel
}

func (f DisplayFrame) Pixels() []Color {
	return f.Strip
}

func (f DisplayFrame) RadioPanels() []RadioPanel {
	return f.Panels
}

// Solid returns n pixels of the same color
func Solid(n int, c Color) []Color {
	pixels := make([]Color, n)
	for i := range pixels {
		pixels[i] = c
	}
	return pixels
}
