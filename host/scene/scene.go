// Package scene loads frame sequences from YAML files and plays them on a
// display. Frame timing is kept on the host; the wire carries no durations.
//
// Example:
//
//	pixels: 4
//	loop: true
//	frames:
//	  - duration: 500ms
//	    fill: "#ff0000"
//	    panels:
//	      - index: 0
//	        color: "#00ff00"
//	  - duration: 500ms
//	    pixels: ["#000000", "#0000ff"]
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/led-icicles/icicles-serial/protocol"
)

// DefaultFrameDuration is used for frames without a duration
const DefaultFrameDuration = 50 * time.Millisecond

// ErrNoFrames is returned for scenes without frames
var ErrNoFrames = errors.New("scene: no frames")

// File is the YAML representation of a scene
type File struct {
	Pixels int         `yaml:"pixels"`
	Loop   bool        `yaml:"loop"`
	Frames []FrameSpec `yaml:"frames"`
}

// FrameSpec is one frame as written in a scene file
type FrameSpec struct {
	Duration time.Duration `yaml:"duration"`
	Fill     string        `yaml:"fill"`
	Pixels   []string      `yaml:"pixels"`
	Panels   []PanelSpec   `yaml:"panels"`
}

// PanelSpec sets the color of one radio panel
type PanelSpec struct {
	Index uint8  `yaml:"index"`
	Color string `yaml:"color"`
}

// Frame is a display frame and how long it stays on
type Frame struct {
	View     protocol.DisplayFrame
	Duration time.Duration
}

// Scene is a parsed, ready to play frame sequence
type Scene struct {
	Frames []Frame
	Loop   bool
}

// Load reads a scene file
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open scene file: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse scene file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene. Unknown fields are rejected.
func Parse(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, err
	}
	return file.Build()
}

// Build converts the file representation into frames
func (f *File) Build() (*Scene, error) {
	if len(f.Frames) == 0 {
		return nil, ErrNoFrames
	}
	if f.Pixels < 0 {
		return nil, fmt.Errorf("pixels must not be negative, got %d", f.Pixels)
	}

	s := &Scene{Loop: f.Loop, Frames: make([]Frame, 0, len(f.Frames))}
	for i, spec := range f.Frames {
		frame, err := spec.build(f.Pixels)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		s.Frames = append(s.Frames, frame)
	}
	return s, nil
}

func (spec *FrameSpec) build(pixels int) (Frame, error) {
	if spec.Duration < 0 {
		return Frame{}, fmt.Errorf("negative duration %v", spec.Duration)
	}
	if pixels == 0 {
		pixels = len(spec.Pixels)
	}
	if len(spec.Pixels) > pixels {
		return Frame{}, fmt.Errorf("%d pixels given for a strip of %d", len(spec.Pixels), pixels)
	}

	var fill protocol.Color
	if spec.Fill != "" {
		c, err := ParseColor(spec.Fill)
		if err != nil {
			return Frame{}, err
		}
		fill = c
	}

	strip := protocol.Solid(pixels, fill)
	for i, hex := range spec.Pixels {
		c, err := ParseColor(hex)
		if err != nil {
			return Frame{}, fmt.Errorf("pixel %d: %w", i, err)
		}
		strip[i] = c
	}

	panels := make([]protocol.RadioPanel, 0, len(spec.Panels))
	for _, p := range spec.Panels {
		c, err := ParseColor(p.Color)
		if err != nil {
			return Frame{}, fmt.Errorf("panel %d: %w", p.Index, err)
		}
		panels = append(panels, protocol.RadioPanel{Index: p.Index, Color: c})
	}

	duration := spec.Duration
	if duration == 0 {
		duration = DefaultFrameDuration
	}

	return Frame{
		View:     protocol.DisplayFrame{Strip: strip, Panels: panels},
		Duration: duration,
	}, nil
}

// ParseColor parses a "#rrggbb" hex color
func ParseColor(s string) (protocol.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return protocol.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return protocol.RGB(r, g, b), nil
}
