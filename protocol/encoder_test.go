package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeControlMessages(t *testing.T) {
	if got := EncodePing(); !bytes.Equal(got, []byte{0}) {
		t.Errorf("EncodePing: expected [0], got %v", got)
	}
	if got := EncodeEnd(); !bytes.Equal(got, []byte{10}) {
		t.Errorf("EncodeEnd: expected [10], got %v", got)
	}
}

func TestEncodeDisplay(t *testing.T) {
	tests := []struct {
		name  string
		frame DisplayFrame
		want  []byte
	}{
		{
			name:  "empty",
			frame: DisplayFrame{},
			want:  []byte{1},
		},
		{
			name:  "single red pixel",
			frame: DisplayFrame{Strip: []Color{RGB(255, 0, 0)}},
			want:  []byte{1, 255, 0, 0},
		},
		{
			name:  "single panel",
			frame: DisplayFrame{Panels: []RadioPanel{{Index: 2, Color: RGB(10, 20, 30)}}},
			want:  []byte{1, 2, 10, 20, 30},
		},
		{
			name: "pixels before panels",
			frame: DisplayFrame{
				Strip: []Color{RGB(1, 2, 3), RGB(4, 5, 6)},
				Panels: []RadioPanel{
					{Index: 0, Color: RGB(7, 8, 9)},
					{Index: 1, Color: RGB(10, 11, 12)},
				},
			},
			want: []byte{1, 1, 2, 3, 4, 5, 6, 0, 7, 8, 9, 1, 10, 11, 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeDisplay(tt.frame)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEncodeDisplayLength(t *testing.T) {
	for pixels := 0; pixels < 8; pixels++ {
		for panels := 0; panels < 5; panels++ {
			frame := DisplayFrame{
				Strip:  Solid(pixels, RGB(1, 1, 1)),
				Panels: make([]RadioPanel, panels),
			}
			got := len(EncodeDisplay(frame))
			want := 1 + 3*pixels + 4*panels
			if got != want {
				t.Errorf("pixels=%d panels=%d: expected %d bytes, got %d", pixels, panels, want, got)
			}
		}
	}
}

func TestEncodeDisplayDeterministic(t *testing.T) {
	frame := DisplayFrame{
		Strip:  []Color{RGB(9, 8, 7), RGB(6, 5, 4)},
		Panels: []RadioPanel{{Index: 3, Color: RGB(1, 2, 3)}},
	}
	first := EncodeDisplay(frame)
	second := EncodeDisplay(frame)
	if !bytes.Equal(first, second) {
		t.Errorf("Encoding is not deterministic: %v != %v", first, second)
	}
}

func TestEncodeDisplayTo(t *testing.T) {
	frame := DisplayFrame{
		Strip:  []Color{RGB(255, 0, 0)},
		Panels: []RadioPanel{{Index: 2, Color: RGB(10, 20, 30)}},
	}

	buf := make([]byte, 32)
	n, err := EncodeDisplayTo(buf, frame)
	if err != nil {
		t.Fatalf("EncodeDisplayTo failed: %v", err)
	}
	if n != DisplayFrameSize(1, 1) {
		t.Errorf("Expected %d bytes written, got %d", DisplayFrameSize(1, 1), n)
	}
	if !bytes.Equal(buf[:n], EncodeDisplay(frame)) {
		t.Errorf("EncodeDisplayTo and EncodeDisplay disagree: %v vs %v", buf[:n], EncodeDisplay(frame))
	}

	_, err = EncodeDisplayTo(make([]byte, 4), frame)
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(EncodePing()) != MessagePing {
		t.Error("Expected ping kind")
	}
	if KindOf(EncodeEnd()) != MessageEnd {
		t.Error("Expected end kind")
	}
	if KindOf(EncodeDisplay(DisplayFrame{})) != MessageDisplayFrame {
		t.Error("Expected display kind")
	}
	if KindOf(nil).String() != "unknown" {
		t.Errorf("Expected unknown kind for empty message, got %s", KindOf(nil))
	}
}

func BenchmarkEncodeDisplay(b *testing.B) {
	frame := DisplayFrame{
		Strip:  Solid(600, RGB(12, 34, 56)),
		Panels: make([]RadioPanel, 8),
	}
	buf := make([]byte, DisplayFrameSize(600, 8))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeDisplayTo(buf, frame); err != nil {
			b.Fatal(err)
		}
	}
}
