package tcellwin

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestSurfacePresentsHalfBlocks(t *testing.T) {
	fe, screen := newSimFrontend(t, 2, 1)
	s := fe.Surface()
	if err := s.Resize(2, 2); err != nil {
		t.Fatalf("resize: %v", err)
	}
	buf, err := s.BufferMut()
	if err != nil {
		t.Fatalf("buffer: %v", err)
	}
	copy(buf.Pixels(), []uint32{0xFF0000, 0x00FF00, 0x0000FF, 0xFFFFFF})
	if err := buf.Present(); err != nil {
		t.Fatalf("present: %v", err)
	}

	tests := []struct {
		x      int
		top    tcell.Color
		bottom tcell.Color
	}{
		{0, tcell.NewRGBColor(255, 0, 0), tcell.NewRGBColor(0, 0, 255)},
		{1, tcell.NewRGBColor(0, 255, 0), tcell.NewRGBColor(255, 255, 255)},
	}
	for _, tt := range tests {
		ch, _, style, _ := screen.GetContent(tt.x, 0)
		if ch != halfBlock {
			t.Fatalf("cell %d rune = %q", tt.x, ch)
		}
		fg, bg, _ := style.Decompose()
		if fg != tt.top || bg != tt.bottom {
			t.Fatalf("cell %d colours = %v/%v, want %v/%v", tt.x, fg, bg, tt.top, tt.bottom)
		}
	}
}

func TestSurfaceScalesToScreen(t *testing.T) {
	fe, screen := newSimFrontend(t, 4, 2)
	s := fe.Surface()
	_ = s.Resize(1, 1)
	buf, _ := s.BufferMut()
	buf.Pixels()[0] = 0x102030
	_ = buf.Present()

	want := tcell.NewRGBColor(0x10, 0x20, 0x30)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			_, _, style, _ := screen.GetContent(x, y)
			fg, bg, _ := style.Decompose()
			if fg != want || bg != want {
				t.Fatalf("cell %d,%d = %v/%v", x, y, fg, bg)
			}
		}
	}
}

func TestSurfaceRejectsInvalidUse(t *testing.T) {
	fe, _ := newSimFrontend(t, 2, 2)
	s := fe.Surface()
	if _, err := s.BufferMut(); err == nil {
		t.Fatalf("buffer before resize should fail")
	}
	if err := s.Resize(0, 4); err == nil {
		t.Fatalf("zero width should fail")
	}
	_ = s.Resize(1, 1)
	s.Release()
	if _, err := s.BufferMut(); err == nil {
		t.Fatalf("buffer after release should fail")
	}
	if err := s.Resize(2, 2); err == nil {
		t.Fatalf("resize after release should fail")
	}
}
