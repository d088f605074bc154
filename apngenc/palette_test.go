package apngenc

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/deepteams/stickerloop/animation"
)

func TestBuildPalette_TransparentFirst(t *testing.T) {
	frames := []animation.Frame{spriteFrame(8, 8, color.NRGBA{255, 0, 0, 255})}
	pal := BuildPalette(frames, 16, 0)
	if len(pal) < 2 {
		t.Fatalf("palette has %d entries, want >= 2", len(pal))
	}
	if _, _, _, a := pal[0].RGBA(); a != 0 {
		t.Errorf("palette[0] alpha = %d, want 0", a)
	}
}

func TestBuildPalette_Clamp(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(i), uint8(i>>4), uint8(i>>8), 255
	}
	frames := []animation.Frame{{Image: img}}

	tests := []struct {
		colors, max int
	}{
		{1, 2},
		{2, 2},
		{8, 8},
		{1000, MaxColors},
	}
	for _, tt := range tests {
		if n := len(BuildPalette(frames, tt.colors, 0)); n > tt.max {
			t.Errorf("BuildPalette(colors=%d) has %d entries, want <= %d", tt.colors, n, tt.max)
		}
	}
}

func TestBuildPalette_AllTransparent(t *testing.T) {
	frames := []animation.Frame{{Image: image.NewNRGBA(image.Rect(0, 0, 4, 4))}}
	pal := BuildPalette(frames, 8, 0)
	if len(pal) != 1 {
		t.Fatalf("palette has %d entries, want 1", len(pal))
	}
}

func TestToPaletted_MapsTransparency(t *testing.T) {
	f := spriteFrame(8, 8, color.NRGBA{0, 128, 0, 255})
	pal := BuildPalette([]animation.Frame{f}, 4, 0)
	p := ToPaletted(f.Image, pal)
	if p.ColorIndexAt(0, 0) != 0 {
		t.Errorf("transparent pixel index = %d, want 0", p.ColorIndexAt(0, 0))
	}
	if p.ColorIndexAt(4, 4) == 0 {
		t.Error("opaque pixel mapped to the transparent entry")
	}
}

func TestSampleFrames(t *testing.T) {
	frames := make([]animation.Frame, 10)
	for i := range frames {
		frames[i].Delay = animation.FrameInterval * time.Duration(i)
	}
	if got := sampleFrames(frames, 0); len(got) != 10 {
		t.Errorf("samples=0: %d frames, want 10", len(got))
	}
	got := sampleFrames(frames, 3)
	if len(got) != 3 {
		t.Fatalf("samples=3: %d frames, want 3", len(got))
	}
	if got[0].Delay != 0 {
		t.Errorf("first sample is not frame 0")
	}
}
