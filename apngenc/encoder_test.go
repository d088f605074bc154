package apngenc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/deepteams/stickerloop/animation"
	"github.com/deepteams/stickerloop/mux"
)

func solidFrame(w, h int, c color.NRGBA, delay time.Duration) animation.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return animation.Frame{Image: img, Delay: delay}
}

// spriteFrame is transparent with an opaque square of c in the middle.
func spriteFrame(w, h int, c color.NRGBA) animation.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := h / 4; y < 3*h/4; y++ {
		for x := w / 4; x < 3*w/4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return animation.Frame{Image: img, Delay: animation.FrameInterval}
}

func encode(t *testing.T, frames []animation.Frame, w, h, colors int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := (&Encoder{}).Encode(&buf, frames, w, h, colors); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func TestEncode_Container(t *testing.T) {
	frames := []animation.Frame{
		solidFrame(16, 8, color.NRGBA{255, 0, 0, 255}, 125*time.Millisecond),
		solidFrame(16, 8, color.NRGBA{0, 255, 0, 255}, 125*time.Millisecond),
		solidFrame(16, 8, color.NRGBA{0, 0, 255, 255}, 250*time.Millisecond),
	}
	data := encode(t, frames, 16, 8, 0)

	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("output does not start with the PNG signature")
	}
	d, err := mux.NewDemuxer(data)
	if err != nil {
		t.Fatalf("NewDemuxer: %v", err)
	}
	f := d.GetFeatures()
	if f.Width != 16 || f.Height != 8 {
		t.Errorf("size = %dx%d, want 16x8", f.Width, f.Height)
	}
	if !f.HasAnimation || f.NumFrames != 3 {
		t.Fatalf("features = %+v, want 3-frame animation", f)
	}
	if f.NumPlays != 0 {
		t.Errorf("NumPlays = %d, want 0 (infinite)", f.NumPlays)
	}
	want := []time.Duration{125 * time.Millisecond, 125 * time.Millisecond, 250 * time.Millisecond}
	got := d.Delays()
	if len(got) != len(want) {
		t.Fatalf("got %d delays, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, got[i], want[i])
		}
	}
	for i := 0; i < d.NumFrames(); i++ {
		fr, _ := d.Frame(i)
		if fr.DelayDen != DelayDenominator {
			t.Errorf("frame %d delay_den = %d, want %d", i, fr.DelayDen, DelayDenominator)
		}
	}
	if bad := d.BadCRCs(); len(bad) != 0 {
		t.Errorf("%d chunks with bad CRC", len(bad))
	}
}

func TestEncode_DefaultImageDecodes(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	frames := []animation.Frame{
		solidFrame(4, 4, red, animation.FrameInterval),
		solidFrame(4, 4, color.NRGBA{0, 0, 255, 255}, animation.FrameInterval),
	}
	data := encode(t, frames, 4, 4, 0)

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds = %v, want 4x4", img.Bounds())
	}
	got := color.NRGBAModel.Convert(img.At(2, 2)).(color.NRGBA)
	if got != red {
		t.Errorf("pixel = %v, want %v (first frame is the default image)", got, red)
	}
}

func TestEncode_Paletted(t *testing.T) {
	frames := []animation.Frame{
		spriteFrame(16, 16, color.NRGBA{255, 0, 0, 255}),
		spriteFrame(16, 16, color.NRGBA{0, 0, 255, 255}),
	}
	data := encode(t, frames, 16, 16, 4)

	d, err := mux.NewDemuxer(data)
	if err != nil {
		t.Fatalf("NewDemuxer: %v", err)
	}
	if !d.GetFeatures().HasPalette {
		t.Fatal("no PLTE chunk in quantized output")
	}
	plte, _ := d.GetChunk(mux.FourCCPLTE)
	if n := len(plte) / 3; n > 4 {
		t.Errorf("palette has %d entries, want <= 4", n)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if _, a := rgba8(img.At(0, 0)); a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if c, a := rgba8(img.At(8, 8)); a != 255 || c[0] < 200 {
		t.Errorf("centre = %v/%d, want opaque red", c, a)
	}
}

func TestEncode_PaletteSamples(t *testing.T) {
	frames := []animation.Frame{
		spriteFrame(16, 16, color.NRGBA{255, 0, 0, 255}),
		spriteFrame(16, 16, color.NRGBA{0, 0, 255, 255}),
	}
	hasBlue := func(enc *Encoder) bool {
		var buf bytes.Buffer
		if err := enc.Encode(&buf, frames, 16, 16, 4); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		d, err := mux.NewDemuxer(buf.Bytes())
		if err != nil {
			t.Fatalf("NewDemuxer: %v", err)
		}
		plte, err := d.GetChunk(mux.FourCCPLTE)
		if err != nil {
			t.Fatalf("GetChunk(PLTE): %v", err)
		}
		for i := 0; i+2 < len(plte); i += 3 {
			if plte[i] < 50 && plte[i+2] > 200 {
				return true
			}
		}
		return false
	}
	if !hasBlue(&Encoder{}) {
		t.Error("palette from every frame has no blue entry")
	}
	if hasBlue(&Encoder{Samples: 1}) {
		t.Error("palette sampled from the first frame only has a blue entry")
	}
}

func rgba8(c color.Color) ([3]uint8, uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [3]uint8{n.R, n.G, n.B}, n.A
}

func TestEncode_Uncompressed(t *testing.T) {
	frames := []animation.Frame{solidFrame(32, 32, color.NRGBA{10, 20, 30, 255}, animation.FrameInterval)}
	var small, large bytes.Buffer
	if err := (&Encoder{}).Encode(&small, frames, 32, 32, 0); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := (&Encoder{Uncompressed: true}).Encode(&large, frames, 32, 32, 0); err != nil {
		t.Fatalf("Encode(uncompressed): %v", err)
	}
	if large.Len() <= small.Len() {
		t.Errorf("uncompressed %d bytes, compressed %d; want uncompressed larger", large.Len(), small.Len())
	}
}

func TestEncode_Errors(t *testing.T) {
	ok := solidFrame(4, 4, color.NRGBA{A: 255}, animation.FrameInterval)
	tests := []struct {
		name   string
		frames []animation.Frame
		want   error
	}{
		{"no frames", nil, ErrNoFrames},
		{"nil image", []animation.Frame{{Delay: animation.FrameInterval}}, ErrFrameSize},
		{"wrong size", []animation.Frame{solidFrame(5, 4, color.NRGBA{}, animation.FrameInterval)}, ErrFrameSize},
		{"negative delay", []animation.Frame{{Image: ok.Image, Delay: -time.Millisecond}}, ErrDelayRange},
		{"delay too long", []animation.Frame{{Image: ok.Image, Delay: 70 * time.Second}}, ErrDelayRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := (&Encoder{}).Encode(&buf, tt.frames, 4, 4, 0)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncode_LoopCountPatchable(t *testing.T) {
	frames := []animation.Frame{
		spriteFrame(8, 8, color.NRGBA{255, 255, 0, 255}),
		spriteFrame(8, 8, color.NRGBA{0, 255, 255, 255}),
	}
	data := encode(t, frames, 8, 8, 0)
	out, rep, err := mux.SetLoopCount(data, 3)
	if err != nil {
		t.Fatalf("SetLoopCount: %v", err)
	}
	if !rep.Patched {
		t.Fatalf("report = %+v, want patched", rep)
	}
	d, err := mux.NewDemuxer(out)
	if err != nil {
		t.Fatalf("NewDemuxer: %v", err)
	}
	if d.LoopCount() != 3 {
		t.Errorf("LoopCount = %d, want 3", d.LoopCount())
	}
}
