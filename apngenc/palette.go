package apngenc

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"

	"github.com/deepteams/stickerloop/animation"
)

// BuildPalette computes one palette for the whole animation with a median-cut
// over every visible pixel of the sampled frames. Index 0 is always fully
// transparent. samples limits how many evenly spaced frames are inspected
// (0 = all).
func BuildPalette(frames []animation.Frame, colors, samples int) color.Palette {
	colors = min(max(colors, 2), MaxColors)

	composite := visiblePixels(sampleFrames(frames, samples))
	pal := color.Palette{color.NRGBA{}}
	if composite == nil {
		return pal
	}
	q := quantize.MedianCutQuantizer{}
	for _, c := range q.Quantize(make(color.Palette, 0, colors-1), composite) {
		if len(pal) >= colors {
			break
		}
		pal = append(pal, c)
	}
	return pal
}

// ToPaletted maps img onto pal with nearest-colour lookup.
func ToPaletted(img *image.NRGBA, pal color.Palette) *image.Paletted {
	dst := image.NewPaletted(img.Bounds(), pal)
	draw.Draw(dst, dst.Rect, img, img.Rect.Min, draw.Src)
	return dst
}

func sampleFrames(frames []animation.Frame, n int) []animation.Frame {
	if n <= 0 || n >= len(frames) {
		return frames
	}
	out := make([]animation.Frame, n)
	for i := range out {
		out[i] = frames[i*len(frames)/n]
	}
	return out
}

// visiblePixels packs every pixel with non-zero alpha into a single-row
// image, so transparent background does not pull the palette towards black.
// Returns nil if nothing is visible.
func visiblePixels(frames []animation.Frame) *image.NRGBA {
	var pix []uint8
	for _, f := range frames {
		img := f.Image
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
			for x := 0; x < len(row); x += 4 {
				if row[x+3] != 0 {
					pix = append(pix, row[x:x+4]...)
				}
			}
		}
	}
	n := len(pix) / 4
	if n == 0 {
		return nil
	}
	return &image.NRGBA{Pix: pix, Stride: len(pix), Rect: image.Rect(0, 0, n, 1)}
}
