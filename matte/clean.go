// Package matte post-processes foreground bitmaps produced by background
// removal. Clean erases translucent noise and erodes the one-pixel fringe
// that light-coloured halos leave around a matted subject.
package matte

import (
	"image"

	"github.com/deepteams/stickerloop/internal/pool"
)

// DefaultThreshold is the alpha level below which a pixel counts as
// transparent noise.
const DefaultThreshold = 60

// Clean applies CleanThreshold with DefaultThreshold.
func Clean(src *image.NRGBA) *image.NRGBA {
	return CleanThreshold(src, DefaultThreshold)
}

// CleanThreshold returns a copy of src where every pixel with alpha below
// threshold, and every pixel with an in-bounds 4-neighbour whose alpha is
// below threshold, is made fully transparent. Colour channels are copied
// unchanged and alpha values never increase.
//
// Neighbour tests read a snapshot of the original alpha channel, so a single
// call erodes exactly one ring regardless of scan order. Neighbours outside
// the image are ignored rather than treated as transparent.
func CleanThreshold(src *image.NRGBA, threshold uint8) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	// Copy pixels row by row (src may be a sub-image with a wider stride)
	// while taking the alpha snapshot.
	alpha := pool.Get(w * h)
	defer pool.Put(alpha)
	for y := 0; y < h; y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := y * dst.Stride
		copy(dst.Pix[do:do+w*4], src.Pix[so:so+w*4])
		for x := 0; x < w; x++ {
			alpha[y*w+x] = src.Pix[so+x*4+3]
		}
	}

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			if alpha[row+x] >= threshold && !nearTransparent(alpha, w, h, x, y, threshold) {
				continue
			}
			dst.Pix[y*dst.Stride+x*4+3] = 0
		}
	}
	return dst
}

// nearTransparent reports whether any in-bounds 4-neighbour of (x, y) has an
// alpha below threshold.
func nearTransparent(alpha []byte, w, h, x, y int, threshold uint8) bool {
	i := y*w + x
	return (x > 0 && alpha[i-1] < threshold) ||
		(x < w-1 && alpha[i+1] < threshold) ||
		(y > 0 && alpha[i-w] < threshold) ||
		(y < h-1 && alpha[i+w] < threshold)
}
