package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Caption metrics at the 320px reference width; both scale linearly with
// the canvas width.
const (
	ReferenceWidth = 320
	CaptionSize    = 36.0 // pixels
	OutlineWidth   = 6.0  // pixels

	// CaptionDrop is how far below the sprite centre the baseline sits, as a
	// fraction of the fitted sprite height after the motion scale.
	CaptionDrop = 0.4
)

var (
	outlineColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
	fillColor    = color.RGBA{0x22, 0x22, 0x22, 0xff}
)

// maxCachedMasks bounds the caption mask cache; it is flushed when full.
const maxCachedMasks = 16

type maskKey struct {
	text string
	size float64
}

// captionMask is a rasterized caption. Its bounds are relative to the pen
// position at the start of the baseline.
type captionMask struct {
	alpha   *image.Alpha
	advance fixed.Int26_6
	ascent  int
	descent int
}

// drawCaption draws text centred on x with its baseline at y, clamped so the
// outlined glyphs stay inside the canvas vertically.
func (c *Compositor) drawCaption(dst *image.RGBA, text string, x, y float64) {
	w := dst.Bounds().Dx()
	size := CaptionSize * float64(w) / ReferenceWidth
	outline := int(math.Round(OutlineWidth * float64(w) / ReferenceWidth))

	m := c.mask(text, size)
	if m == nil {
		return
	}

	h := dst.Bounds().Dy()
	lo := float64(m.ascent + outline)
	hi := float64(h - m.descent - outline)
	if hi >= lo {
		y = math.Max(lo, math.Min(y, hi))
	}

	pen := image.Pt(
		int(math.Round(x-float64(m.advance)/128)),
		int(math.Round(y)),
	)
	white := image.NewUniform(outlineColor)
	r2 := outline * outline
	for dy := -outline; dy <= outline; dy++ {
		for dx := -outline; dx <= outline; dx++ {
			if dx*dx+dy*dy > r2 || (dx == 0 && dy == 0) {
				continue
			}
			stamp(dst, m.alpha, pen.Add(image.Pt(dx, dy)), white)
		}
	}
	stamp(dst, m.alpha, pen, image.NewUniform(fillColor))
}

// stamp composites src through mask with the mask's origin at pen.
func stamp(dst *image.RGBA, mask *image.Alpha, pen image.Point, src image.Image) {
	r := mask.Bounds().Add(pen)
	draw.DrawMask(dst, r, src, image.Point{}, mask, mask.Bounds().Min, draw.Over)
}

// mask returns the cached glyph mask for text at size, rasterizing it on
// first use. It returns nil for text with no visible glyphs.
func (c *Compositor) mask(text string, size float64) *captionMask {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := maskKey{text, size}
	if m, ok := c.masks[key]; ok {
		return m
	}

	face, err := c.face(size)
	if err != nil {
		return nil
	}
	bounds, advance := font.BoundString(face, text)
	r := image.Rect(
		bounds.Min.X.Floor(), bounds.Min.Y.Floor(),
		bounds.Max.X.Ceil(), bounds.Max.Y.Ceil(),
	)
	if r.Empty() {
		return nil
	}

	alpha := image.NewAlpha(r)
	d := &font.Drawer{Dst: alpha, Src: image.Opaque, Face: face}
	d.DrawString(text)

	metrics := face.Metrics()
	m := &captionMask{
		alpha:   alpha,
		advance: advance,
		ascent:  metrics.Ascent.Ceil(),
		descent: metrics.Descent.Ceil(),
	}
	if len(c.masks) >= maxCachedMasks {
		clear(c.masks)
	}
	c.masks[key] = m
	return m
}

// face returns the cached face for size. c.mu must be held.
func (c *Compositor) face(size float64) (font.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	c.faces[size] = f
	return f, nil
}
