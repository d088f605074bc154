// Package render composites one sticker frame: it places the cleaned sprite
// on a transparent canvas under a motion.Transform and draws the optional
// caption. Rendering carries no state between frames; every call builds its
// canvas from scratch.
package render

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"

	"github.com/deepteams/stickerloop/internal/pool"
	"github.com/deepteams/stickerloop/motion"
)

// FitFraction is the share of the shorter canvas side the sprite occupies at
// rest.
const FitFraction = 0.8

// Compositor renders frames. It caches caption faces and glyph masks, and is
// safe for concurrent use.
type Compositor struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
	masks map[maskKey]*captionMask
}

// NewCompositor returns a Compositor using the bundled Go Bold typeface.
func NewCompositor() (*Compositor, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	return &Compositor{
		font:  f,
		faces: make(map[float64]font.Face),
		masks: make(map[maskKey]*captionMask),
	}, nil
}

var defaultCompositor = sync.OnceValue(func() *Compositor {
	c, err := NewCompositor()
	if err != nil {
		// gobold.TTF is compiled in; failing to parse it is a build defect.
		panic("render: parsing bundled font: " + err.Error())
	}
	return c
})

// Default returns the shared package-level Compositor.
func Default() *Compositor {
	return defaultCompositor()
}

// RenderFrame renders one frame with the default Compositor.
func RenderFrame(src *image.NRGBA, tr motion.Transform, caption string, width, height int) *image.NRGBA {
	return Default().Render(src, tr, caption, width, height)
}

// FitScale returns the uniform scale that makes a srcW x srcH sprite occupy
// at most FitFraction of the shorter side of a width x height canvas. A sprite
// with a zero or negative dimension has no fit.
func FitScale(srcW, srcH, width, height int) float64 {
	if srcW <= 0 || srcH <= 0 {
		return 0
	}
	return FitFraction * float64(min(width, height)) / float64(max(srcW, srcH))
}

// Render composites src onto a transparent width x height canvas under tr and
// draws caption beneath the sprite midpoint. The caption follows the sprite's
// translation and its scaled height, so a pulsing sprite carries the caption
// with it. An empty caption draws nothing.
// The result always has bounds (0,0)-(width,height); a non-positive canvas
// size yields an empty image.
func (c *Compositor) Render(src *image.NRGBA, tr motion.Transform, caption string, width, height int) *image.NRGBA {
	if width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}

	buf := pool.GetZeroed(width * height * 4)
	defer pool.Put(buf)
	canvas := &image.RGBA{Pix: buf, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}

	var sb image.Rectangle
	if src != nil {
		sb = src.Bounds()
	}
	fit := FitScale(sb.Dx(), sb.Dy(), width, height)
	cx, cy := float64(width)/2, float64(height)/2

	if !sb.Empty() && fit > 0 && tr.Scale > 0 {
		m := tr.Matrix(float64(sb.Dx()), float64(sb.Dy()), fit, cx, cy)
		draw.BiLinear.Transform(canvas, fromOrigin(m, sb.Min), src, sb, draw.Over, nil)
	}

	if caption != "" {
		baseline := cy + tr.DY + CaptionDrop*fit*tr.Scale*float64(sb.Dy())
		c.drawCaption(canvas, caption, cx+tr.DX, baseline)
	}

	return toNRGBA(canvas)
}

// fromOrigin adjusts a matrix expressed in sprite-local coordinates to accept
// absolute source coordinates of an image whose bounds start at origin.
func fromOrigin(m f64.Aff3, origin image.Point) f64.Aff3 {
	if origin == (image.Point{}) {
		return m
	}
	x, y := float64(origin.X), float64(origin.Y)
	m[2] -= m[0]*x + m[1]*y
	m[5] -= m[3]*x + m[4]*y
	return m
}

// toNRGBA converts a premultiplied canvas into a freshly allocated
// non-premultiplied bitmap.
func toNRGBA(src *image.RGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	for i := 0; i < len(src.Pix); i += 4 {
		a := src.Pix[i+3]
		switch a {
		case 0:
			// Leave as transparent black.
		case 0xff:
			copy(dst.Pix[i:i+4], src.Pix[i:i+4])
		default:
			dst.Pix[i+0] = unpremul(src.Pix[i+0], a)
			dst.Pix[i+1] = unpremul(src.Pix[i+1], a)
			dst.Pix[i+2] = unpremul(src.Pix[i+2], a)
			dst.Pix[i+3] = a
		}
	}
	return dst
}

func unpremul(c, a uint8) uint8 {
	v := (uint32(c)*0xff + uint32(a)/2) / uint32(a)
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}
