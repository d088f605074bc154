// Package animation samples a procedural sticker animation into an ordered
// frame sequence and hands it to a multi-frame encoder.
//
// Export and live preview are two drivers of the same pure pair,
// motion.TransformAt and render.Compositor.Render: Assemble walks a synthetic
// clock at a fixed frame rate and keeps every frame, while Preview follows the
// wall clock until cancelled and keeps nothing.
package animation

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/deepteams/stickerloop/motion"
)

// FPS is the fixed export sample rate.
const FPS = 8

// FrameInterval is the time between two exported samples (125ms).
const FrameInterval = time.Second / FPS

var (
	ErrNilSource   = errors.New("animation: source bitmap is nil")
	ErrBadBitmap   = errors.New("animation: malformed bitmap")
	ErrNoFrames    = errors.New("animation: export has no frames")
	ErrCanvasSize  = errors.New("animation: invalid canvas dimensions")
	ErrInvalidSpec = errors.New("animation: invalid animation spec")
	ErrEncode      = errors.New("animation: encoding failed")
)

// Spec describes what to animate.
type Spec struct {
	// Kind selects the procedural motion.
	Kind motion.Kind

	// Cycle is the period after which the motion repeats. Must be > 0.
	Cycle time.Duration

	// Caption is drawn under the sprite. Empty means no caption.
	Caption string
}

// Validate reports whether s can be sampled.
func (s Spec) Validate() error {
	if s.Cycle <= 0 {
		return fmt.Errorf("%w: cycle %v must be positive", ErrInvalidSpec, s.Cycle)
	}
	if s.Kind < motion.None || s.Kind > motion.Swing {
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidSpec, s.Kind)
	}
	return nil
}

// Job describes one export: canvas, length, looping and colour budget.
type Job struct {
	// Width and Height are the output canvas size in pixels.
	Width, Height int

	// Duration is the total animation length. It should be a multiple of the
	// Spec.Cycle for a seamless loop.
	Duration time.Duration

	// LoopCount is the number of plays written into the container.
	// 0 means infinite looping.
	LoopCount int

	// Colors is the colour quantization hint passed to the encoder.
	// 0 keeps full colour; N > 0 caps the palette at N entries.
	Colors int
}

// FrameCount returns floor(Duration / FrameInterval).
func (j Job) FrameCount() int {
	if j.Duration <= 0 {
		return 0
	}
	return int(j.Duration / FrameInterval)
}

// Seamless reports whether Duration is a whole number of cycles.
func (j Job) Seamless(cycle time.Duration) bool {
	return cycle > 0 && j.Duration > 0 && j.Duration%cycle == 0
}

// Frame is one rendered sample and its display time.
type Frame struct {
	Image *image.NRGBA
	Delay time.Duration
}

// ValidateBitmap checks that img is a tightly packed NRGBA bitmap:
// origin at (0,0), Stride == 4*width and len(Pix) == Stride*height.
func ValidateBitmap(img *image.NRGBA) error {
	if img == nil {
		return ErrNilSource
	}
	r := img.Rect
	w, h := r.Dx(), r.Dy()
	switch {
	case r.Min != (image.Point{}):
		return fmt.Errorf("%w: origin %v, want (0,0)", ErrBadBitmap, r.Min)
	case w <= 0 || h <= 0:
		return fmt.Errorf("%w: empty bounds %v", ErrBadBitmap, r)
	case img.Stride != 4*w:
		return fmt.Errorf("%w: stride %d, want %d", ErrBadBitmap, img.Stride, 4*w)
	case len(img.Pix) != 4*w*h:
		return fmt.Errorf("%w: %d pixel bytes, want %d", ErrBadBitmap, len(img.Pix), 4*w*h)
	}
	return nil
}
