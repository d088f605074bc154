// Package apngenc encodes animation frames as an animated PNG.
//
// Frames are written full-canvas at offset (0,0) with BLEND_OP_SOURCE, so a
// transparent pixel in frame i+1 clears what frame i left there. The acTL
// play count is always 0 (infinite); finite looping is applied afterwards by
// mux.SetLoopCount.
package apngenc

import (
	"compress/zlib"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/kettek/apng"

	"github.com/deepteams/stickerloop/animation"
)

// DelayDenominator is the fcTL delay denominator: delays are stored in
// milliseconds.
const DelayDenominator = 1000

// MaxColors is the largest palette a PNG can carry.
const MaxColors = 256

var (
	ErrNoFrames   = errors.New("apngenc: no frames")
	ErrFrameSize  = errors.New("apngenc: frame size does not match canvas")
	ErrDelayRange = errors.New("apngenc: frame delay out of range")
)

// Encoder implements animation.Encoder. The zero value is ready to use and
// compresses with zlib's default level.
type Encoder struct {
	// CompressionLevel is passed to zlib.NewWriterLevel. 0 selects
	// zlib.DefaultCompression.
	CompressionLevel int

	// Uncompressed disables deflate compression entirely.
	Uncompressed bool

	// Samples caps how many frames feed the palette composite when
	// quantizing. 0 uses every frame.
	Samples int
}

var _ animation.Encoder = (*Encoder)(nil)

// Encode writes frames as an APNG to w. colors == 0 keeps full-colour NRGBA
// frames; otherwise one palette of at most colors entries (clamped to
// [2, 256], index 0 transparent) is shared by every frame.
func (e *Encoder) Encode(w io.Writer, frames []animation.Frame, width, height, colors int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	canvas := image.Rect(0, 0, width, height)
	for i, f := range frames {
		if f.Image == nil || f.Image.Bounds() != canvas {
			return fmt.Errorf("%w: frame %d", ErrFrameSize, i)
		}
		if f.Delay < 0 || f.Delay > time.Duration(1<<16-1)*time.Millisecond {
			return fmt.Errorf("%w: frame %d delay %v", ErrDelayRange, i, f.Delay)
		}
	}

	images := make([]image.Image, len(frames))
	if colors > 0 {
		pal := BuildPalette(frames, colors, e.Samples)
		for i, f := range frames {
			images[i] = ToPaletted(f.Image, pal)
		}
	} else {
		for i, f := range frames {
			images[i] = f.Image
		}
	}

	a := apng.APNG{Frames: make([]apng.Frame, len(frames))}
	for i, f := range frames {
		a.Frames[i].Image = images[i]
		a.Frames[i].DelayNumerator = uint16(f.Delay / time.Millisecond)
		a.Frames[i].DelayDenominator = DelayDenominator
		a.Frames[i].DisposeOp = apng.DISPOSE_OP_NONE
		a.Frames[i].BlendOp = apng.BLEND_OP_SOURCE
	}

	enc := apng.Encoder{CompressionWriter: e.compressionWriter()}
	if err := enc.Encode(w, a); err != nil {
		return fmt.Errorf("apngenc: %w", err)
	}
	return nil
}

func (e *Encoder) compressionWriter() func(io.Writer) (apng.CompressionWriter, error) {
	level := e.CompressionLevel
	switch {
	case e.Uncompressed:
		level = zlib.NoCompression
	case level == 0:
		level = zlib.DefaultCompression
	}
	return func(w io.Writer) (apng.CompressionWriter, error) {
		return zlib.NewWriterLevel(w, level)
	}
}
