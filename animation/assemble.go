package animation

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/deepteams/stickerloop/motion"
	"github.com/deepteams/stickerloop/render"
)

// Renderer composites one frame. *render.Compositor implements it.
type Renderer interface {
	Render(src *image.NRGBA, tr motion.Transform, caption string, width, height int) *image.NRGBA
}

// Encoder turns an ordered frame sequence into container bytes. The output
// must start with the PNG signature, carry an acTL chunk with infinite plays,
// and keep frame order and per-frame delays. colors follows Job.Colors.
type Encoder interface {
	Encode(w io.Writer, frames []Frame, width, height, colors int) error
}

// EncoderFunc adapts a plain function to the Encoder interface.
type EncoderFunc func(w io.Writer, frames []Frame, width, height, colors int) error

// Encode calls f.
func (f EncoderFunc) Encode(w io.Writer, frames []Frame, width, height, colors int) error {
	return f(w, frames, width, height, colors)
}

// SampleTimes returns the synthetic clock of an export: i*FrameInterval for
// i in [0, job.FrameCount()).
func SampleTimes(job Job) []time.Duration {
	n := job.FrameCount()
	times := make([]time.Duration, n)
	for i := range times {
		times[i] = time.Duration(i) * FrameInterval
	}
	return times
}

// Sample renders every frame of the export in time order. r may be nil to
// use render.Default().
func Sample(src *image.NRGBA, spec Spec, job Job, r Renderer) ([]Frame, error) {
	if err := ValidateBitmap(src); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if job.Width <= 0 || job.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrCanvasSize, job.Width, job.Height)
	}
	times := SampleTimes(job)
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: duration %v is shorter than one %v frame", ErrNoFrames, job.Duration, FrameInterval)
	}
	if r == nil {
		r = render.Default()
	}

	frames := make([]Frame, len(times))
	for i, at := range times {
		tr := motion.TransformAt(spec.Kind, spec.Cycle, at)
		frames[i] = Frame{
			Image: r.Render(src, tr, spec.Caption, job.Width, job.Height),
			Delay: FrameInterval,
		}
	}
	return frames, nil
}

// Assemble samples the animation and encodes it with enc in a single call.
// The returned bytes still carry the encoder's default (infinite) play count;
// see mux.SetLoopCount.
func Assemble(src *image.NRGBA, spec Spec, job Job, enc Encoder) ([]byte, error) {
	return AssembleWith(src, spec, job, enc, nil)
}

// AssembleWith is Assemble with an explicit Renderer.
func AssembleWith(src *image.NRGBA, spec Spec, job Job, enc Encoder, r Renderer) ([]byte, error) {
	frames, err := Sample(src, spec, job, r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, frames, job.Width, job.Height, job.Colors); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
