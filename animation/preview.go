package animation

import (
	"context"
	"image"
	"time"

	"github.com/deepteams/stickerloop/motion"
	"github.com/deepteams/stickerloop/render"
)

// PreviewOptions configures Preview.
type PreviewOptions struct {
	// Width and Height are the preview canvas size.
	Width, Height int

	// Interval is the redraw period. Defaults to FrameInterval.
	Interval time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Renderer composites frames. Defaults to render.Default().
	Renderer Renderer
}

// Preview renders the animation against the wall clock and passes every
// frame to fn with the elapsed time it was sampled at, until ctx is done.
// The first frame is drawn immediately. Frames are not retained; fn must
// copy the image if it needs it after returning. Preview returns ctx.Err().
func Preview(ctx context.Context, src *image.NRGBA, spec Spec, opts PreviewOptions, fn func(*image.NRGBA, time.Duration)) error {
	if err := ValidateBitmap(src); err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return ErrCanvasSize
	}
	if opts.Interval <= 0 {
		opts.Interval = FrameInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Renderer == nil {
		opts.Renderer = render.Default()
	}

	start := opts.Now()
	draw := func() {
		elapsed := opts.Now().Sub(start)
		tr := motion.TransformAt(spec.Kind, spec.Cycle, elapsed)
		fn(opts.Renderer.Render(src, tr, spec.Caption, opts.Width, opts.Height), elapsed)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			draw()
		}
	}
}
