package stickerloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/deepteams/stickerloop/animation"
	"github.com/deepteams/stickerloop/apngenc"
	"github.com/deepteams/stickerloop/matte"
	"github.com/deepteams/stickerloop/motion"
	"github.com/deepteams/stickerloop/mux"
)

// ContentType is the MIME type of every export.
const ContentType = "image/png"

// Errors returned by the Exporter. ErrStaticExport, ErrInvalidJob and
// ErrNonCompliant all match ErrInput, as do the animation package's input
// errors when they surface through Export.
var (
	ErrInput        = errors.New("stickerloop: invalid input")
	ErrStaticExport = fmt.Errorf("%w: static export (kind none) is not an animation", ErrInput)
	ErrInvalidJob   = fmt.Errorf("%w: invalid export options", ErrInput)
	ErrNonCompliant = fmt.Errorf("%w: play time not allowed by policy", ErrInvalidJob)
)

// FileName returns the output name for an export of kind made at t:
// sticker_<kind>_<YYYYMMDD-HHMMSS>.png.
func FileName(kind motion.Kind, t time.Time) string {
	return "sticker_" + kind.String() + "_" + t.Format("20060102-150405") + ".png"
}

// Result is a finished export.
type Result struct {
	JobID       string
	Data        []byte
	FileName    string
	ContentType string

	Width, Height int
	Frames        int

	// LoopCount is the play count actually stored in the file; it is 0 when
	// patching was skipped or failed.
	LoopCount int

	// Patch describes the loop-count patch.
	Patch mux.PatchReport

	// PlayDuration is LoopCount x cycle, or 0 for infinite looping.
	PlayDuration time.Duration
}

// Exporter runs the sticker pipeline. The zero value is ready to use.
type Exporter struct {
	// Extractor isolates the foreground. nil decodes the input and keeps its
	// alpha channel (matte.AlphaExtractor).
	Extractor matte.Extractor

	// Encoder writes the frames. nil uses apngenc.Encoder.
	Encoder animation.Encoder

	// Renderer composites frames. nil uses render.Default().
	Renderer animation.Renderer

	// Logger receives progress and warnings. nil discards them.
	Logger *log.Logger

	// Now stamps the output file name. nil uses time.Now.
	Now func() time.Time
}

// Export runs the full pipeline on an encoded photo.
func (e *Exporter) Export(ctx context.Context, data []byte, opts *Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ext := e.Extractor
	if ext == nil {
		ext = matte.AlphaExtractor{}
	}
	src, err := ext.Extract(ctx, data)
	if err != nil {
		if !errors.Is(err, matte.ErrExtraction) {
			err = fmt.Errorf("%w: %w", matte.ErrExtraction, err)
		}
		return nil, err
	}
	return e.run(ctx, src, opts)
}

// ExportReader reads the photo from r and calls Export.
func (e *Exporter) ExportReader(ctx context.Context, r io.Reader, opts *Options) (*Result, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("stickerloop: reading input: %w", err)
	}
	return e.Export(ctx, data, opts)
}

// ExportImage runs the pipeline on an already extracted foreground. The
// matte is still cleaned; img is not modified.
func (e *Exporter) ExportImage(ctx context.Context, img *image.NRGBA, opts *Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return e.run(ctx, img, opts)
}

func (e *Exporter) run(ctx context.Context, src *image.NRGBA, opts *Options) (*Result, error) {
	id := uuid.NewString()
	logger := e.logger().With("job", id, "kind", opts.Kind)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Extractor output is untrusted.
	if err := animation.ValidateBitmap(src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	// Clean exactly once per export; frames reuse the cleaned bitmap.
	clean := matte.CleanThreshold(src, opts.threshold())
	logger.Debug("matte cleaned", "width", clean.Rect.Dx(), "height", clean.Rect.Dy())

	width, height := opts.Preset.Size()
	spec := animation.Spec{Kind: opts.Kind, Cycle: opts.cycle(), Caption: opts.Caption}
	job := animation.Job{
		Width:     width,
		Height:    height,
		Duration:  opts.Duration,
		LoopCount: opts.LoopCount,
		Colors:    opts.Colors,
	}
	if !job.Seamless(spec.Cycle) {
		logger.Warn("duration is not a whole number of cycles; the loop will jump",
			"duration", job.Duration, "cycle", spec.Cycle)
	}

	enc := e.Encoder
	if enc == nil {
		enc = &apngenc.Encoder{}
	}
	data, err := animation.AssembleWith(clean, spec, job, enc, e.Renderer)
	if err != nil {
		if isInputError(err) {
			err = fmt.Errorf("%w: %w", ErrInput, err)
		}
		return nil, err
	}
	logger.Debug("frames encoded", "frames", job.FrameCount(), "bytes", len(data))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		JobID:       id,
		ContentType: ContentType,
		Width:       width,
		Height:      height,
		Frames:      job.FrameCount(),
	}
	patched, report, err := mux.SetLoopCount(data, opts.LoopCount)
	res.Patch = report
	switch {
	case err != nil:
		logger.Warn("loop count not applied; keeping infinite loop", "loop", opts.LoopCount, "err", err)
		patched = data
	case report.Anomaly():
		logger.Warn("no acTL chunk patched; output loops forever", "loop", opts.LoopCount)
	case report.Patched:
		res.LoopCount = opts.LoopCount
		logger.Debug("loop count patched", "loop", opts.LoopCount, "offset", report.Offset)
	}
	res.Data = patched
	res.PlayDuration = PlayDuration(res.LoopCount, spec.Cycle)

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	res.FileName = FileName(opts.Kind, now())
	logger.Info("export done", "bytes", len(res.Data), "frames", res.Frames, "loop", res.LoopCount)
	return res, nil
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.New(io.Discard)
}

func isInputError(err error) bool {
	for _, target := range []error{
		animation.ErrNilSource,
		animation.ErrBadBitmap,
		animation.ErrNoFrames,
		animation.ErrInvalidSpec,
		animation.ErrCanvasSize,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		if n := lr.Len(); n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}
