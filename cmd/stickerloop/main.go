// Command stickerloop turns a photo into a looping APNG sticker.
//
// Usage:
//
//	stickerloop export [options] <input>   photo → animated PNG (use "-" for stdin)
//	stickerloop preview [options] <input>  redraw the animation into a PNG file until interrupted
//	stickerloop info <input.png>           list chunks, frames and loop count
//	stickerloop check -loop N -cycle D     check a loop/cycle pair against the LINE play-time rule
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/deepteams/stickerloop"
	"github.com/deepteams/stickerloop/animation"
	"github.com/deepteams/stickerloop/apngenc"
	"github.com/deepteams/stickerloop/matte"
	"github.com/deepteams/stickerloop/motion"
	"github.com/deepteams/stickerloop/mux"
)

// errNonCompliant makes check exit non-zero without printing an extra line.
var errNonCompliant = errors.New("not compliant")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:], os.Stdout, os.Stderr)
	case "preview":
		err = runPreview(os.Args[2:], os.Stderr)
	case "info":
		err = runInfo(os.Args[2:], os.Stdout)
	case "check":
		err = runCheck(os.Args[2:], os.Stdout)
	case "-h", "-help", "--help", "help":
		printUsage(os.Stderr)
		return
	default:
		fmt.Fprintf(os.Stderr, "stickerloop: unknown command %q\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(1)
	}

	switch {
	case err == nil:
	case errors.Is(err, errNonCompliant):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "stickerloop: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  stickerloop export [options] <input>   Export an animated PNG sticker
  stickerloop preview [options] <input>  Live preview into a PNG file
  stickerloop info <input.png>           Show APNG chunks and timing
  stickerloop check -loop N -cycle D     Check LINE play-time compliance

Use "-" as input to read from stdin, "-o -" to write to stdout.

Run "stickerloop <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "stickerloop",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// animationFlags registers the flags shared by export and preview.
type animationFlags struct {
	preset    *string
	kind      *string
	cycle     *time.Duration
	caption   *string
	threshold *int
	key       *int
}

func addAnimationFlags(fs *flag.FlagSet) *animationFlags {
	return &animationFlags{
		preset:    fs.String("preset", "sticker", "canvas: sticker (320x270) or main (240x240)"),
		kind:      fs.String("kind", "bounce", "motion: "+kindList()),
		cycle:     fs.Duration("cycle", time.Second, "motion period"),
		caption:   fs.String("caption", "", "caption drawn under the sprite"),
		threshold: fs.Int("threshold", matte.DefaultThreshold, "matte cleaning alpha threshold 1-255 (0=default)"),
		key:       fs.Int("key", -1, "remove a flat background within this RGB tolerance (-1=use the image's alpha)"),
	}
}

func (f *animationFlags) extractor() matte.Extractor {
	if *f.key < 0 {
		return matte.AlphaExtractor{}
	}
	return matte.KeyExtractor{Tolerance: uint8(min(*f.key, 255))}
}

// cleanThreshold mirrors Options.Threshold: 0 selects the default.
func (f *animationFlags) cleanThreshold() (uint8, error) {
	switch t := *f.threshold; {
	case t == 0:
		return matte.DefaultThreshold, nil
	case t < 0 || t > 255:
		return 0, fmt.Errorf("threshold %d out of range 0-255", t)
	default:
		return uint8(t), nil
	}
}

func kindList() string {
	names := make([]string, 0, len(motion.Kinds()))
	for _, k := range motion.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, "/")
}

// --- export ---

func runExport(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	af := addAnimationFlags(fs)
	duration := fs.Duration("duration", 4*time.Second, "total length: 1s, 2s, 3s or 4s")
	loop := fs.Int("loop", 0, "plays 0-4 (0=infinite)")
	colors := fs.Int("colors", 0, "palette size 2-256 (0=full colour)")
	samples := fs.Int("palette-samples", 0, "frames sampled to build the palette (0=all)")
	line := fs.Bool("line", false, "reject loop/cycle pairs LINE does not allow")
	output := fs.String("o", "", `output path (default: sticker_<kind>_<time>.png, "-" for stdout)`)
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("export: missing input file\nUsage: stickerloop export [options] <input>")
	}
	inputPath := fs.Arg(0)

	preset, err := stickerloop.ParsePreset(*af.preset)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	kind, err := motion.ParseKind(*af.kind)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	opts := stickerloop.DefaultOptions()
	opts.Preset = preset
	opts.Kind = kind
	opts.Cycle = *af.cycle
	opts.Duration = *duration
	opts.LoopCount = *loop
	opts.Colors = *colors
	opts.Caption = *af.caption
	opts.Threshold = *af.threshold
	if *line {
		opts.Policy = &stickerloop.LINEPolicy
	}

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	if *samples < 0 {
		return fmt.Errorf("export: palette-samples %d must not be negative", *samples)
	}

	e := &stickerloop.Exporter{
		Extractor: af.extractor(),
		Encoder:   &apngenc.Encoder{Samples: *samples},
		Logger:    newLogger(stderr, *verbose),
	}
	res, err := e.ExportReader(context.Background(), in, opts)
	if err != nil {
		if errors.Is(err, stickerloop.ErrInput) {
			return fmt.Errorf("export: %w", err)
		}
		// Collaborator failures are not actionable for the user.
		e.Logger.Debug("export failed", "err", err)
		return errors.New("export: could not create the sticker")
	}

	if *output == "-" {
		_, err := stdout.Write(res.Data)
		return err
	}
	outputPath := *output
	if outputPath == "" {
		outputPath = res.FileName
	}
	if err := os.WriteFile(outputPath, res.Data, 0o644); err != nil {
		os.Remove(outputPath)
		return err
	}
	fmt.Fprintf(stderr, "Exported %s → %s (%d frames, %d bytes, loop %s)\n",
		inputPath, outputPath, res.Frames, len(res.Data), loopString(res.LoopCount))
	return nil
}

func loopString(n int) string {
	if n == 0 {
		return "infinite"
	}
	return fmt.Sprintf("%d", n)
}

// --- preview ---

func runPreview(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	af := addAnimationFlags(fs)
	interval := fs.Duration("interval", animation.FrameInterval, "redraw period")
	stopAfter := fs.Duration("for", 0, "stop after this long (0=until interrupted)")
	output := fs.String("o", "preview.png", "PNG file rewritten on every frame")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("preview: missing input file\nUsage: stickerloop preview [options] <input>")
	}
	logger := newLogger(stderr, *verbose)

	preset, err := stickerloop.ParsePreset(*af.preset)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	kind, err := motion.ParseKind(*af.kind)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	threshold, err := af.cleanThreshold()
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	in, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("preview: reading input: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *stopAfter > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *stopAfter)
		defer cancel()
	}

	fg, err := af.extractor().Extract(ctx, data)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := animation.ValidateBitmap(fg); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	src := matte.CleanThreshold(fg, threshold)

	w, h := preset.Size()
	spec := animation.Spec{Kind: kind, Cycle: *af.cycle, Caption: *af.caption}
	opts := animation.PreviewOptions{Width: w, Height: h, Interval: *interval}

	logger.Info("previewing", "kind", kind, "file", *output)
	var frames int
	err = animation.Preview(ctx, src, spec, opts, func(img *image.NRGBA, at time.Duration) {
		frames++
		if err := writePNG(*output, img); err != nil {
			logger.Warn("writing preview frame", "err", err)
			return
		}
		logger.Debug("frame", "elapsed", at)
	})
	logger.Info("preview stopped", "frames", frames)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// writePNG replaces path atomically so viewers never see a partial frame.
func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// --- info ---

func runInfo(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: stickerloop info <input.png>")
	}
	inputPath := args[0]

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	d, err := mux.NewDemuxer(data)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}
	feat := d.GetFeatures()

	fmt.Fprintf(stdout, "File:       %s\n", name)
	fmt.Fprintf(stdout, "Dimensions: %d x %d\n", feat.Width, feat.Height)
	fmt.Fprintf(stdout, "Palette:    %v\n", feat.HasPalette)
	fmt.Fprintf(stdout, "Animation:  %v\n", feat.HasAnimation)
	if feat.HasAnimation {
		fmt.Fprintf(stdout, "Frames:     %d (acTL says %d)\n", d.NumFrames(), feat.NumFrames)
		fmt.Fprintf(stdout, "Loop count: %s\n", loopString(d.LoopCount()))
		fmt.Fprintf(stdout, "Duration:   %v\n", d.TotalDuration())
	}
	fmt.Fprintf(stdout, "File size:  %d bytes\n", len(data))
	fmt.Fprintf(stdout, "Chunks:\n")
	for _, c := range d.Chunks() {
		crc := "ok"
		if !c.VerifyCRC() {
			crc = "BAD CRC"
		}
		class := "ancillary"
		if c.Critical() {
			class = "critical"
		}
		fmt.Fprintf(stdout, "  %8d  %s  %-9s  %7d  %s\n", c.Offset, c.Name(), class, c.Size, crc)
	}
	if err := d.TruncationErr(); err != nil {
		fmt.Fprintf(stdout, "Warning:    %v\n", err)
	}
	return nil
}

// --- check ---

func runCheck(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	loop := fs.Int("loop", 0, "plays (0=infinite)")
	cycle := fs.Duration("cycle", time.Second, "motion period")
	if err := fs.Parse(args); err != nil {
		return err
	}

	total := stickerloop.PlayDuration(*loop, *cycle)
	if stickerloop.LINEPolicy.Compliant(*loop, *cycle) {
		color.New(color.FgGreen, color.Bold).Fprint(stdout, "compliant")
		fmt.Fprintf(stdout, "  loop=%s cycle=%v play=%v\n", loopString(*loop), *cycle, total)
		return nil
	}
	color.New(color.FgRed, color.Bold).Fprint(stdout, "not compliant")
	fmt.Fprintf(stdout, "  loop=%d cycle=%v play=%v (limit %v in steps of %v)\n",
		*loop, *cycle, total, stickerloop.LINEPolicy.MaxPlay, stickerloop.LINEPolicy.Granularity)
	return errNonCompliant
}
