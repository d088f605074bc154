package stickerloop

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deepteams/stickerloop/matte"
	"github.com/deepteams/stickerloop/motion"
)

// Preset selects an output canvas size.
type Preset int

const (
	PresetSticker Preset = iota // 320x270 sticker image
	PresetMain                  // 240x240 main (cover) image
)

var presetNames = [...]string{
	PresetSticker: "sticker",
	PresetMain:    "main",
}

// ErrUnknownPreset is returned by ParsePreset for an unrecognised name.
var ErrUnknownPreset = errors.New("stickerloop: unknown preset")

// Size returns the canvas size of the preset.
func (p Preset) Size() (width, height int) {
	switch p {
	case PresetMain:
		return 240, 240
	default:
		return 320, 270
	}
}

func (p Preset) String() string {
	if p >= 0 && int(p) < len(presetNames) {
		return presetNames[p]
	}
	return fmt.Sprintf("Preset(%d)", int(p))
}

// ParsePreset returns the preset with the given name (case-insensitive).
func ParsePreset(s string) (Preset, error) {
	for i, name := range presetNames {
		if strings.EqualFold(s, name) {
			return Preset(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// Recognised export values.
const (
	MaxLoopCount = 4
	MinDuration  = 1 * time.Second
	MaxDuration  = 4 * time.Second
	// DurationStep is the granularity of the total duration.
	DurationStep = time.Second
)

// Options controls one export.
type Options struct {
	// Preset selects the canvas size.
	Preset Preset

	// Kind is the procedural motion. motion.None is rejected with
	// ErrStaticExport.
	Kind motion.Kind

	// Cycle is the motion period (default 1s).
	Cycle time.Duration

	// Duration is the total animation length: 1s, 2s, 3s or 4s (default 4s).
	// It should be a whole number of cycles for a seamless loop.
	Duration time.Duration

	// LoopCount is the number of plays written into the file (0-4).
	// 0 means loop forever.
	LoopCount int

	// Colors caps the shared palette at this many entries (0 = full colour,
	// otherwise 2-256).
	Colors int

	// Caption is drawn under the sprite. Empty means no caption.
	Caption string

	// Threshold is the matte cleaning alpha threshold (1-255). 0 selects
	// matte.DefaultThreshold.
	Threshold int

	// Policy, if set, rejects exports whose play time it does not allow.
	Policy *Policy
}

// DefaultOptions returns options for an infinitely looping 4 second bounce
// on the sticker canvas.
func DefaultOptions() *Options {
	return &Options{
		Preset:   PresetSticker,
		Kind:     motion.Bounce,
		Cycle:    time.Second,
		Duration: MaxDuration,
	}
}

// threshold returns the effective matte threshold.
func (o *Options) threshold() uint8 {
	if o.Threshold <= 0 {
		return matte.DefaultThreshold
	}
	return uint8(o.Threshold)
}

// cycle returns the effective cycle length.
func (o *Options) cycle() time.Duration {
	if o.Cycle <= 0 {
		return time.Second
	}
	return o.Cycle
}

// validate checks opts against the recognised export values. Every error
// matches ErrInput.
func (o *Options) validate() error {
	if o == nil {
		return fmt.Errorf("%w: nil options", ErrInvalidJob)
	}
	if o.Kind == motion.None {
		return ErrStaticExport
	}
	if o.Kind < motion.None || o.Kind > motion.Swing {
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidJob, o.Kind)
	}
	if o.Preset != PresetSticker && o.Preset != PresetMain {
		return fmt.Errorf("%w: %v", ErrInvalidJob, o.Preset)
	}
	if o.Cycle < 0 {
		return fmt.Errorf("%w: negative cycle %v", ErrInvalidJob, o.Cycle)
	}
	if o.Duration < MinDuration || o.Duration > MaxDuration || o.Duration%DurationStep != 0 {
		return fmt.Errorf("%w: duration %v (must be 1s, 2s, 3s or 4s)", ErrInvalidJob, o.Duration)
	}
	if o.LoopCount < 0 || o.LoopCount > MaxLoopCount {
		return fmt.Errorf("%w: loop count %d (must be 0-%d)", ErrInvalidJob, o.LoopCount, MaxLoopCount)
	}
	if o.Colors < 0 || o.Colors > 256 {
		return fmt.Errorf("%w: colors %d (must be 0-256)", ErrInvalidJob, o.Colors)
	}
	if o.Threshold < 0 || o.Threshold > 255 {
		return fmt.Errorf("%w: threshold %d (must be 0-255)", ErrInvalidJob, o.Threshold)
	}
	if o.Policy != nil && !o.Policy.Compliant(o.LoopCount, o.cycle()) {
		return fmt.Errorf("%w: %d plays of %v is %v", ErrNonCompliant,
			o.LoopCount, o.cycle(), PlayDuration(o.LoopCount, o.cycle()))
	}
	return nil
}
