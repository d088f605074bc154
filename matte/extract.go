package matte

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrExtraction wraps every failure reported by an Extractor.
var ErrExtraction = errors.New("matte: foreground extraction failed")

// Extractor separates the foreground subject of an encoded image from its
// background and returns it as an NRGBA bitmap whose alpha channel is the
// matte.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*image.NRGBA, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface. It is the
// hook for wiring an external segmentation model.
type ExtractorFunc func(ctx context.Context, data []byte) (*image.NRGBA, error)

// Extract calls f(ctx, data).
func (f ExtractorFunc) Extract(ctx context.Context, data []byte) (*image.NRGBA, error) {
	return f(ctx, data)
}

// AlphaExtractor decodes the image and trusts its existing alpha channel.
// Use it for sources that were already cut out by another tool.
type AlphaExtractor struct{}

// Extract implements Extractor.
func (AlphaExtractor) Extract(ctx context.Context, data []byte) (*image.NRGBA, error) {
	return decode(ctx, data)
}

// KeyExtractor removes a flat background. The key colour is sampled from the
// top-left pixel; every pixel whose RGB channels are all within Tolerance of
// it becomes fully transparent.
type KeyExtractor struct {
	Tolerance uint8
}

// Extract implements Extractor.
func (k KeyExtractor) Extract(ctx context.Context, data []byte) (*image.NRGBA, error) {
	img, err := decode(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(img.Pix) < 4 {
		return img, nil
	}

	key := [3]uint8{img.Pix[0], img.Pix[1], img.Pix[2]}
	for i := 0; i < len(img.Pix); i += 4 {
		if within(img.Pix[i], key[0], k.Tolerance) &&
			within(img.Pix[i+1], key[1], k.Tolerance) &&
			within(img.Pix[i+2], key[2], k.Tolerance) {
			img.Pix[i+3] = 0
		}
	}
	return img, nil
}

func within(v, ref, tol uint8) bool {
	if v > ref {
		return v-ref <= tol
	}
	return ref-v <= tol
}

// decode decodes PNG/JPEG/GIF bytes with EXIF orientation applied and
// returns a tightly packed NRGBA copy.
func decode(ctx context.Context, data []byte) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return imaging.Clone(img), nil
}
