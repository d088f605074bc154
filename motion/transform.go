// Package motion computes the per-sample transform of a procedural sticker
// animation. TransformAt is a pure function of (kind, cycle, elapsed): the
// live preview and the export sampler call it with different clocks and get
// identical poses for identical times.
package motion

import (
	"math"
	"time"

	"golang.org/x/image/math/f64"
)

// Amplitudes of the built-in animations.
const (
	BounceAmplitude = 20.0 // pixels
	ShakeAmplitude  = 10.0 // pixels
	PulseAmplitude  = 0.1  // fraction of the fitted size
	SwingAmplitude  = 0.2  // radians
)

// Transform is the pose of the sprite at one instant. The zero value is not
// the identity (Scale would be 0); use Identity.
type Transform struct {
	DX, DY   float64 // translation in canvas pixels
	Scale    float64 // uniform scale applied on top of the fit scale
	Rotation float64 // radians, clockwise in image space (y down)

	// PivotX and PivotY locate the rotation pivot in sprite-normalized
	// coordinates: (0.5, 0.5) is the sprite centre, (0.5, 1) its bottom edge.
	PivotX, PivotY float64
}

// Identity returns the rest pose: no offset, unit scale, no rotation,
// centred pivot.
func Identity() Transform {
	return Transform{Scale: 1, PivotX: 0.5, PivotY: 0.5}
}

// IsIdentity reports whether t is exactly the rest pose.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// TransformAt returns the pose of an animation of the given kind, cycle
// length and elapsed time. Elapsed is reduced modulo cycle, so the result is
// periodic in cycle; negative times wrap forward. A non-positive cycle or a
// non-animated kind yields Identity.
func TransformAt(kind Kind, cycle, elapsed time.Duration) Transform {
	tr := Identity()
	if cycle <= 0 || !kind.Animated() {
		return tr
	}

	phase := elapsed % cycle
	if phase < 0 {
		phase += cycle
	}
	theta := float64(phase) / float64(cycle) * 2 * math.Pi

	switch kind {
	case Bounce:
		tr.DY = BounceAmplitude * math.Sin(2*theta)
	case Shake:
		tr.DX = ShakeAmplitude * math.Sin(4*theta)
	case Pulse:
		tr.Scale = 1 + PulseAmplitude*math.Sin(theta)
	case Swing:
		tr.Rotation = SwingAmplitude * math.Sin(theta)
		tr.PivotX, tr.PivotY = 0.5, 1
	}
	return tr
}

// Matrix returns the source-to-canvas affine matrix that places a sprite of
// size (srcW, srcH), scaled by fit*t.Scale, centred at (cx+t.DX, cy+t.DY)
// and rotated about the pivot. It composes, right to left:
//
//	T(centre) · T(pivot) · R(rotation) · T(-pivot) · S(k) · T(-srcW/2, -srcH/2)
func (t Transform) Matrix(srcW, srcH, fit, cx, cy float64) f64.Aff3 {
	k := fit * t.Scale

	// Pivot relative to the sprite centre, in canvas pixels.
	px := (t.PivotX - 0.5) * srcW * k
	py := (t.PivotY - 0.5) * srcH * k

	m := translate(-srcW/2, -srcH/2)
	m = mul(scale(k), m)
	m = mul(translate(-px, -py), m)
	m = mul(rotate(t.Rotation), m)
	m = mul(translate(px, py), m)
	m = mul(translate(cx+t.DX, cy+t.DY), m)
	return m
}

func translate(x, y float64) f64.Aff3 {
	return f64.Aff3{1, 0, x, 0, 1, y}
}

func scale(k float64) f64.Aff3 {
	return f64.Aff3{k, 0, 0, 0, k, 0}
}

func rotate(theta float64) f64.Aff3 {
	s, c := math.Sincos(theta)
	return f64.Aff3{c, -s, 0, s, c, 0}
}

// mul returns p·q (apply q first).
func mul(p, q f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		p[0]*q[0] + p[1]*q[3],
		p[0]*q[1] + p[1]*q[4],
		p[0]*q[2] + p[1]*q[5] + p[2],
		p[3]*q[0] + p[4]*q[3],
		p[3]*q[1] + p[4]*q[4],
		p[3]*q[2] + p[4]*q[5] + p[5],
	}
}

// Apply maps the point (x, y) through m.
func Apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
