package motion

import (
	"math"
	"testing"
	"time"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestTransformAt_NoneIsIdentity(t *testing.T) {
	for _, cycle := range []time.Duration{0, time.Millisecond, time.Second, 1500 * time.Millisecond} {
		for _, at := range []time.Duration{0, 1, 125 * time.Millisecond, 3 * time.Second, -7 * time.Millisecond} {
			if tr := TransformAt(None, cycle, at); !tr.IsIdentity() {
				t.Fatalf("TransformAt(none, %v, %v) = %+v, want identity", cycle, at, tr)
			}
		}
	}
}

func TestTransformAt_NonPositiveCycle(t *testing.T) {
	for _, k := range Kinds() {
		if tr := TransformAt(k, 0, time.Second); !tr.IsIdentity() {
			t.Errorf("%v with zero cycle = %+v, want identity", k, tr)
		}
		if tr := TransformAt(k, -time.Second, time.Second); !tr.IsIdentity() {
			t.Errorf("%v with negative cycle = %+v, want identity", k, tr)
		}
	}
}

func TestTransformAt_Periodic(t *testing.T) {
	cycles := []time.Duration{time.Second, 1500 * time.Millisecond, 777 * time.Millisecond}
	for _, k := range Kinds() {
		for _, d := range cycles {
			for i := 0; i < 40; i++ {
				at := time.Duration(i) * 37 * time.Millisecond
				a := TransformAt(k, d, at)
				b := TransformAt(k, d, at+d)
				c := TransformAt(k, d, at+5*d)
				if a != b || a != c {
					t.Fatalf("%v cycle %v at %v: %+v vs %+v vs %+v", k, d, at, a, b, c)
				}
			}
		}
	}
}

func TestTransformAt_NegativeWraps(t *testing.T) {
	d := time.Second
	for _, k := range Kinds() {
		a := TransformAt(k, d, -250*time.Millisecond)
		b := TransformAt(k, d, 750*time.Millisecond)
		if a != b {
			t.Errorf("%v: t=-250ms %+v != t=750ms %+v", k, a, b)
		}
	}
}

func TestTransformAt_Deterministic(t *testing.T) {
	for _, k := range Kinds() {
		a := TransformAt(k, 1234*time.Millisecond, 321*time.Millisecond)
		b := TransformAt(k, 1234*time.Millisecond, 321*time.Millisecond)
		if a != b {
			t.Errorf("%v: repeated calls differ: %+v vs %+v", k, a, b)
		}
	}
}

func TestTransformAt_Values(t *testing.T) {
	d := time.Second
	tests := []struct {
		kind Kind
		at   time.Duration
		want Transform
	}{
		// Bounce peaks an eighth of the way through (sin(2θ) with θ=π/4).
		{Bounce, 125 * time.Millisecond, Transform{DY: 20, Scale: 1, PivotX: 0.5, PivotY: 0.5}},
		{Bounce, 375 * time.Millisecond, Transform{DY: -20, Scale: 1, PivotX: 0.5, PivotY: 0.5}},
		// Shake peaks a sixteenth of the way through.
		{Shake, 62500 * time.Microsecond, Transform{DX: 10, Scale: 1, PivotX: 0.5, PivotY: 0.5}},
		{Pulse, 250 * time.Millisecond, Transform{Scale: 1.1, PivotX: 0.5, PivotY: 0.5}},
		{Pulse, 750 * time.Millisecond, Transform{Scale: 0.9, PivotX: 0.5, PivotY: 0.5}},
		{Swing, 250 * time.Millisecond, Transform{Scale: 1, Rotation: 0.2, PivotX: 0.5, PivotY: 1}},
		{Swing, 0, Transform{Scale: 1, PivotX: 0.5, PivotY: 1}},
	}
	for _, tt := range tests {
		got := TransformAt(tt.kind, d, tt.at)
		if !near(got.DX, tt.want.DX) || !near(got.DY, tt.want.DY) ||
			!near(got.Scale, tt.want.Scale) || !near(got.Rotation, tt.want.Rotation) ||
			got.PivotX != tt.want.PivotX || got.PivotY != tt.want.PivotY {
			t.Errorf("TransformAt(%v, %v, %v) = %+v, want %+v", tt.kind, d, tt.at, got, tt.want)
		}
	}
}

func TestTransformAt_HalfCycleSymmetry(t *testing.T) {
	d := time.Second
	// Quarter-cycle offsets avoid the zero crossings so the sign flip is
	// visible; t and t+D/2 mirror each other through the rest pose for the
	// odd-harmonic pulse. Bounce and shake (even harmonics) are both at rest
	// at t=0 and t=D/2.
	for _, k := range []Kind{Bounce, Shake, Pulse} {
		a := TransformAt(k, d, 0)
		b := TransformAt(k, d, d/2)
		if !near(a.DX, -b.DX) || !near(a.DY, -b.DY) || !near(a.Scale-1, -(b.Scale-1)) {
			t.Errorf("%v: t=0 %+v and t=D/2 %+v are not point-symmetric", k, a, b)
		}
	}
	p1 := TransformAt(Pulse, d, 100*time.Millisecond)
	p2 := TransformAt(Pulse, d, 600*time.Millisecond)
	if !near(p1.Scale-1, -(p2.Scale-1)) {
		t.Errorf("pulse: %v vs %v not mirrored", p1.Scale, p2.Scale)
	}
}

func TestMatrix_IdentityCentres(t *testing.T) {
	m := Identity().Matrix(100, 50, 2, 160, 135)
	x, y := Apply(m, 50, 25)
	if !near(x, 160) || !near(y, 135) {
		t.Fatalf("sprite centre maps to (%v,%v), want (160,135)", x, y)
	}
	x, y = Apply(m, 0, 0)
	if !near(x, 60) || !near(y, 85) {
		t.Fatalf("sprite origin maps to (%v,%v), want (60,85)", x, y)
	}
}

func TestMatrix_Translation(t *testing.T) {
	tr := Identity()
	tr.DX, tr.DY = 7, -3
	x, y := Apply(tr.Matrix(10, 10, 1, 20, 20), 5, 5)
	if !near(x, 27) || !near(y, 17) {
		t.Fatalf("centre maps to (%v,%v), want (27,17)", x, y)
	}
}

func TestMatrix_SwingPivotFixed(t *testing.T) {
	tr := TransformAt(Swing, time.Second, 250*time.Millisecond)
	m := tr.Matrix(40, 80, 1.5, 100, 100)
	// The bottom-centre of the sprite is the pivot and must not move.
	x, y := Apply(m, 20, 80)
	if !near(x, 100) || !near(y, 160) {
		t.Fatalf("pivot maps to (%v,%v), want (100,160)", x, y)
	}
	// The top-centre swings sideways.
	x, _ = Apply(m, 20, 0)
	if near(x, 100) {
		t.Fatal("top-centre did not move under swing")
	}
}

func TestMatrix_PulseScalesAboutCentre(t *testing.T) {
	tr := Identity()
	tr.Scale = 2
	m := tr.Matrix(10, 10, 1, 50, 50)
	x, y := Apply(m, 10, 10)
	if !near(x, 60) || !near(y, 60) {
		t.Fatalf("corner maps to (%v,%v), want (60,60)", x, y)
	}
}
