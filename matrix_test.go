package scenic

import (
	"math"
	"testing"
)

func matrixNear(a, b Matrix, eps float64) bool {
	return math.Abs(a.A-b.A) <= eps &&
		math.Abs(a.B-b.B) <= eps &&
		math.Abs(a.C-b.C) <= eps &&
		math.Abs(a.D-b.D) <= eps &&
		math.Abs(a.E-b.E) <= eps &&
		math.Abs(a.F-b.F) <= eps
}

func pointNear(a, b Point, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		p    Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, 20), Pt(3, 4), Pt(13, 24)},
		{"scale", Scale(2, 3), Pt(3, 4), Pt(6, 12)},
		{"rotate 90", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"rotate 180", Rotate(math.Pi), Pt(1, 0), Pt(-1, 0)},
		{"scale then translate", Translate(10, 0).Mul(Scale(2, 2)), Pt(1, 1), Pt(12, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.p)
			if !pointNear(got, tt.want, 1e-12) {
				t.Errorf("TransformPoint(%+v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestMatrixMulOrder(t *testing.T) {
	// parent.Mul(local) must apply local first. A child translated by
	// (5, 0) inside a parent scaled 2x lands at x=10.
	parent := Scale(2, 2)
	local := Translate(5, 0)
	world := parent.Mul(local)

	got := world.TransformPoint(Pt(0, 0))
	want := Pt(10, 0)
	if !pointNear(got, want, 1e-12) {
		t.Errorf("world origin = %+v, want %+v", got, want)
	}
}

func TestMatrixTransformVectorIgnoresTranslation(t *testing.T) {
	m := Translate(100, 200).Mul(Scale(3, 3))
	got := m.TransformVector(Pt(1, 0))
	want := Pt(3, 0)
	if !pointNear(got, want, 1e-12) {
		t.Errorf("TransformVector = %+v, want %+v", got, want)
	}
}

func TestMatrixInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"identity", Identity()},
		{"translate", Translate(7, -3)},
		{"scale", Scale(2, 0.5)},
		{"rotate", Rotate(1.1)},
		{"composite", Translate(10, 20).Mul(Rotate(0.7)).Mul(Scale(3, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := tt.m.Invert()
			round := tt.m.Mul(inv)
			if !matrixNear(round, Identity(), 1e-9) {
				t.Errorf("m.Mul(m.Invert()) = %+v, want identity", round)
			}
		})
	}
}

func TestMatrixInvertDegenerate(t *testing.T) {
	// Zero-determinant matrices invert to the identity instead of
	// producing Inf/NaN.
	m := Scale(0, 5)
	if got := m.Invert(); !got.IsIdentity() {
		t.Errorf("Scale(0,5).Invert() = %+v, want identity", got)
	}
}

func TestMatrixIsIdentity(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want bool
	}{
		{"identity", Identity(), true},
		{"scale 1,1", Scale(1, 1), true},
		{"translate 0,0", Translate(0, 0), true},
		{"translate", Translate(1, 0), false},
		{"rotate", Rotate(0.1), false},
		{"zero matrix", Matrix{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsIdentity(); got != tt.want {
				t.Errorf("Matrix%+v.IsIdentity() = %v, want %v", tt.m, got, tt.want)
			}
		})
	}
}

func TestMatrixMaxScale(t *testing.T) {
	const epsilon = 1e-10

	tests := []struct {
		name string
		m    Matrix
		want float64
	}{
		{"identity", Identity(), 1.0},
		{"translation", Translate(10, 20), 1.0},
		{"uniform scale", Scale(2, 2), 2.0},
		{"non-uniform", Scale(3, 1), 3.0},
		{"negative", Scale(-4, 1), 4.0},
		{"rotation", Rotate(math.Pi / 3), 1.0},
		{"scale under rotation", Rotate(math.Pi / 4).Mul(Scale(2, 2)), 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.MaxScale()
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Matrix%+v.MaxScale() = %v, want %v", tt.m, got, tt.want)
			}
		})
	}
}
