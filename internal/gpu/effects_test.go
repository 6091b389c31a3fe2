package gpu

import (
	"math"
	"testing"
)

func TestGaussianHalfKernelNormalized(t *testing.T) {
	for _, sigma := range []float64{0.5, 1, 2.5, 4, 10, 20} {
		weights := gaussianHalfKernel(sigma)
		// The full symmetric kernel counts weight 0 once and every other
		// weight twice.
		sum := float64(weights[0])
		for _, w := range weights[1:] {
			sum += 2 * float64(w)
		}
		if math.Abs(sum-1.0) > 1e-5 {
			t.Errorf("sigma %v: kernel sums to %v, want 1", sigma, sum)
		}
	}
}

func TestGaussianHalfKernelWidth(t *testing.T) {
	tests := []struct {
		sigma   float64
		wantLen int
	}{
		{1, 4},    // ceil(3) + center
		{2, 7},    // ceil(6) + center
		{2.5, 9},  // ceil(7.5) + center
		{20, 32},  // clamped to blurMaxHalfSize + center
		{100, 32}, // clamped
	}
	for _, tt := range tests {
		weights := gaussianHalfKernel(tt.sigma)
		if len(weights) != tt.wantLen {
			t.Errorf("sigma %v: len = %d, want %d", tt.sigma, len(weights), tt.wantLen)
		}
	}
}

func TestGaussianHalfKernelIdentity(t *testing.T) {
	for _, sigma := range []float64{0, -1} {
		weights := gaussianHalfKernel(sigma)
		if len(weights) != 1 || weights[0] != 1.0 {
			t.Errorf("sigma %v: got %v, want identity kernel [1]", sigma, weights)
		}
	}
}

func TestGaussianHalfKernelMonotonic(t *testing.T) {
	weights := gaussianHalfKernel(3)
	for i := 1; i < len(weights); i++ {
		if weights[i] > weights[i-1] {
			t.Fatalf("weights rise at tap %d: %v > %v", i, weights[i], weights[i-1])
		}
	}
}

func TestBlurPadding(t *testing.T) {
	if got := blurPadding(0); got != 0 {
		t.Errorf("blurPadding(0) = %v, want 0", got)
	}
	if got := blurPadding(-2); got != 0 {
		t.Errorf("blurPadding(-2) = %v, want 0", got)
	}
	if got := blurPadding(2); got != 6 {
		t.Errorf("blurPadding(2) = %v, want 6", got)
	}
	if got := blurPadding(2.5); got != 8 {
		t.Errorf("blurPadding(2.5) = %v, want 8", got)
	}
}

func TestPackBlurUniform(t *testing.T) {
	weights := gaussianHalfKernel(2)
	buf := packBlurUniform(200, 100, true, false, weights)
	if len(buf) != blurUniformSize {
		t.Fatalf("len = %d, want %d", len(buf), blurUniformSize)
	}

	if got := f32At(t, buf, 0); got != 200 {
		t.Errorf("width = %v, want 200", got)
	}
	if got := f32At(t, buf, 8); got != 1.0/200 {
		t.Errorf("texel width = %v, want %v", got, 1.0/200)
	}
	if got := u32At(t, buf, 16); got != uint32(len(weights)-1) {
		t.Errorf("half size = %d, want %d", got, len(weights)-1)
	}
	if got := u32At(t, buf, 20); got != 0 {
		t.Errorf("invert = %d, want 0", got)
	}
	// Horizontal pass steps along x only.
	if got := f32At(t, buf, 32); got != 1 {
		t.Errorf("step.x = %v, want 1", got)
	}
	if got := f32At(t, buf, 36); got != 0 {
		t.Errorf("step.y = %v, want 0", got)
	}
	for i, w := range weights {
		if got := f32At(t, buf, 48+i*4); got != w {
			t.Errorf("weight[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestPackBlurUniformVerticalInvert(t *testing.T) {
	buf := packBlurUniform(100, 100, false, true, []float32{1})
	if got := u32At(t, buf, 20); got != 1 {
		t.Errorf("invert = %d, want 1", got)
	}
	if got := f32At(t, buf, 32); got != 0 {
		t.Errorf("step.x = %v, want 0", got)
	}
	if got := f32At(t, buf, 36); got != 1 {
		t.Errorf("step.y = %v, want 1", got)
	}
}

func TestPackBlurUniformClampsOversizedKernel(t *testing.T) {
	weights := make([]float32, blurMaxHalfSize+10)
	buf := packBlurUniform(100, 100, true, false, weights)
	if got := u32At(t, buf, 16); got != blurMaxHalfSize {
		t.Errorf("half size = %d, want %d", got, blurMaxHalfSize)
	}
}
