package gpu

import "math"

// gaussianHalfKernel computes the center-plus-positive-side weights of a
// 1D Gaussian with the given sigma. Weights cover three standard
// deviations, clamped to the shader's capacity, and are normalized so the
// full symmetric kernel sums to one: weight 0 once plus every other
// weight twice.
//
// Sigma values at or below zero produce the identity kernel.
func gaussianHalfKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1.0}
	}
	halfSize := int(math.Ceil(sigma * 3))
	if halfSize > blurMaxHalfSize {
		halfSize = blurMaxHalfSize
	}
	weights := make([]float32, halfSize+1)
	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := 0; i <= halfSize; i++ {
		x := float64(i)
		val := math.Exp(-(x * x) / twoSigmaSq)
		weights[i] = float32(val)
		if i == 0 {
			sum += val
		} else {
			sum += 2 * val
		}
	}
	inv := float32(1.0 / sum)
	for i := range weights {
		weights[i] *= inv
	}
	return weights
}

// blurPadding is the spatial reach of a Gaussian blur: geometry bounds
// grow by this much in every direction before compositing.
func blurPadding(sigma float64) float32 {
	if sigma <= 0 {
		return 0
	}
	return float32(math.Ceil(sigma * 3))
}

// packBlurUniform lays out the blur shader's uniform block for one pass.
// horizontal selects the axis; invert flips coverage for inner shadows
// and belongs on the final pass only.
func packBlurUniform(width, height uint32, horizontal, invert bool, weights []float32) []byte {
	buf := make([]byte, blurUniformSize)
	putF32(buf, 0, float32(width))
	putF32(buf, 4, float32(height))
	putF32(buf, 8, 1/float32(width))
	putF32(buf, 12, 1/float32(height))

	halfSize := len(weights) - 1
	if halfSize < 0 {
		halfSize = 0
	}
	if halfSize > blurMaxHalfSize {
		halfSize = blurMaxHalfSize
		weights = weights[:blurMaxHalfSize+1]
	}
	putU32(buf, 16, uint32(halfSize))
	if invert {
		putU32(buf, 20, 1)
	}
	if horizontal {
		putF32(buf, 32, 1)
	} else {
		putF32(buf, 36, 1)
	}
	for i, w := range weights {
		putF32(buf, 48+i*4, w)
	}
	return buf
}
