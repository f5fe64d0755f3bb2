// SPDX-License-Identifier: EPL-2.0

// Package utils holds small numeric helpers shared by the audio graph and the codecs.
package utils

// CubicInterpolate evaluates a Catmull-Rom spline through four consecutive
// samples. x is the fractional position between y1 and y2 (0 <= x <= 1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}

// Lerp blends a and b linearly; frac 0 yields a, frac 1 yields b.
func Lerp(a, b, frac float64) float64 {
	if frac == 0 {
		return a
	}

	return a + (b-a)*frac
}
