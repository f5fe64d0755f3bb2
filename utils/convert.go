// SPDX-License-Identifier: EPL-2.0

package utils

// Float64ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float64ToInt16(x float64) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * 32767.0)
}

// ClampUnit limits v to [0, 1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}

	return v
}
