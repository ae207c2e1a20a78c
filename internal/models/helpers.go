package models

import "math"

// Clamp01 bounds v to [0,1]. NaN collapses to 0 so a bad upstream ratio
// can never poison downstream state.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampReward bounds a reward to [-1, 1].
func ClampReward(v float64) float64 {
	return Clamp(v, -1, 1)
}
