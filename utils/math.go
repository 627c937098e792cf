// Package utils contains small math and concurrency helpers shared by the mechanisms.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// AngleDiffDeg returns the closest difference from the two given
// angles. The arguments are commutative.
func AngleDiffDeg(a1, a2 float64) float64 {
	return float64(180) - math.Abs(math.Abs(a1-a2)-float64(180))
}

// ModAngDeg wraps an angle in degrees into [0, 360).
func ModAngDeg(ang float64) float64 {
	wrapped := math.Mod(math.Mod(ang, 360)+360, 360)
	// math.Mod(-1e-18+360, 360) rounds to 360.
	if wrapped >= 360 {
		return 0
	}
	return wrapped
}

// SignedAngleDeg wraps an angle in degrees into [-180, 180).
func SignedAngleDeg(ang float64) float64 {
	return ModAngDeg(ang+180) - 180
}

// Clamp bounds value to [lo, hi]. NaN passes through unchanged.
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Square is faster than math.Pow(n, 2).
func Square(n float64) float64 {
	return n * n
}

// SignedSquare squares n while keeping its sign.
func SignedSquare(n float64) float64 {
	return math.Copysign(n*n, n)
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// ApplyDeadband zeroes values within deadband of zero and rescales the remainder so that the
// output still spans [-1, 1] for inputs in [-1, 1].
func ApplyDeadband(value, deadband float64) float64 {
	if deadband <= 0 {
		return value
	}
	if math.Abs(value) <= deadband {
		return 0
	}
	if deadband >= 1 {
		return 0
	}
	return math.Copysign((math.Abs(value)-deadband)/(1-deadband), value)
}
