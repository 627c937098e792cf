package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngles(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, AngleDiffDeg(350, 10), test.ShouldAlmostEqual, 20)

	for _, tc := range []struct{ in, mod, signed float64 }{
		{0, 0, 0},
		{360, 0, 0},
		{-90, 270, -90},
		{725, 5, 5},
		{190, 190, -170},
		{-1e-18, 0, 0},
	} {
		test.That(t, ModAngDeg(tc.in), test.ShouldAlmostEqual, tc.mod)
		test.That(t, SignedAngleDeg(tc.in), test.ShouldAlmostEqual, tc.signed)
		test.That(t, ModAngDeg(tc.in), test.ShouldBeLessThan, 360)
	}
}

func TestClampAndShaping(t *testing.T) {
	test.That(t, Clamp(2, -1, 1), test.ShouldEqual, 1)
	test.That(t, Clamp(-7, -1, 1), test.ShouldEqual, -1)
	test.That(t, Clamp(0.3, -1, 1), test.ShouldEqual, 0.3)
	test.That(t, math.IsNaN(Clamp(math.NaN(), -1, 1)), test.ShouldBeTrue)

	test.That(t, SignedSquare(-0.5), test.ShouldEqual, -0.25)
	test.That(t, SignedSquare(0.5), test.ShouldEqual, 0.25)

	test.That(t, ApplyDeadband(0.05, 0.1), test.ShouldEqual, 0)
	test.That(t, ApplyDeadband(1, 0.1), test.ShouldAlmostEqual, 1)
	test.That(t, ApplyDeadband(-0.55, 0.1), test.ShouldAlmostEqual, -0.5)
	test.That(t, ApplyDeadband(0.3, 0), test.ShouldEqual, 0.3)
	test.That(t, Float64AlmostEqual(1, 1.00001, 1e-4), test.ShouldBeTrue)
}
