package drivetrain

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/frcbot/control"
)

func TestSelectMode(t *testing.T) {
	test.That(t, SelectMode(false, false, false), test.ShouldEqual, VelocityMode)
	test.That(t, SelectMode(false, true, false), test.ShouldEqual, PositionMode)
	test.That(t, SelectMode(false, true, true), test.ShouldEqual, BrakeMode)
	test.That(t, SelectMode(true, true, true), test.ShouldEqual, PathMode)
	test.That(t, ModeKey{Brake: true}.Mode(), test.ShouldEqual, BrakeMode)
	test.That(t, PathMode.String(), test.ShouldEqual, "path")

	gains := ModeGains{Velocity: Gains{P: 1}, Position: Gains{P: 2}, Brake: Gains{P: 3}, Path: Gains{P: 4, CrossCouplingK: 9}}
	test.That(t, gains.For(BrakeMode).P, test.ShouldEqual, 3.0)
	test.That(t, gains.For(PathMode).PIDF().P, test.ShouldEqual, 4.0)

	bounded := Gains{I: 0.1, IZone: 2, MaxIAccum: 0.5, CrossCouplingK: 9}
	test.That(t, bounded.PIDF(), test.ShouldResemble, control.Gains{I: 0.1, IZone: 2, MaxIAccum: 0.5})
}

func TestIntegratePose(t *testing.T) {
	p := Pose{}
	for i := 0; i < 10; i++ {
		p = IntegratePose(p, 0, 0)
	}
	test.That(t, p, test.ShouldResemble, Pose{})

	p = IntegratePose(p, 10, 0)
	test.That(t, p.X(), test.ShouldAlmostEqual, 10)
	p = IntegratePose(p, 10, 90)
	test.That(t, p.X(), test.ShouldAlmostEqual, 10)
	test.That(t, p.Y(), test.ShouldAlmostEqual, 10)
	test.That(t, p.Angle, test.ShouldAlmostEqual, 90)

	p = IntegratePose(p, 0, -180)
	test.That(t, p.Angle, test.ShouldAlmostEqual, 270)

	p = TranslatePose(p, r2.Point{X: -10, Y: -10}, 100)
	test.That(t, p.Point.Norm(), test.ShouldAlmostEqual, 0)
	test.That(t, p.Angle, test.ShouldAlmostEqual, 10)

	test.That(t, WrapAngleDeg(-1), test.ShouldAlmostEqual, 359)
	test.That(t, WrapAngleDeg(720), test.ShouldEqual, 0.0)
	test.That(t, WrapAngleDeg(math.Nextafter(0, -1)), test.ShouldBeLessThan, 360)
}

func TestCrossCouple(t *testing.T) {
	left, right := CrossCouple(0.5, 0.2, 5, 2, 0.05, 1)
	test.That(t, left, test.ShouldAlmostEqual, 0.65)
	test.That(t, right, test.ShouldAlmostEqual, 0.05)

	// right side lagging
	left, right = CrossCouple(0.5, 0.5, 1, 4, 0.1, 1)
	test.That(t, left, test.ShouldAlmostEqual, 0.2)
	test.That(t, right, test.ShouldAlmostEqual, 0.8)

	left, right = CrossCouple(0.5, 0.5, 1, 1.5, 0.1, 1)
	test.That(t, left, test.ShouldEqual, 0.5)
	test.That(t, right, test.ShouldEqual, 0.5)
}

func TestTankConfigValidate(t *testing.T) {
	cfg := TankConfig{}
	err := cfg.Validate("tank")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "left_motor")

	cfg = TankConfig{LeftMotor: "l", RightMotor: "r", TicksPerInch: 100, TrackWidth: 22, VelocityMax: 1000}
	test.That(t, cfg.Validate("tank"), test.ShouldBeNil)

	cfg.UsePID = true
	err = cfg.Validate("tank")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "gains.velocity")
	cfg.Gains.Velocity = Gains{F: 1}
	test.That(t, cfg.Validate("tank"), test.ShouldBeNil)

	cfg.MaxPowerLevel = 1.5
	test.That(t, cfg.Validate("tank"), test.ShouldNotBeNil)

	cfg.MaxPowerLevel = 0
	withDefaults := cfg.WithDefaults()
	test.That(t, withDefaults.MaxPowerLevel, test.ShouldEqual, DefaultMaxPowerLevel)
	test.That(t, withDefaults.ForwardWeight, test.ShouldEqual, DefaultForwardWeight)
	test.That(t, withDefaults.HeadingCorrection, test.ShouldEqual, DefaultHeadingCorrection)
}

func TestSwerveConfigValidate(t *testing.T) {
	modules := []ModuleConfig{
		{Name: "fl", DriveMotor: "fl_drive", SteerMotor: "fl_steer", X: 10, Y: 10},
		{Name: "fr", DriveMotor: "fr_drive", SteerMotor: "fr_steer", X: 10, Y: -10},
		{Name: "bl", DriveMotor: "bl_drive", SteerMotor: "bl_steer", X: -10, Y: 10},
		{Name: "br", DriveMotor: "br_drive", SteerMotor: "br_steer", X: -10, Y: -10},
	}
	cfg := SwerveConfig{
		Modules:             modules,
		DriveTicksPerInch:   50,
		SteerTicksPerDegree: 10,
		MaxVelocity:         150,
		MaxAngularVelocity:  360,
	}
	test.That(t, cfg.Validate("swerve"), test.ShouldBeNil)

	short := cfg
	short.Modules = modules[:3]
	test.That(t, short.Validate("swerve"), test.ShouldNotBeNil)

	dup := cfg
	dup.Modules = append([]ModuleConfig{}, modules...)
	dup.Modules[3].Name = "fl"
	err := dup.Validate("swerve")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate")

	noSpeed := cfg
	noSpeed.MaxVelocity = 0
	test.That(t, noSpeed.Validate("swerve"), test.ShouldNotBeNil)

	pid := cfg
	pid.UsePID = true
	test.That(t, pid.Validate("swerve"), test.ShouldNotBeNil)
	pid.Gains.Velocity = Gains{P: 0.1}
	test.That(t, pid.Validate("swerve"), test.ShouldBeNil)
}
