package tank

import (
	"context"
	"math"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/control"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/testutils/inject"
	"go.viam.com/frcbot/utils"
)

const ticksPerInch = 100.0

type side struct {
	inches   float64
	velocity float64
	mode     motor.ControlMode
	value    float64
	stopped  int
}

func injectMotor(s *side) *inject.Motor {
	m := &inject.Motor{}
	m.SetFunc = func(ctx context.Context, mode motor.ControlMode, value float64) error {
		s.mode, s.value = mode, value
		return nil
	}
	m.PositionFunc = func(ctx context.Context) (float64, error) { return s.inches * ticksPerInch, nil }
	m.VelocityFunc = func(ctx context.Context) (float64, error) { return s.velocity, nil }
	m.ErrorFunc = func(ctx context.Context) (float64, error) { return 0, nil }
	m.StopFunc = func(ctx context.Context) error {
		s.stopped++
		s.mode, s.value = motor.PercentOutput, 0
		return nil
	}
	return m
}

type fixture struct {
	dt          *DriveTrain
	ops         *inject.OperationReader
	left, right *side
	telemetry   *logging.MemoryTelemetry
}

func testConfig() drivetrain.TankConfig {
	return drivetrain.TankConfig{
		LeftMotor:             "left",
		RightMotor:            "right",
		TicksPerInch:          ticksPerInch,
		TrackWidth:            20,
		VelocityMax:           1000,
		CrossCouplingDeadband: 1,
		UsePID:                true,
		Gains: drivetrain.ModeGains{
			Velocity: drivetrain.Gains{P: 0.5, F: 1},
			Position: drivetrain.Gains{P: 0.1, CrossCouplingK: 0.05},
			Brake:    drivetrain.Gains{P: 0.5},
			Path:     drivetrain.Gains{P: 0.2, F: 0.01, CrossCouplingK: 0.05},
		},
	}
}

func newFixture(t *testing.T, cfg drivetrain.TankConfig, strict bool) *fixture {
	t.Helper()
	f := &fixture{
		ops:       &inject.OperationReader{},
		left:      &side{},
		right:     &side{},
		telemetry: logging.NewMemoryTelemetry(),
	}
	dt, err := New(
		context.Background(),
		cfg,
		Motors{Left: injectMotor(f.left), Right: injectMotor(f.right)},
		Options{Operations: f.ops, Telemetry: f.telemetry, Clock: clock.NewMock(), FailOnPowerRange: strict},
		logging.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)
	f.dt = dt
	return f
}

func (f *fixture) cycle(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	test.That(t, f.dt.ReadSensors(ctx), test.ShouldBeNil)
	test.That(t, f.dt.Update(ctx, mechanism.Teleop), test.ShouldBeNil)
}

func TestNew(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := New(context.Background(), testConfig(), Motors{}, Options{Operations: &inject.OperationReader{}}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	left, right := injectMotor(&side{}), injectMotor(&side{})
	_, err = New(context.Background(), testConfig(), Motors{Left: left, Right: right}, Options{}, logger)
	test.That(t, err, test.ShouldNotBeNil)

	var followed []motor.Motor
	follower := &inject.Motor{FollowFunc: func(ctx context.Context, leader motor.Motor) error {
		followed = append(followed, leader)
		return nil
	}}
	_, err = New(
		context.Background(),
		testConfig(),
		Motors{Left: left, Right: right, LeftFollowers: []motor.Motor{follower}, RightFollowers: []motor.Motor{follower}},
		Options{Operations: &inject.OperationReader{}},
		logger,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, followed, test.ShouldResemble, []motor.Motor{left, right})
}

func TestVelocityModeOpenLoop(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPowerLevel = 0.8
	f := newFixture(t, cfg, true)
	f.ops.SetDigital(operation.DriveTrainDisablePID, true)
	f.ops.SetDigital(operation.DriveTrainSimpleMode, true)

	f.ops.SetAnalog(operation.DriveTrainMoveForward, 1)
	f.cycle(t)
	test.That(t, f.dt.ControlMode(), test.ShouldEqual, drivetrain.VelocityMode)
	test.That(t, f.dt.UsingPID(), test.ShouldBeFalse)
	test.That(t, f.left.mode, test.ShouldEqual, motor.PercentOutput)
	test.That(t, f.left.value, test.ShouldAlmostEqual, 0.8)
	test.That(t, f.right.value, test.ShouldAlmostEqual, 0.8)

	f.ops.SetAnalog(operation.DriveTrainMoveForward, 0)
	f.ops.SetAnalog(operation.DriveTrainTurn, 1)
	f.cycle(t)
	test.That(t, f.left.value, test.ShouldAlmostEqual, 0.8)
	test.That(t, f.right.value, test.ShouldAlmostEqual, -0.8)

	t.Run("squared outside simple mode", func(t *testing.T) {
		f.ops.SetDigital(operation.DriveTrainSimpleMode, false)
		f.ops.SetAnalog(operation.DriveTrainMoveForward, -0.5)
		f.ops.SetAnalog(operation.DriveTrainTurn, 0)
		f.cycle(t)
		test.That(t, f.left.value, test.ShouldAlmostEqual, -0.2)
		test.That(t, f.right.value, test.ShouldAlmostEqual, -0.2)
	})

	t.Run("always within power range", func(t *testing.T) {
		for _, v := range []float64{1e6, -1e6, 3, -7} {
			f.ops.SetAnalog(operation.DriveTrainMoveForward, v)
			f.ops.SetAnalog(operation.DriveTrainTurn, -v)
			f.cycle(t)
			test.That(t, f.left.value, test.ShouldBeBetweenOrEqual, control.MinPowerLevel, control.MaxPowerLevel)
			test.That(t, f.right.value, test.ShouldBeBetweenOrEqual, control.MinPowerLevel, control.MaxPowerLevel)
		}
	})
}

func TestStartsOpenLoopByDefault(t *testing.T) {
	cfg := testConfig()
	cfg.UsePID = false
	cfg.Gains.Velocity = drivetrain.Gains{}
	f := newFixture(t, cfg, true)
	f.ops.SetDigital(operation.DriveTrainSimpleMode, true)
	f.ops.SetAnalog(operation.DriveTrainMoveForward, 1)

	f.cycle(t)
	test.That(t, f.dt.UsingPID(), test.ShouldBeFalse)
	test.That(t, f.left.value, test.ShouldAlmostEqual, 1)
	test.That(t, f.right.value, test.ShouldAlmostEqual, 1)
}

func TestVelocityModePID(t *testing.T) {
	f := newFixture(t, testConfig(), true)
	f.ops.SetDigital(operation.DriveTrainSimpleMode, true)
	f.ops.SetAnalog(operation.DriveTrainMoveForward, 0.5)
	f.left.velocity = 250
	f.right.velocity = 500

	f.cycle(t)
	gains, ok := f.dt.ActiveGains()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, gains, test.ShouldResemble, control.Gains{P: 0.5, F: 1})
	// F*0.5 + P*(0.5 - 250/1000)
	test.That(t, f.left.value, test.ShouldAlmostEqual, 0.625)
	test.That(t, f.right.value, test.ShouldAlmostEqual, 0.5)
}

func TestPositionModeCrossCoupling(t *testing.T) {
	f := newFixture(t, testConfig(), true)
	f.ops.SetDigital(operation.DriveTrainUsePositionalMode, true)
	f.ops.SetAnalog(operation.DriveTrainLeftPosition, 5)
	f.ops.SetAnalog(operation.DriveTrainRightPosition, 2)

	f.cycle(t)
	test.That(t, f.dt.ControlMode(), test.ShouldEqual, drivetrain.PositionMode)
	// uncoupled outputs are 0.5 and 0.2, the error difference of 3 moves 0.15 between them
	test.That(t, f.left.value, test.ShouldAlmostEqual, 0.65)
	test.That(t, f.right.value, test.ShouldAlmostEqual, 0.05)

	t.Run("within dead band", func(t *testing.T) {
		cfg := testConfig()
		g := newFixture(t, cfg, true)
		g.ops.SetDigital(operation.DriveTrainUsePositionalMode, true)
		g.ops.SetAnalog(operation.DriveTrainLeftPosition, 5)
		g.ops.SetAnalog(operation.DriveTrainRightPosition, 4.5)
		g.cycle(t)
		test.That(t, g.left.value, test.ShouldAlmostEqual, 0.5)
		test.That(t, g.right.value, test.ShouldAlmostEqual, 0.45)
	})

	t.Run("without PID", func(t *testing.T) {
		f.ops.SetDigital(operation.DriveTrainDisablePID, true)
		f.ops.SetAnalog(operation.DriveTrainRightPosition, 0.5)
		f.cycle(t)
		test.That(t, f.dt.UsingPID(), test.ShouldBeFalse)
		test.That(t, f.left.value, test.ShouldAlmostEqual, 0.5)
		// inside the minimum error dead zone
		test.That(t, f.right.value, test.ShouldEqual, 0.0)
	})
}

func TestBrakeMode(t *testing.T) {
	f := newFixture(t, testConfig(), true)
	f.left.inches, f.right.inches = 3, 4
	f.ops.SetDigital(operation.DriveTrainUseBrakeMode, true)

	f.cycle(t)
	test.That(t, f.dt.ControlMode(), test.ShouldEqual, drivetrain.BrakeMode)
	test.That(t, f.left.value, test.ShouldEqual, 0.0)
	test.That(t, f.right.value, test.ShouldEqual, 0.0)

	// pushed back one inch, brake pulls to the latched position
	f.left.inches = 2
	f.cycle(t)
	test.That(t, f.left.value, test.ShouldAlmostEqual, 0.5)
	test.That(t, f.right.value, test.ShouldAlmostEqual, 0.0)

	// with positional mode the goals come from the operations
	f.ops.SetDigital(operation.DriveTrainUsePositionalMode, true)
	f.ops.SetAnalog(operation.DriveTrainLeftPosition, 2)
	f.ops.SetAnalog(operation.DriveTrainRightPosition, 5)
	f.cycle(t)
	gains, ok := f.dt.ActiveGains()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, gains.P, test.ShouldEqual, 0.5)
	test.That(t, f.left.value, test.ShouldAlmostEqual, 0.0)
	test.That(t, f.right.value, test.ShouldAlmostEqual, 0.5)
}

func TestModeChangeRebuildsPID(t *testing.T) {
	f := newFixture(t, testConfig(), true)
	f.ops.SetAnalog(operation.DriveTrainMoveForward, 0.3)
	f.cycle(t)
	gains, ok := f.dt.ActiveGains()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, gains, test.ShouldResemble, testConfig().Gains.Velocity.PIDF())
	mode, ok := f.telemetry.String(drivetrain.KeyMode)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, mode, test.ShouldEqual, "velocity")

	f.ops.SetDigital(operation.DriveTrainUsePathMode, true)
	f.ops.SetAnalog(operation.DriveTrainLeftPosition, 2)
	f.ops.SetAnalog(operation.DriveTrainRightPosition, 2)
	f.ops.SetAnalog(operation.DriveTrainLeftVelocity, 10)
	f.ops.SetAnalog(operation.DriveTrainRightVelocity, 10)
	f.ops.SetAnalog(operation.DriveTrainHeadingCorrection, 0.1)
	f.cycle(t)

	test.That(t, f.dt.ControlMode(), test.ShouldEqual, drivetrain.PathMode)
	gains, ok = f.dt.ActiveGains()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, gains, test.ShouldResemble, testConfig().Gains.Path.PIDF())
	// 0.2*2 + 10*0.01, heading correction moves 0.1 from left to right
	test.That(t, f.left.value, test.ShouldAlmostEqual, 0.4)
	test.That(t, f.right.value, test.ShouldAlmostEqual, 0.6)
	mode, _ = f.telemetry.String(drivetrain.KeyMode)
	test.That(t, mode, test.ShouldEqual, "path")
}

func TestPathModeClampsAndAsserts(t *testing.T) {
	f := newFixture(t, testConfig(), true)
	f.ops.SetDigital(operation.DriveTrainUsePathMode, true)
	f.ops.SetAnalog(operation.DriveTrainLeftVelocity, 1000)
	f.ops.SetAnalog(operation.DriveTrainHeadingCorrection, -5)
	f.cycle(t)
	test.That(t, f.left.value, test.ShouldEqual, 1.0)
	test.That(t, f.right.value, test.ShouldEqual, -1.0)

	t.Run("strict", func(t *testing.T) {
		f.ops.SetAnalog(operation.DriveTrainHeadingCorrection, math.NaN())
		test.That(t, f.dt.ReadSensors(context.Background()), test.ShouldBeNil)
		err := f.dt.Update(context.Background(), mechanism.Teleop)
		test.That(t, errors.Is(err, control.ErrPowerLevelOutOfRange), test.ShouldBeTrue)
		test.That(t, f.left.value, test.ShouldEqual, 0.0)
		test.That(t, f.right.value, test.ShouldEqual, 0.0)
	})

	t.Run("tolerant", func(t *testing.T) {
		logger, logs := logging.NewObservedTestLogger(t)
		ops := &inject.OperationReader{}
		ops.SetDigital(operation.DriveTrainUsePathMode, true)
		ops.SetAnalog(operation.DriveTrainHeadingCorrection, math.NaN())
		left, right := &side{}, &side{}
		dt, err := New(context.Background(), testConfig(),
			Motors{Left: injectMotor(left), Right: injectMotor(right)},
			Options{Operations: ops, Clock: clock.NewMock()}, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, dt.ReadSensors(context.Background()), test.ShouldBeNil)
		test.That(t, dt.Update(context.Background(), mechanism.Autonomous), test.ShouldBeNil)
		test.That(t, logs.FilterMessage("setpoint out of range").Len(), test.ShouldEqual, 2)
	})
}

func TestOdometry(t *testing.T) {
	f := newFixture(t, testConfig(), true)

	for i := 0; i < 10; i++ {
		f.cycle(t)
	}
	test.That(t, f.dt.XPosition(), test.ShouldAlmostEqual, 0, 1e-4)
	test.That(t, f.dt.YPosition(), test.ShouldAlmostEqual, 0, 1e-4)
	test.That(t, f.dt.Angle(), test.ShouldAlmostEqual, 0, 1e-4)

	f.left.inches, f.right.inches = 10, 10
	f.cycle(t)
	test.That(t, f.dt.XPosition(), test.ShouldAlmostEqual, 10)
	test.That(t, f.dt.YPosition(), test.ShouldAlmostEqual, 0)
	test.That(t, f.dt.LeftPosition(), test.ShouldEqual, 10.0)

	// turn in place a quarter turn counter-clockwise
	quarter := math.Pi * 20 / 4
	f.left.inches, f.right.inches = 10-quarter, 10+quarter
	f.cycle(t)
	test.That(t, f.dt.Angle(), test.ShouldAlmostEqual, 90)
	test.That(t, f.dt.XPosition(), test.ShouldAlmostEqual, 10)

	f.left.inches += 5
	f.right.inches += 5
	f.cycle(t)
	test.That(t, f.dt.XPosition(), test.ShouldAlmostEqual, 10)
	test.That(t, f.dt.YPosition(), test.ShouldAlmostEqual, 5)

	// a further three quarter turn wraps back to 0
	f.left.inches -= 3 * quarter
	f.right.inches += 3 * quarter
	f.cycle(t)
	test.That(t, utils.AngleDiffDeg(f.dt.Angle(), 0), test.ShouldBeLessThan, 1e-6)

	t.Run("resets", func(t *testing.T) {
		f.ops.SetDigital(operation.DriveTrainResetXYPosition, true)
		f.ops.SetDigital(operation.DriveTrainResetFieldOrientation, true)
		f.ops.SetAnalog(operation.DriveTrainStartingXPosition, 12)
		f.ops.SetAnalog(operation.DriveTrainStartingYPosition, -3)
		f.ops.SetAnalog(operation.DriveTrainStartingOrientation, -90)
		f.cycle(t)
		test.That(t, f.dt.Pose().X(), test.ShouldEqual, 12.0)
		test.That(t, f.dt.Pose().Y(), test.ShouldEqual, -3.0)
		test.That(t, f.dt.Angle(), test.ShouldEqual, 270.0)
		x, ok := f.telemetry.Number(drivetrain.KeyXPosition)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, x, test.ShouldEqual, 12.0)
	})
}

func TestDisabledStops(t *testing.T) {
	f := newFixture(t, testConfig(), true)
	f.ops.SetDigital(operation.DriveTrainDisablePID, true)
	f.ops.SetAnalog(operation.DriveTrainMoveForward, 1)
	f.cycle(t)
	test.That(t, f.left.value, test.ShouldNotEqual, 0.0)

	test.That(t, f.dt.Update(context.Background(), mechanism.Disabled), test.ShouldBeNil)
	test.That(t, f.left.stopped, test.ShouldEqual, 1)
	test.That(t, f.right.value, test.ShouldEqual, 0.0)
	left, right := f.dt.Setpoints()
	test.That(t, left, test.ShouldEqual, 0.0)
	test.That(t, right, test.ShouldEqual, 0.0)
}
