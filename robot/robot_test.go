package robot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/frcbot/buttonmap"
	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/input"
	inputfake "go.viam.com/frcbot/components/input/fake"
	"go.viam.com/frcbot/components/motor"
	motorfake "go.viam.com/frcbot/components/motor/fake"
	imufake "go.viam.com/frcbot/components/movementsensor/fake"
	"go.viam.com/frcbot/config"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/tasks"
	"go.viam.com/frcbot/testutils/inject"
)

func tankConfig() *config.Config {
	cfg := &config.Config{
		Robot: config.RobotConfig{DriveTrain: config.TankDriveTrain},
		Tank: &drivetrain.TankConfig{
			LeftMotor:     "left",
			RightMotor:    "right",
			LeftFollowers: []string{"left2"},
			TicksPerInch:  100,
			TrackWidth:    24,
			VelocityMax:   10000,
			Gains: drivetrain.ModeGains{
				Position: drivetrain.Gains{P: 0.05},
			},
		},
	}
	if err := cfg.Ensure(); err != nil {
		panic(err)
	}
	return cfg
}

func swerveConfig() *config.Config {
	cfg := &config.Config{
		Robot: config.RobotConfig{DriveTrain: config.SwerveDriveTrain},
		Swerve: &drivetrain.SwerveConfig{
			DriveTicksPerInch:   100,
			SteerTicksPerDegree: 10,
			MaxVelocity:         100,
			MaxAngularVelocity:  180,
		},
	}
	for _, name := range []string{"FrontLeft", "FrontRight", "BackLeft", "BackRight"} {
		cfg.Swerve.Modules = append(cfg.Swerve.Modules, drivetrain.ModuleConfig{
			Name:       name,
			DriveMotor: name + "Drive",
			SteerMotor: name + "Steer",
		})
	}
	cfg.Swerve.Modules[0].X, cfg.Swerve.Modules[0].Y = 10, 10
	cfg.Swerve.Modules[1].X, cfg.Swerve.Modules[1].Y = 10, -10
	cfg.Swerve.Modules[2].X, cfg.Swerve.Modules[2].Y = -10, 10
	cfg.Swerve.Modules[3].X, cfg.Swerve.Modules[3].Y = -10, -10
	if err := cfg.Ensure(); err != nil {
		panic(err)
	}
	return cfg
}

type fixture struct {
	robot     *Robot
	clock     *clock.Mock
	js        *inputfake.Joystick
	codriver  *inputfake.Joystick
	motors    map[string]*motorfake.Motor
	telemetry *logging.MemoryTelemetry
}

func newFixture(t *testing.T, cfg *config.Config, names ...string) *fixture {
	t.Helper()
	logger := logging.NewTestLogger(t)
	f := &fixture{
		clock:     clock.NewMock(),
		js:        inputfake.NewJoystick(),
		codriver:  inputfake.NewJoystick(),
		motors:    map[string]*motorfake.Motor{},
		telemetry: logging.NewMemoryTelemetry(),
	}
	hw := Hardware{
		Motors:    map[string]motor.Motor{},
		IMU:       &imufake.IMU{},
		Joysticks: input.Joysticks{input.DeviceDriver: f.js, input.DeviceCodriver: f.codriver},
	}
	for _, name := range names {
		m := motorfake.NewMotor(name, motorfake.Config{}, f.clock, logger)
		f.motors[name] = m
		hw.Motors[name] = m
	}
	r, err := New(context.Background(), cfg, hw, Options{Telemetry: f.telemetry, Clock: f.clock}, logger)
	test.That(t, err, test.ShouldBeNil)
	f.robot = r
	return f
}

func (f *fixture) command(name string) (motor.ControlMode, float64) {
	return f.motors[name].Command()
}

func TestDefaultButtonMap(t *testing.T) {
	noTask := func() tasks.Task { return tasks.NewWaitTask(0, nil) }
	all := map[operation.MacroOperation]tasks.Factory{}
	for _, op := range operation.AllMacroOperations() {
		all[op] = noTask
	}
	schema := DefaultButtonMap(all)
	test.That(t, schema.Macro, test.ShouldHaveLength, 4)
	test.That(t, buttonmap.Verify(schema, buttonmap.VerifyOptions{FailOnError: true}), test.ShouldBeNil)

	schema = DefaultButtonMap(map[operation.MacroOperation]tasks.Factory{operation.MacroResetPose: noTask})
	test.That(t, schema.Macro, test.ShouldHaveLength, 1)
	test.That(t, schema.Macro[0].Operation, test.ShouldEqual, operation.MacroResetPose)
}

func TestNewErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	clk := clock.NewMock()
	motors := map[string]motor.Motor{
		"left":  motorfake.NewMotor("left", motorfake.Config{}, clk, logger),
		"right": motorfake.NewMotor("right", motorfake.Config{}, clk, logger),
	}

	t.Run("missing motor", func(t *testing.T) {
		_, err := New(context.Background(), tankConfig(), Hardware{Motors: motors}, Options{Clock: clk}, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "left2")
	})

	t.Run("conflicting button map", func(t *testing.T) {
		cfg := tankConfig()
		cfg.Tank.LeftFollowers = nil
		a := input.Binding{Device: input.DeviceDriver, Button: input.ButtonA}
		schema := buttonmap.Schema{Digital: []buttonmap.DigitalDescription{
			{Operation: operation.DriveTrainSimpleMode, Binding: a},
			{Operation: operation.DriveTrainHoldHeading, Binding: a},
		}}
		_, err := New(context.Background(), cfg, Hardware{Motors: motors}, Options{Clock: clk, Schema: &schema}, logger)
		test.That(t, errors.Is(err, buttonmap.ErrConflict), test.ShouldBeTrue)
	})

	t.Run("button map file", func(t *testing.T) {
		cfg := tankConfig()
		cfg.Tank.LeftFollowers = nil
		cfg.ButtonMap = filepath.Join(t.TempDir(), "buttons.yaml")
		doc := "macro:\n  - operation: MacroResetPose\n    device: Driver\n    button: A\n" +
			"    requires: [DriveTrainResetXYPosition]\n"
		test.That(t, os.WriteFile(cfg.ButtonMap, []byte(doc), 0o600), test.ShouldBeNil)
		_, err := New(context.Background(), cfg, Hardware{Motors: motors}, Options{Clock: clk}, logger)
		test.That(t, err, test.ShouldBeNil)

		cfg.ButtonMap = filepath.Join(t.TempDir(), "missing.yaml")
		_, err = New(context.Background(), cfg, Hardware{Motors: motors}, Options{Clock: clk}, logger)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestCycleTeleop(t *testing.T) {
	f := newFixture(t, tankConfig(), "left", "left2", "right")
	ctx := context.Background()

	f.js.SetAxis(input.AxisLeftY, -1)
	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	mode, value := f.command("left")
	test.That(t, mode, test.ShouldEqual, motor.PercentOutput)
	test.That(t, value, test.ShouldAlmostEqual, 1)
	_, value = f.command("left2")
	test.That(t, value, test.ShouldAlmostEqual, 1)
	_, value = f.command("right")
	test.That(t, value, test.ShouldAlmostEqual, 1)

	test.That(t, f.robot.Cycle(ctx, mechanism.Disabled), test.ShouldBeNil)
	_, value = f.command("left")
	test.That(t, value, test.ShouldEqual, 0.)
	test.That(t, f.robot.Driver().GetAnalog(operation.DriveTrainMoveForward), test.ShouldEqual, 0.)
}

func TestPIDButtons(t *testing.T) {
	cfg := tankConfig()
	cfg.Tank.Gains.Velocity = drivetrain.Gains{F: 1}
	f := newFixture(t, cfg, "left", "left2", "right")
	ctx := context.Background()

	usingPID := func() bool {
		v, ok := f.telemetry.Boolean(drivetrain.KeyUsePID)
		test.That(t, ok, test.ShouldBeTrue)
		return v
	}

	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	test.That(t, usingPID(), test.ShouldBeFalse)

	f.js.SetButton(input.ButtonStart, true)
	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	test.That(t, usingPID(), test.ShouldBeTrue)

	// holding enable does not block disable
	f.codriver.SetButton(input.ButtonStart, true)
	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	test.That(t, usingPID(), test.ShouldBeFalse)

	f.js.SetButton(input.ButtonStart, false)
	f.codriver.SetButton(input.ButtonStart, false)
	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	test.That(t, usingPID(), test.ShouldBeFalse)
}

func TestExtraMechanisms(t *testing.T) {
	logger := logging.NewTestLogger(t)
	clk := clock.NewMock()
	cfg := tankConfig()
	cfg.Tank.LeftFollowers = nil
	motors := map[string]motor.Motor{
		"left":  motorfake.NewMotor("left", motorfake.Config{}, clk, logger),
		"right": motorfake.NewMotor("right", motorfake.Config{}, clk, logger),
	}

	var calls []string
	var modes []mechanism.Mode
	intake := &inject.Mechanism{
		ReadSensorsFunc: func(ctx context.Context) error {
			calls = append(calls, "read")
			return nil
		},
		UpdateFunc: func(ctx context.Context, mode mechanism.Mode) error {
			calls = append(calls, "update")
			modes = append(modes, mode)
			return errors.New("jammed")
		},
		StopFunc: func(ctx context.Context) error {
			calls = append(calls, "stop")
			return nil
		},
	}
	r, err := New(context.Background(), cfg, Hardware{Motors: motors},
		Options{Clock: clk, Mechanisms: []mechanism.Mechanism{intake}}, logger)
	test.That(t, err, test.ShouldBeNil)

	err = r.Cycle(context.Background(), mechanism.Teleop)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "jammed")
	test.That(t, modes, test.ShouldResemble, []mechanism.Mode{mechanism.Teleop})

	test.That(t, r.Close(context.Background()), test.ShouldBeNil)
	test.That(t, calls, test.ShouldResemble, []string{"read", "update", "stop"})
}

func TestStaleSensorsStopMechanism(t *testing.T) {
	logger := logging.NewTestLogger(t)
	clk := clock.NewMock()
	cfg := tankConfig()
	cfg.Tank.LeftFollowers = nil
	motors := map[string]motor.Motor{
		"left":  motorfake.NewMotor("left", motorfake.Config{}, clk, logger),
		"right": motorfake.NewMotor("right", motorfake.Config{}, clk, logger),
	}

	var calls []string
	readErr := errors.New("encoder unplugged")
	intake := &inject.Mechanism{
		ReadSensorsFunc: func(ctx context.Context) error {
			calls = append(calls, "read")
			return readErr
		},
		UpdateFunc: func(ctx context.Context, mode mechanism.Mode) error {
			calls = append(calls, "update")
			return nil
		},
		StopFunc: func(ctx context.Context) error {
			calls = append(calls, "stop")
			return nil
		},
	}
	r, err := New(context.Background(), cfg, Hardware{Motors: motors},
		Options{Clock: clk, Mechanisms: []mechanism.Mechanism{intake}}, logger)
	test.That(t, err, test.ShouldBeNil)

	err = r.Cycle(context.Background(), mechanism.Teleop)
	test.That(t, errors.Is(err, readErr), test.ShouldBeTrue)
	test.That(t, calls, test.ShouldResemble, []string{"read", "stop"})

	readErr = nil
	calls = nil
	test.That(t, r.Cycle(context.Background(), mechanism.Teleop), test.ShouldBeNil)
	test.That(t, calls, test.ShouldResemble, []string{"read", "update"})
}

func TestMacro(t *testing.T) {
	f := newFixture(t, tankConfig(), "left", "left2", "right")
	ctx := context.Background()

	f.js.SetPOV(input.POVUp)
	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	test.That(t, f.robot.Driver().RunningMacros(), test.ShouldResemble,
		[]operation.MacroOperation{operation.MacroDriveForward})
	test.That(t, f.robot.DriveTrain().ControlMode(), test.ShouldEqual, drivetrain.PathMode)

	f.clock.Add(time.Minute)
	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	test.That(t, f.robot.Driver().RunningMacros(), test.ShouldBeEmpty)
	test.That(t, f.robot.DriveTrain().ControlMode(), test.ShouldEqual, drivetrain.VelocityMode)
}

func TestAutonomous(t *testing.T) {
	f := newFixture(t, tankConfig(), "left", "left2", "right")
	ctx := context.Background()

	test.That(t, f.robot.Cycle(ctx, mechanism.Autonomous), test.ShouldBeNil)
	test.That(t, f.robot.Cycle(ctx, mechanism.Autonomous), test.ShouldBeNil)
	test.That(t, f.robot.DriveTrain().ControlMode(), test.ShouldEqual, drivetrain.PositionMode)
	_, value := f.command("left")
	test.That(t, value, test.ShouldBeGreaterThan, 0)

	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	test.That(t, f.robot.DriveTrain().ControlMode(), test.ShouldEqual, drivetrain.VelocityMode)
}

func TestSwerveRobot(t *testing.T) {
	var names []string
	for _, m := range swerveConfig().Swerve.Modules {
		names = append(names, m.DriveMotor, m.SteerMotor)
	}
	f := newFixture(t, swerveConfig(), names...)
	ctx := context.Background()

	f.js.SetAxis(input.AxisLeftY, -1)
	test.That(t, f.robot.Cycle(ctx, mechanism.Teleop), test.ShouldBeNil)
	for _, m := range swerveConfig().Swerve.Modules {
		mode, value := f.command(m.DriveMotor)
		test.That(t, mode, test.ShouldEqual, motor.PercentOutput)
		test.That(t, value, test.ShouldAlmostEqual, 1)
		mode, value = f.command(m.SteerMotor)
		test.That(t, mode, test.ShouldEqual, motor.Position)
		test.That(t, value, test.ShouldAlmostEqual, 0)
	}
}

func TestLoop(t *testing.T) {
	cfg := tankConfig()
	cfg.Robot.StatsInterval = cfg.Robot.Period()
	f := newFixture(t, cfg, "left", "left2", "right")
	f.js.SetAxis(input.AxisLeftY, -1)
	f.robot.SetMode(mechanism.Teleop)
	test.That(t, f.robot.Mode(), test.ShouldEqual, mechanism.Teleop)

	f.robot.Start(context.Background())
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		f.clock.Add(cfg.Robot.Period())
		_, ok := f.telemetry.Number(KeyLoopMean)
		test.That(tb, ok, test.ShouldBeTrue)
		_, value := f.command("left")
		test.That(tb, value, test.ShouldAlmostEqual, 1)
	})

	test.That(t, f.robot.Close(context.Background()), test.ShouldBeNil)
	_, value := f.command("left")
	test.That(t, value, test.ShouldEqual, 0.)
	test.That(t, f.robot.Driver().GetAnalog(operation.DriveTrainMoveForward), test.ShouldEqual, 0.)
}

func TestLoopStats(t *testing.T) {
	ls := NewLoopStats(20 * time.Millisecond)
	test.That(t, ls.Summary(), test.ShouldResemble, LoopSummary{})

	for i := 0; i < 19; i++ {
		ls.Record(10 * time.Millisecond)
	}
	ls.Record(30 * time.Millisecond)
	summary := ls.Summary()
	test.That(t, summary.Cycles, test.ShouldEqual, 20)
	test.That(t, summary.Overruns, test.ShouldEqual, 1)
	test.That(t, summary.Mean, test.ShouldEqual, 11*time.Millisecond)
	test.That(t, summary.Max, test.ShouldEqual, 30*time.Millisecond)

	telemetry := logging.NewMemoryTelemetry()
	reported := ls.Report(context.Background(), telemetry, logging.NewTestLogger(t))
	test.That(t, reported, test.ShouldResemble, summary)
	overruns, ok := telemetry.Number(KeyLoopOverruns)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, overruns, test.ShouldEqual, 1.)
	test.That(t, ls.Summary().Cycles, test.ShouldEqual, 0)

	ls.Record(5 * time.Millisecond)
	ls.Record(5 * time.Millisecond)
	test.That(t, ls.Summary().P95, test.ShouldEqual, 5*time.Millisecond)
}
