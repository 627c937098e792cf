// Package swerve implements a four module swerve drivetrain: every module steers independently,
// so the robot translates in any direction while turning.
package swerve

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/components/movementsensor"
	"go.viam.com/frcbot/control"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/utils"
)

// stoppedSpeed is the module speed in inches per second below which modules keep their angle.
const stoppedSpeed = 1e-3

// Options are the collaborators of a swerve drivetrain. Telemetry and Clock may be nil.
type Options struct {
	Operations       operation.Reader
	IMU              movementsensor.IMU
	Telemetry        logging.Telemetry
	Clock            clock.Clock
	FailOnPowerRange bool
}

var _ drivetrain.DriveTrain = &DriveTrain{}

// DriveTrain is a swerve drivetrain mechanism.
type DriveTrain struct {
	cfg       drivetrain.SwerveConfig
	modules   []*module
	imu       movementsensor.IMU
	ops       operation.Reader
	telemetry logging.Telemetry
	clock     clock.Clock
	logger    logging.Logger
	assertion control.PowerRangeAssertion

	// odometry
	odometryStarted bool
	imuConnected    bool
	lastYaw         float64
	pose            drivetrain.Pose

	// controller state
	usePID      bool
	started     bool
	key         drivetrain.ModeKey
	drivePIDs   []*control.PIDHandler
	xPID        *control.PIDHandler
	yPID        *control.PIDHandler
	headingPID  *control.PIDHandler
	holdPose    drivetrain.Pose
	holdHeading bool
	headingGoal float64
}

// New returns a swerve drivetrain with modules in the same order as the config's.
func New(
	ctx context.Context,
	cfg drivetrain.SwerveConfig,
	modules []Module,
	opts Options,
	logger logging.Logger,
) (*DriveTrain, error) {
	if len(modules) != len(cfg.Modules) {
		return nil, errors.Errorf("swerve drivetrain configured with %d modules but given %d", len(cfg.Modules), len(modules))
	}
	if opts.Operations == nil {
		return nil, errors.New("swerve drivetrain needs an operation reader")
	}
	cfg = cfg.WithDefaults()
	if opts.Telemetry == nil {
		opts.Telemetry = logging.NewLoggerTelemetry(logger)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	dt := &DriveTrain{
		cfg:       cfg,
		imu:       opts.IMU,
		ops:       opts.Operations,
		telemetry: opts.Telemetry,
		clock:     opts.Clock,
		logger:    logger,
		assertion: control.PowerRangeAssertion{Strict: opts.FailOnPowerRange, Logger: logger},
		usePID:    cfg.UsePID,
	}
	for i, hw := range modules {
		if hw.Drive == nil || hw.Steer == nil {
			return nil, errors.Errorf("module %s needs a drive and a steer motor", cfg.Modules[i].Name)
		}
		if err := hw.Steer.SetPIDF(ctx, cfg.SteerGains.PIDF(), 0); err != nil {
			return nil, errors.Wrapf(err, "module %s steer gains", cfg.Modules[i].Name)
		}
		dt.modules = append(dt.modules, &module{
			cfg:    cfg.Modules[i],
			offset: r2.Point{X: cfg.Modules[i].X, Y: cfg.Modules[i].Y},
			hw:     hw,
		})
	}
	return dt, nil
}

// ReadSensors reads every module and the IMU, and advances the odometry.
func (dt *DriveTrain) ReadSensors(ctx context.Context) error {
	for _, m := range dt.modules {
		if err := m.read(ctx, dt.cfg); err != nil {
			return err
		}
	}

	connected := dt.imu != nil && dt.imu.IsConnected(ctx)
	var yaw float64
	if connected {
		var err error
		if yaw, err = dt.imu.Yaw(ctx); err != nil {
			dt.logger.CWarnw(ctx, "IMU read failed, using wheel odometry", "error", err)
			connected = false
		}
	}
	if connected != dt.imuConnected {
		dt.logger.CInfow(ctx, "IMU connection changed", "connected", connected)
	}
	dt.telemetry.LogBoolean(drivetrain.KeyIMUConnected, connected)

	dt.updateOdometry(connected, yaw)
	return nil
}

// updateOdometry integrates the module displacements. The heading change comes from the IMU
// while it is connected and from the module displacements otherwise.
func (dt *DriveTrain) updateOdometry(connected bool, yaw float64) {
	displacements := make([]r2.Point, len(dt.modules))
	for i, m := range dt.modules {
		displacements[i] = m.displacement()
	}
	wasConnected := dt.imuConnected
	lastYaw := dt.lastYaw
	dt.imuConnected = connected
	if connected {
		dt.lastYaw = yaw
	}
	if !dt.odometryStarted {
		dt.odometryStarted = true
		return
	}

	var translation r2.Point
	var rotation float64
	for i, m := range dt.modules {
		translation = translation.Add(displacements[i])
		rotation += m.offset.Cross(displacements[i]) / m.offset.Dot(m.offset)
	}
	translation = translation.Mul(1 / float64(len(dt.modules)))
	rotation /= float64(len(dt.modules))

	headingDelta := utils.RadToDeg(rotation)
	if connected && wasConnected {
		headingDelta = yaw - lastYaw
	}
	headingDelta *= dt.cfg.HeadingCorrection

	angle := drivetrain.WrapAngleDeg(dt.pose.Angle + headingDelta)
	dt.pose = drivetrain.TranslatePose(dt.pose, rotate(translation, angle), headingDelta)
}

// Update computes and applies the module setpoints for this cycle.
func (dt *DriveTrain) Update(ctx context.Context, mode mechanism.Mode) error {
	dt.applyResets()
	dt.telemetry.LogNumber(drivetrain.KeyXPosition, dt.pose.X())
	dt.telemetry.LogNumber(drivetrain.KeyYPosition, dt.pose.Y())
	dt.telemetry.LogNumber(drivetrain.KeyAngle, dt.pose.Angle)

	if !mode.Enabled() {
		dt.started = false
		return dt.Stop(ctx)
	}

	if dt.ops.GetDigital(operation.DriveTrainEnablePID) {
		dt.usePID = true
	} else if dt.ops.GetDigital(operation.DriveTrainDisablePID) {
		dt.usePID = false
	}
	key := drivetrain.ModeKey{
		Path:       dt.ops.GetDigital(operation.DriveTrainUsePathMode),
		Positional: dt.ops.GetDigital(operation.DriveTrainUsePositionalMode),
		Brake:      dt.ops.GetDigital(operation.DriveTrainUseBrakeMode),
		UsePID:     dt.usePID,
	}
	if !dt.started || key != dt.key {
		dt.rebuild(key)
	}

	var err error
	switch key.Mode() {
	case drivetrain.BrakeMode:
		err = dt.brake(ctx)
	case drivetrain.PathMode:
		goal := drivetrain.Pose{
			Point: r2.Point{
				X: dt.ops.GetAnalog(operation.DriveTrainPathXGoal),
				Y: dt.ops.GetAnalog(operation.DriveTrainPathYGoal),
			},
			Angle: dt.ops.GetAnalog(operation.DriveTrainPathAngleGoal),
		}
		feedForward := r2.Point{
			X: dt.ops.GetAnalog(operation.DriveTrainPathXVelocityGoal),
			Y: dt.ops.GetAnalog(operation.DriveTrainPathYVelocityGoal),
		}.Mul(dt.cfg.Gains.Path.F)
		velocity, omega := dt.poseControl(goal, dt.cfg.Gains.Path)
		err = dt.drive(ctx, velocity.Add(feedForward), omega, true)
	case drivetrain.PositionMode:
		velocity, omega := dt.poseControl(dt.holdPose, dt.cfg.Gains.Position)
		err = dt.drive(ctx, velocity, omega, true)
	default:
		velocity, omega := dt.teleopVelocity()
		err = dt.drive(ctx, velocity, omega, !dt.ops.GetDigital(operation.DriveTrainRobotOriented))
	}
	return err
}

// rebuild replaces every PID handler with ones using the gains of the new key.
func (dt *DriveTrain) rebuild(key drivetrain.ModeKey) {
	dt.started = true
	dt.key = key
	dt.holdPose = dt.pose
	dt.holdHeading = false
	dt.drivePIDs = make([]*control.PIDHandler, len(dt.modules))
	dt.xPID, dt.yPID, dt.headingPID = nil, nil, nil
	if key.UsePID {
		for i := range dt.drivePIDs {
			dt.drivePIDs[i] = control.NewPIDHandler(
				dt.cfg.Gains.Velocity.PIDF(), control.MinPowerLevel, control.MaxPowerLevel, dt.clock)
		}
		translation := dt.cfg.Gains.For(key.Mode()).PIDF()
		dt.xPID = control.NewPIDHandler(translation, -dt.cfg.MaxVelocity, dt.cfg.MaxVelocity, dt.clock)
		dt.yPID = control.NewPIDHandler(translation, -dt.cfg.MaxVelocity, dt.cfg.MaxVelocity, dt.clock)
		dt.headingPID = control.NewPIDHandler(
			dt.cfg.HeadingGains.PIDF(), -dt.cfg.MaxAngularVelocity, dt.cfg.MaxAngularVelocity, dt.clock)
	}
	dt.telemetry.LogString(drivetrain.KeyMode, key.Mode().String())
	dt.telemetry.LogBoolean(drivetrain.KeyUsePID, key.UsePID)
	dt.logger.Debugw("drivetrain controller rebuilt", "mode", key.Mode().String(), "pid", key.UsePID)
}

// teleopVelocity returns the requested field velocity in inches per second and turn rate in
// degrees per second. Turn input is clockwise positive.
func (dt *DriveTrain) teleopVelocity() (r2.Point, float64) {
	forward := dt.ops.GetAnalog(operation.DriveTrainMoveForward)
	right := dt.ops.GetAnalog(operation.DriveTrainMoveRight)
	turn := dt.ops.GetAnalog(operation.DriveTrainTurn)
	if !dt.ops.GetDigital(operation.DriveTrainSimpleMode) {
		forward = utils.SignedSquare(forward)
		right = utils.SignedSquare(right)
		turn = utils.SignedSquare(turn)
	}
	velocity := r2.Point{X: forward, Y: -right}.Mul(dt.cfg.MaxVelocity)
	omega := -turn * dt.cfg.MaxAngularVelocity

	if !dt.ops.GetDigital(operation.DriveTrainHoldHeading) || turn != 0 {
		dt.holdHeading = false
		return velocity, omega
	}
	if !dt.holdHeading {
		dt.holdHeading = true
		dt.headingGoal = dt.pose.Angle
	}
	return velocity, dt.headingControl(dt.headingGoal)
}

// poseControl returns the field velocity and turn rate that drive the pose towards goal.
func (dt *DriveTrain) poseControl(goal drivetrain.Pose, gains drivetrain.Gains) (r2.Point, float64) {
	velocity := r2.Point{
		X: calculate(dt.xPID, gains.P, goal.X(), dt.pose.X(), dt.cfg.MaxVelocity),
		Y: calculate(dt.yPID, gains.P, goal.Y(), dt.pose.Y(), dt.cfg.MaxVelocity),
	}
	return velocity, dt.headingControl(goal.Angle)
}

func (dt *DriveTrain) headingControl(goal float64) float64 {
	headingError := utils.SignedAngleDeg(goal - dt.pose.Angle)
	return calculate(dt.headingPID, dt.cfg.HeadingGains.P, headingError, 0, dt.cfg.MaxAngularVelocity)
}

// calculate runs a position PID, or a plain proportional controller when PID is disabled.
func calculate(pid *control.PIDHandler, p, setpoint, measured, limit float64) float64 {
	if pid != nil {
		return pid.CalculatePosition(setpoint, measured)
	}
	return utils.Clamp(p*(setpoint-measured), -limit, limit)
}

// drive converts a velocity and turn rate into module commands. Module speeds are scaled down
// together so none exceeds the maximum velocity.
func (dt *DriveTrain) drive(ctx context.Context, velocity r2.Point, omega float64, fieldOriented bool) error {
	if fieldOriented {
		velocity = rotate(velocity, -dt.pose.Angle)
	}
	omegaRad := utils.DegToRad(omega)

	speeds := make([]r2.Point, len(dt.modules))
	fastest := 0.0
	for i, m := range dt.modules {
		speeds[i] = velocity.Add(m.offset.Ortho().Mul(omegaRad))
		fastest = math.Max(fastest, speeds[i].Norm())
	}
	if fastest > dt.cfg.MaxVelocity {
		scale := dt.cfg.MaxVelocity / fastest
		for i := range speeds {
			speeds[i] = speeds[i].Mul(scale)
		}
	}

	var errs error
	for i, m := range dt.modules {
		speed := speeds[i].Norm()
		angle := m.angle
		if speed > stoppedSpeed {
			angle = utils.RadToDeg(math.Atan2(speeds[i].Y, speeds[i].X))
		}
		goal, sign := optimize(m.angle, angle)
		power := control.ApplyPowerLevelRange(sign * speed / dt.cfg.MaxVelocity)
		if pid := dt.drivePIDs[i]; pid != nil {
			power = pid.CalculateVelocity(power, m.driveVelocity, dt.cfg.MaxVelocity*dt.cfg.DriveTicksPerInch)
		}
		power = control.ApplyPowerLevelRange(power)
		if err := dt.assertion.Check(m.cfg.Name, power); err != nil {
			errs = multierr.Combine(errs, err)
			power = 0
		}
		errs = multierr.Combine(errs, dt.setModule(ctx, m, goal, power))
	}
	return errs
}

// brake points every module at the robot centre so the robot resists being pushed.
func (dt *DriveTrain) brake(ctx context.Context) error {
	var errs error
	for _, m := range dt.modules {
		goal, _ := optimize(m.angle, utils.RadToDeg(math.Atan2(m.offset.Y, m.offset.X)))
		errs = multierr.Combine(errs, dt.setModule(ctx, m, goal, 0))
	}
	return errs
}

func (dt *DriveTrain) setModule(ctx context.Context, m *module, angle, power float64) error {
	m.angleSetpoint = angle
	m.driveSetpoint = power
	dt.telemetry.LogNumber("DriveTrain"+m.cfg.Name+"Angle", angle)
	dt.telemetry.LogNumber("DriveTrain"+m.cfg.Name+"Power", power)
	return multierr.Combine(
		m.hw.Steer.Set(ctx, motor.Position, angle*dt.cfg.SteerTicksPerDegree),
		m.hw.Drive.Set(ctx, motor.PercentOutput, power),
	)
}

func (dt *DriveTrain) applyResets() {
	if dt.ops.GetDigital(operation.DriveTrainResetFieldOrientation) {
		dt.pose.Angle = drivetrain.WrapAngleDeg(dt.ops.GetAnalog(operation.DriveTrainStartingOrientation))
		dt.holdPose.Angle = dt.pose.Angle
		dt.headingGoal = dt.pose.Angle
	}
	if dt.ops.GetDigital(operation.DriveTrainResetXYPosition) {
		dt.pose.Point = r2.Point{
			X: dt.ops.GetAnalog(operation.DriveTrainStartingXPosition),
			Y: dt.ops.GetAnalog(operation.DriveTrainStartingYPosition),
		}
		dt.holdPose.Point = dt.pose.Point
	}
}

// Stop stops every drive motor and leaves the modules where they point.
func (dt *DriveTrain) Stop(ctx context.Context) error {
	var errs error
	for _, m := range dt.modules {
		m.driveSetpoint = 0
		errs = multierr.Combine(errs, m.hw.Drive.Stop(ctx))
	}
	return errs
}

// Pose returns the odometry pose.
func (dt *DriveTrain) Pose() drivetrain.Pose { return dt.pose }

// ControlMode returns the mode of the current controller.
func (dt *DriveTrain) ControlMode() drivetrain.ControlMode { return dt.key.Mode() }

// IMUConnected reports whether the last heading update came from the IMU.
func (dt *DriveTrain) IMUConnected() bool { return dt.imuConnected }

// ModuleStates returns the readings and commands of every module.
func (dt *DriveTrain) ModuleStates() []ModuleState {
	states := make([]ModuleState, len(dt.modules))
	for i, m := range dt.modules {
		states[i] = m.state()
	}
	return states
}

// XPosition returns the odometry x position in inches.
func (dt *DriveTrain) XPosition() float64 { return dt.pose.X() }

// YPosition returns the odometry y position in inches.
func (dt *DriveTrain) YPosition() float64 { return dt.pose.Y() }

// Angle returns the odometry heading in degrees.
func (dt *DriveTrain) Angle() float64 { return dt.pose.Angle }

// rotate turns p counter-clockwise by degrees.
func rotate(p r2.Point, degrees float64) r2.Point {
	rad := utils.DegToRad(degrees)
	sin, cos := math.Sincos(rad)
	return r2.Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}
