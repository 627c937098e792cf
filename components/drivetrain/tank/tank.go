// Package tank implements a tank drivetrain: one motor group per side, steered by driving the
// sides at different speeds.
package tank

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/control"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/utils"
)

// positionalMinError is the error in inches below which the proportional position fallback
// stops driving a side.
const positionalMinError = 1.0

// Motors are the motor groups of a tank drivetrain.
type Motors struct {
	Left           motor.Motor
	Right          motor.Motor
	LeftFollowers  []motor.Motor
	RightFollowers []motor.Motor
}

// Options are the collaborators of a tank drivetrain. Telemetry and Clock may be nil.
type Options struct {
	Operations       operation.Reader
	Telemetry        logging.Telemetry
	Clock            clock.Clock
	FailOnPowerRange bool
}

var _ drivetrain.DriveTrain = &DriveTrain{}

// DriveTrain is a tank drivetrain mechanism.
type DriveTrain struct {
	cfg       drivetrain.TankConfig
	left      motor.Motor
	right     motor.Motor
	ops       operation.Reader
	telemetry logging.Telemetry
	clock     clock.Clock
	logger    logging.Logger
	assertion control.PowerRangeAssertion

	// readings of the current cycle
	leftVelocity  float64
	rightVelocity float64
	leftError     float64
	rightError    float64
	leftPosition  float64
	rightPosition float64

	// odometry
	odometryStarted   bool
	lastLeftPosition  float64
	lastRightPosition float64
	pose              drivetrain.Pose

	// controller state
	usePID         bool
	started        bool
	key            drivetrain.ModeKey
	leftPID        *control.PIDHandler
	rightPID       *control.PIDHandler
	brakeLeftGoal  float64
	brakeRightGoal float64
	leftSetpoint   float64
	rightSetpoint  float64
}

// New returns a tank drivetrain. Followers are set to follow their side's leader.
func New(
	ctx context.Context,
	cfg drivetrain.TankConfig,
	motors Motors,
	opts Options,
	logger logging.Logger,
) (*DriveTrain, error) {
	if motors.Left == nil || motors.Right == nil {
		return nil, errors.New("tank drivetrain needs a left and a right motor")
	}
	if opts.Operations == nil {
		return nil, errors.New("tank drivetrain needs an operation reader")
	}
	cfg = cfg.WithDefaults()
	if opts.Telemetry == nil {
		opts.Telemetry = logging.NewLoggerTelemetry(logger)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	for _, f := range motors.LeftFollowers {
		if err := f.Follow(ctx, motors.Left); err != nil {
			return nil, errors.Wrap(err, "left follower")
		}
	}
	for _, f := range motors.RightFollowers {
		if err := f.Follow(ctx, motors.Right); err != nil {
			return nil, errors.Wrap(err, "right follower")
		}
	}

	return &DriveTrain{
		cfg:       cfg,
		left:      motors.Left,
		right:     motors.Right,
		ops:       opts.Operations,
		telemetry: opts.Telemetry,
		clock:     opts.Clock,
		logger:    logger,
		assertion: control.PowerRangeAssertion{Strict: opts.FailOnPowerRange, Logger: logger},
		usePID:    cfg.UsePID,
	}, nil
}

// ReadSensors reads both encoders and advances the odometry.
func (dt *DriveTrain) ReadSensors(ctx context.Context) error {
	var err error
	var leftTicks, rightTicks float64
	if dt.leftVelocity, err = dt.left.Velocity(ctx); err != nil {
		return errors.Wrap(err, "left velocity")
	}
	if dt.rightVelocity, err = dt.right.Velocity(ctx); err != nil {
		return errors.Wrap(err, "right velocity")
	}
	if dt.leftError, err = dt.left.Error(ctx); err != nil {
		return errors.Wrap(err, "left error")
	}
	if dt.rightError, err = dt.right.Error(ctx); err != nil {
		return errors.Wrap(err, "right error")
	}
	if leftTicks, err = dt.left.Position(ctx); err != nil {
		return errors.Wrap(err, "left position")
	}
	if rightTicks, err = dt.right.Position(ctx); err != nil {
		return errors.Wrap(err, "right position")
	}
	dt.leftPosition = leftTicks / dt.cfg.TicksPerInch
	dt.rightPosition = rightTicks / dt.cfg.TicksPerInch

	dt.updateOdometry()

	dt.telemetry.LogNumber(drivetrain.KeyLeftVelocity, dt.leftVelocity)
	dt.telemetry.LogNumber(drivetrain.KeyRightVelocity, dt.rightVelocity)
	dt.telemetry.LogNumber(drivetrain.KeyLeftError, dt.leftError)
	dt.telemetry.LogNumber(drivetrain.KeyRightError, dt.rightError)
	dt.telemetry.LogNumber(drivetrain.KeyLeftPosition, dt.leftPosition)
	dt.telemetry.LogNumber(drivetrain.KeyRightPosition, dt.rightPosition)
	return nil
}

// updateOdometry integrates the distance each side travelled since the last reading. The
// heading change comes from the difference between the sides.
func (dt *DriveTrain) updateOdometry() {
	if !dt.odometryStarted {
		dt.odometryStarted = true
		dt.lastLeftPosition = dt.leftPosition
		dt.lastRightPosition = dt.rightPosition
		return
	}
	leftDelta := dt.leftPosition - dt.lastLeftPosition
	rightDelta := dt.rightPosition - dt.lastRightPosition
	dt.lastLeftPosition = dt.leftPosition
	dt.lastRightPosition = dt.rightPosition

	headingDelta := utils.RadToDeg((rightDelta-leftDelta)/dt.cfg.TrackWidth) * dt.cfg.HeadingCorrection
	dt.pose = drivetrain.IntegratePose(dt.pose, (leftDelta+rightDelta)/2, headingDelta)
}

// Update computes and applies the side setpoints for this cycle.
func (dt *DriveTrain) Update(ctx context.Context, mode mechanism.Mode) error {
	dt.applyResets()
	dt.logPose()

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

	var left, right float64
	switch key.Mode() {
	case drivetrain.PathMode:
		left, right = dt.pathSetpoints()
	case drivetrain.BrakeMode:
		goalLeft, goalRight := dt.brakeLeftGoal, dt.brakeRightGoal
		if key.Positional {
			goalLeft = dt.ops.GetAnalog(operation.DriveTrainLeftPosition)
			goalRight = dt.ops.GetAnalog(operation.DriveTrainRightPosition)
		}
		left, right = dt.positionSetpoints(goalLeft, goalRight, dt.cfg.Gains.Brake)
	case drivetrain.PositionMode:
		left, right = dt.positionSetpoints(
			dt.ops.GetAnalog(operation.DriveTrainLeftPosition),
			dt.ops.GetAnalog(operation.DriveTrainRightPosition),
			dt.cfg.Gains.Position,
		)
	default:
		left, right = dt.velocitySetpoints()
	}

	left = control.ApplyPowerLevelRange(left)
	right = control.ApplyPowerLevelRange(right)
	assertErr := multierr.Combine(
		dt.assertion.Check(drivetrain.KeyLeftSetpoint, left),
		dt.assertion.Check(drivetrain.KeyRightSetpoint, right),
	)
	if assertErr != nil {
		return multierr.Combine(assertErr, dt.Stop(ctx))
	}

	dt.leftSetpoint, dt.rightSetpoint = left, right
	dt.telemetry.LogNumber(drivetrain.KeyLeftSetpoint, left)
	dt.telemetry.LogNumber(drivetrain.KeyRightSetpoint, right)
	return multierr.Combine(
		dt.left.Set(ctx, motor.PercentOutput, left),
		dt.right.Set(ctx, motor.PercentOutput, right),
	)
}

// rebuild replaces the PID handlers with ones using the gains of the new key.
func (dt *DriveTrain) rebuild(key drivetrain.ModeKey) {
	if key.Brake && (!dt.started || !dt.key.Brake) {
		dt.brakeLeftGoal = dt.leftPosition
		dt.brakeRightGoal = dt.rightPosition
	}

	dt.started = true
	dt.key = key
	dt.leftPID, dt.rightPID = nil, nil
	if key.UsePID {
		gains := dt.cfg.Gains.For(key.Mode()).PIDF()
		dt.leftPID = control.NewPIDHandler(gains, control.MinPowerLevel, control.MaxPowerLevel, dt.clock)
		dt.rightPID = control.NewPIDHandler(gains, control.MinPowerLevel, control.MaxPowerLevel, dt.clock)
	}
	dt.telemetry.LogString(drivetrain.KeyMode, key.Mode().String())
	dt.telemetry.LogBoolean(drivetrain.KeyUsePID, key.UsePID)
	dt.logger.Debugw("drivetrain controller rebuilt", "mode", key.Mode().String(), "pid", key.UsePID)
}

func (dt *DriveTrain) velocitySetpoints() (float64, float64) {
	forward := dt.ops.GetAnalog(operation.DriveTrainMoveForward)
	turn := dt.ops.GetAnalog(operation.DriveTrainTurn)
	if !dt.ops.GetDigital(operation.DriveTrainSimpleMode) {
		forward = utils.SignedSquare(forward)
		turn = utils.SignedSquare(turn)
	}

	left := dt.cfg.ForwardWeight*forward + dt.cfg.TurnWeight*turn
	right := dt.cfg.ForwardWeight*forward - dt.cfg.TurnWeight*turn
	left = control.ApplyPowerLevelRange(left * dt.cfg.MaxPowerLevel)
	right = control.ApplyPowerLevelRange(right * dt.cfg.MaxPowerLevel)

	if dt.leftPID == nil {
		return left, right
	}
	return dt.leftPID.CalculateVelocity(left, dt.leftVelocity, dt.cfg.VelocityMax),
		dt.rightPID.CalculateVelocity(right, dt.rightVelocity, dt.cfg.VelocityMax)
}

func (dt *DriveTrain) positionSetpoints(goalLeft, goalRight float64, gains drivetrain.Gains) (float64, float64) {
	leftError := goalLeft - dt.leftPosition
	rightError := goalRight - dt.rightPosition

	if dt.leftPID == nil {
		return proportional(leftError, gains.P), proportional(rightError, gains.P)
	}

	left := dt.leftPID.CalculatePosition(goalLeft, dt.leftPosition)
	right := dt.rightPID.CalculatePosition(goalRight, dt.rightPosition)
	return drivetrain.CrossCouple(left, right, leftError, rightError, gains.CrossCouplingK, dt.cfg.CrossCouplingDeadband)
}

func (dt *DriveTrain) pathSetpoints() (float64, float64) {
	gains := dt.cfg.Gains.Path
	goalLeft := dt.ops.GetAnalog(operation.DriveTrainLeftPosition)
	goalRight := dt.ops.GetAnalog(operation.DriveTrainRightPosition)
	leftError := goalLeft - dt.leftPosition
	rightError := goalRight - dt.rightPosition
	leftFeedForward := dt.ops.GetAnalog(operation.DriveTrainLeftVelocity) * gains.F
	rightFeedForward := dt.ops.GetAnalog(operation.DriveTrainRightVelocity) * gains.F

	var left, right float64
	if dt.leftPID == nil {
		left = proportional(leftError, gains.P) + leftFeedForward
		right = proportional(rightError, gains.P) + rightFeedForward
	} else {
		left = dt.leftPID.CalculatePosition(goalLeft, dt.leftPosition) + leftFeedForward
		right = dt.rightPID.CalculatePosition(goalRight, dt.rightPosition) + rightFeedForward
	}
	left, right = drivetrain.CrossCouple(left, right, leftError, rightError, gains.CrossCouplingK, dt.cfg.CrossCouplingDeadband)

	heading := dt.ops.GetAnalog(operation.DriveTrainHeadingCorrection)
	return left - heading, right + heading
}

// proportional is the position controller used when PID is disabled.
func proportional(err, p float64) float64 {
	if math.Abs(err) < positionalMinError {
		return 0
	}
	return control.ApplyPowerLevelRange(p * err)
}

// applyResets handles the pose reset operations.
func (dt *DriveTrain) applyResets() {
	if dt.ops.GetDigital(operation.DriveTrainResetFieldOrientation) {
		dt.pose.Angle = drivetrain.WrapAngleDeg(dt.ops.GetAnalog(operation.DriveTrainStartingOrientation))
	}
	if dt.ops.GetDigital(operation.DriveTrainResetXYPosition) {
		dt.pose.Point.X = dt.ops.GetAnalog(operation.DriveTrainStartingXPosition)
		dt.pose.Point.Y = dt.ops.GetAnalog(operation.DriveTrainStartingYPosition)
	}
}

func (dt *DriveTrain) logPose() {
	dt.telemetry.LogNumber(drivetrain.KeyXPosition, dt.pose.X())
	dt.telemetry.LogNumber(drivetrain.KeyYPosition, dt.pose.Y())
	dt.telemetry.LogNumber(drivetrain.KeyAngle, dt.pose.Angle)
}

// Stop sets both sides to zero power.
func (dt *DriveTrain) Stop(ctx context.Context) error {
	dt.leftSetpoint, dt.rightSetpoint = 0, 0
	return multierr.Combine(dt.left.Stop(ctx), dt.right.Stop(ctx))
}

// Pose returns the odometry pose.
func (dt *DriveTrain) Pose() drivetrain.Pose { return dt.pose }

// ControlMode returns the mode of the current controller.
func (dt *DriveTrain) ControlMode() drivetrain.ControlMode { return dt.key.Mode() }

// UsingPID reports whether the current controller uses PID.
func (dt *DriveTrain) UsingPID() bool { return dt.key.UsePID }

// ActiveGains returns the gains of the current PID handlers, if PID is in use.
func (dt *DriveTrain) ActiveGains() (control.Gains, bool) {
	if dt.leftPID == nil {
		return control.Gains{}, false
	}
	return dt.leftPID.Gains(), true
}

// Setpoints returns the power levels applied by the last Update.
func (dt *DriveTrain) Setpoints() (left, right float64) { return dt.leftSetpoint, dt.rightSetpoint }

// LeftVelocity returns the left encoder velocity in ticks per second.
func (dt *DriveTrain) LeftVelocity() float64 { return dt.leftVelocity }

// RightVelocity returns the right encoder velocity in ticks per second.
func (dt *DriveTrain) RightVelocity() float64 { return dt.rightVelocity }

// LeftPosition returns the left distance in inches.
func (dt *DriveTrain) LeftPosition() float64 { return dt.leftPosition }

// RightPosition returns the right distance in inches.
func (dt *DriveTrain) RightPosition() float64 { return dt.rightPosition }

// LeftError returns the left motor controller's closed loop error.
func (dt *DriveTrain) LeftError() float64 { return dt.leftError }

// RightError returns the right motor controller's closed loop error.
func (dt *DriveTrain) RightError() float64 { return dt.rightError }

// XPosition returns the odometry x position in inches.
func (dt *DriveTrain) XPosition() float64 { return dt.pose.X() }

// YPosition returns the odometry y position in inches.
func (dt *DriveTrain) YPosition() float64 { return dt.pose.Y() }

// Angle returns the odometry heading in degrees.
func (dt *DriveTrain) Angle() float64 { return dt.pose.Angle }
