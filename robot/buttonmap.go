package robot

import (
	"time"

	"github.com/pkg/errors"

	"go.viam.com/frcbot/buttonmap"
	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/input"
	"go.viam.com/frcbot/config"
	"go.viam.com/frcbot/control"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/tasks"
)

// Built-in path parameters, in inches and degrees.
const (
	macroDriveDistance = 24.0
	testPathRadius     = 36.0
	testPathAngle      = 90.0
	positionTolerance  = 1.0
	autonomousPause    = 500 * time.Millisecond
	// tank heading correction power per degree of heading error
	pathHeadingGain = 0.02
	// share of the top speed paths are planned at
	pathSpeedFraction = 0.5
)

// PathOperations are the operations a path following task writes.
var PathOperations = []operation.Operation{
	operation.DriveTrainUsePathMode,
	operation.DriveTrainLeftPosition,
	operation.DriveTrainRightPosition,
	operation.DriveTrainLeftVelocity,
	operation.DriveTrainRightVelocity,
	operation.DriveTrainHeadingCorrection,
	operation.DriveTrainPathXGoal,
	operation.DriveTrainPathYGoal,
	operation.DriveTrainPathXVelocityGoal,
	operation.DriveTrainPathYVelocityGoal,
	operation.DriveTrainPathAngleGoal,
}

// ResetPoseOperations are the operations a pose reset writes.
var ResetPoseOperations = []operation.Operation{
	operation.DriveTrainResetFieldOrientation,
	operation.DriveTrainResetXYPosition,
	operation.DriveTrainStartingXPosition,
	operation.DriveTrainStartingYPosition,
	operation.DriveTrainStartingOrientation,
}

func driverButton(b input.Button) input.Binding {
	return input.Binding{Device: input.DeviceDriver, Button: b}
}

func driverPOV(p input.POV) input.Binding {
	return input.Binding{Device: input.DeviceDriver, Button: input.ButtonPOV, POV: p}
}

// DefaultButtonMap is the team's button map. Macros missing from macros are left out.
func DefaultButtonMap(macros map[operation.MacroOperation]tasks.Factory) buttonmap.Schema {
	debug := operation.NewShiftSet(operation.DriverDebugShift)
	schema := buttonmap.Schema{
		Digital: []buttonmap.DigitalDescription{
			{Operation: operation.DriveTrainEnablePID, Binding: driverButton(input.ButtonStart), ButtonType: input.Click},
			{Operation: operation.DriveTrainSimpleMode, Binding: driverButton(input.ButtonLeftStick), ButtonType: input.Toggle},
			{Operation: operation.DriveTrainUseBrakeMode, Binding: driverButton(input.ButtonX)},
			{Operation: operation.DriveTrainUsePositionalMode, Binding: driverButton(input.ButtonB)},
			{Operation: operation.DriveTrainHoldHeading, Binding: driverButton(input.ButtonRightBumper)},
			{Operation: operation.DriveTrainRobotOriented, Binding: driverButton(input.ButtonLeftBumper)},
			{
				Operation:  operation.DriveTrainResetFieldOrientation,
				Binding:    driverButton(input.ButtonBack),
				ButtonType: input.Click,
			},
			{
				Operation:  operation.DriveTrainDisablePID,
				Binding:    input.Binding{Device: input.DeviceCodriver, Button: input.ButtonStart},
				ButtonType: input.Click,
			},
		},
		Analog: []buttonmap.AnalogDescription{
			{
				Operation: operation.DriveTrainMoveForward,
				Device:    input.DeviceDriver,
				Axis:      input.AxisLeftY,
				Invert:    true,
				Deadzone:  0.1,
			},
			{
				Operation: operation.DriveTrainMoveRight,
				Device:    input.DeviceDriver,
				Axis:      input.AxisLeftX,
				Deadzone:  0.1,
			},
			{
				Operation: operation.DriveTrainTurn,
				Device:    input.DeviceDriver,
				Axis:      input.AxisRightX,
				Deadzone:  0.1,
			},
		},
		Shift: []buttonmap.ShiftDescription{{
			Shift: operation.DriverDebugShift,
			Binding: input.Binding{
				Device: input.DeviceDriver,
				Button: input.ButtonAnalogAxisRange,
				Axis:   input.AxisLeftTrigger,
				Range:  input.Range{Min: 0.5, Max: 1},
			},
		}},
	}

	macroDescriptions := []buttonmap.MacroDescription{
		{
			Operation:          operation.MacroDriveForward,
			Binding:            driverPOV(input.POVUp),
			ButtonType:         input.Click,
			RequiredOperations: PathOperations,
		},
		{
			Operation:          operation.MacroDriveBackward,
			Binding:            driverPOV(input.POVDown),
			ButtonType:         input.Click,
			RequiredOperations: PathOperations,
		},
		{
			Operation:          operation.MacroFollowTestPath,
			Binding:            driverButton(input.ButtonY),
			ButtonType:         input.Toggle,
			RequiredOperations: PathOperations,
			Shifts:             debug,
		},
		{
			Operation:          operation.MacroResetPose,
			Binding:            driverButton(input.ButtonA),
			ButtonType:         input.Click,
			RequiredOperations: ResetPoseOperations,
			Shifts:             debug,
		},
	}
	for _, md := range macroDescriptions {
		if factory, ok := macros[md.Operation]; ok {
			md.Task = factory
			schema.Macro = append(schema.Macro, md)
		}
	}
	return schema
}

// pathProfile is the motion profile paths are planned with.
func (r *Robot) pathProfile() control.TrapezoidProfile {
	var maxVelocity float64
	switch r.cfg.Robot.DriveTrain {
	case config.TankDriveTrain:
		maxVelocity = r.cfg.Tank.VelocityMax / r.cfg.Tank.TicksPerInch
	default:
		maxVelocity = r.cfg.Swerve.MaxVelocity
	}
	maxVelocity *= pathSpeedFraction
	return control.TrapezoidProfile{MaxVelocity: maxVelocity, MaxAcceleration: maxVelocity}
}

func (r *Robot) trackWidth() float64 {
	if r.cfg.Tank == nil {
		return 0
	}
	return r.cfg.Tank.TrackWidth
}

// Macros returns the built-in macros, driving this robot's drivetrain.
func (r *Robot) Macros() (map[operation.MacroOperation]tasks.Factory, error) {
	profile := r.pathProfile()
	step := r.cfg.Robot.Period()
	forward, err := tasks.StraightTrajectory(profile, macroDriveDistance, step)
	if err != nil {
		return nil, errors.Wrap(err, "cannot plan forward path")
	}
	backward, err := tasks.StraightTrajectory(profile, -macroDriveDistance, step)
	if err != nil {
		return nil, errors.Wrap(err, "cannot plan backward path")
	}
	testPath, err := tasks.ArcTrajectory(profile, testPathRadius, testPathAngle, r.trackWidth(), step)
	if err != nil {
		return nil, errors.Wrap(err, "cannot plan test path")
	}
	follow := func(trajectory tasks.Trajectory) tasks.Factory {
		return func() tasks.Task {
			return tasks.NewFollowPathTask(trajectory, r.driveTrain, r.clock, pathHeadingGain)
		}
	}
	return map[operation.MacroOperation]tasks.Factory{
		operation.MacroDriveForward:   follow(forward),
		operation.MacroDriveBackward:  follow(backward),
		operation.MacroFollowTestPath: follow(testPath),
		operation.MacroResetPose: func() tasks.Task {
			return tasks.NewResetPoseTask(drivetrain.Pose{})
		},
	}, nil
}

// AutonomousRoutine resets the pose and drives the test path. A tank drivetrain first drives
// forward in positional mode and pauses.
func (r *Robot) AutonomousRoutine() (tasks.Factory, error) {
	testPath, err := tasks.ArcTrajectory(r.pathProfile(), testPathRadius, testPathAngle, r.trackWidth(), r.cfg.Robot.Period())
	if err != nil {
		return nil, errors.Wrap(err, "cannot plan autonomous path")
	}
	return func() tasks.Task {
		steps := []tasks.Task{tasks.NewResetPoseTask(drivetrain.Pose{})}
		if sides, ok := r.driveTrain.(tasks.TankPositions); ok {
			steps = append(steps,
				tasks.NewPositionDriveTask(sides, macroDriveDistance, macroDriveDistance, positionTolerance),
				tasks.NewWaitTask(autonomousPause, r.clock),
			)
		}
		steps = append(steps, tasks.NewFollowPathTask(testPath, r.driveTrain, r.clock, pathHeadingGain))
		return tasks.NewSequentialTask(steps...)
	}, nil
}
