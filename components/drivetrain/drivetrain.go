// Package drivetrain contains what tank and swerve drivetrains share: the control modes, the
// gain tables, pose and odometry math, and the cross coupling correction.
package drivetrain

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/utils"
)

// ControlMode is the controller a drivetrain runs in a cycle.
type ControlMode uint8

// Control modes, selected from the path, positional and brake operations in that precedence.
const (
	VelocityMode ControlMode = iota
	PositionMode
	BrakeMode
	PathMode
)

func (m ControlMode) String() string {
	switch m {
	case VelocityMode:
		return "velocity"
	case PositionMode:
		return "position"
	case BrakeMode:
		return "brake"
	case PathMode:
		return "path"
	}
	return fmt.Sprintf("ControlMode(%d)", m)
}

// SelectMode picks the control mode for the requested flags.
func SelectMode(path, positional, brake bool) ControlMode {
	switch {
	case path:
		return PathMode
	case brake:
		return BrakeMode
	case positional:
		return PositionMode
	default:
		return VelocityMode
	}
}

// ModeKey identifies a controller configuration. Whenever it changes between cycles the
// drivetrain throws away its PID handlers and builds new ones, so no integral or derivative
// history crosses a mode change.
type ModeKey struct {
	Path       bool
	Positional bool
	Brake      bool
	UsePID     bool
}

// Mode is the control mode the key selects.
func (k ModeKey) Mode() ControlMode {
	return SelectMode(k.Path, k.Positional, k.Brake)
}

// A DriveTrain is a mechanism that also keeps a field pose.
type DriveTrain interface {
	mechanism.Mechanism
	// Pose is the odometry estimate as of the last ReadSensors or reset.
	Pose() Pose
	// ControlMode is the mode used by the last Update.
	ControlMode() ControlMode
}

// Pose is a field position in inches and a heading in degrees, counter-clockwise from the field
// x axis, in [0, 360).
type Pose struct {
	Point r2.Point
	Angle float64
}

// X returns the x position.
func (p Pose) X() float64 { return p.Point.X }

// Y returns the y position.
func (p Pose) Y() float64 { return p.Point.Y }

// WrapAngleDeg wraps a heading into [0, 360).
func WrapAngleDeg(angle float64) float64 {
	return utils.ModAngDeg(angle)
}

// IntegratePose turns the pose by headingDelta degrees and then moves it distance inches along
// the new heading.
func IntegratePose(p Pose, distance, headingDelta float64) Pose {
	angle := WrapAngleDeg(p.Angle + headingDelta)
	rad := utils.DegToRad(angle)
	return Pose{
		Point: p.Point.Add(r2.Point{X: math.Cos(rad), Y: math.Sin(rad)}.Mul(distance)),
		Angle: angle,
	}
}

// TranslatePose moves the pose by a field relative displacement and turns it by headingDelta.
func TranslatePose(p Pose, displacement r2.Point, headingDelta float64) Pose {
	return Pose{Point: p.Point.Add(displacement), Angle: WrapAngleDeg(p.Angle + headingDelta)}
}

// CrossCouple corrects two side outputs by the difference of their tracking errors. When the
// errors differ by more than deadband, the side that lags further behind its goal gets k times
// the difference added and the other side gets it subtracted, keeping the robot straight.
func CrossCouple(left, right, leftError, rightError, k, deadband float64) (float64, float64) {
	diff := leftError - rightError
	if math.Abs(diff) <= deadband {
		return left, right
	}
	return left + k*diff, right - k*diff
}
