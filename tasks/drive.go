package tasks

import (
	"math"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/operation"
)

// TankPositions is implemented by drivetrains that report per side distances in inches.
type TankPositions interface {
	LeftPosition() float64
	RightPosition() float64
}

// PoseReader is implemented by every drivetrain.
type PoseReader interface {
	Pose() drivetrain.Pose
}

// PositionDriveTask drives each side of a tank drivetrain a relative distance in positional mode.
type PositionDriveTask struct {
	dt                  TankPositions
	left, right         float64
	tolerance           float64
	goalLeft, goalRight float64
}

// NewPositionDriveTask returns a task moving the sides left and right inches, complete once both
// are within tolerance of their goals.
func NewPositionDriveTask(dt TankPositions, left, right, tolerance float64) *PositionDriveTask {
	return &PositionDriveTask{dt: dt, left: left, right: right, tolerance: tolerance}
}

// Begin latches the goals relative to the current positions.
func (t *PositionDriveTask) Begin(w operation.Writer) {
	t.goalLeft = t.dt.LeftPosition() + t.left
	t.goalRight = t.dt.RightPosition() + t.right
	t.Update(w)
}

// Update writes positional mode and the goals.
func (t *PositionDriveTask) Update(w operation.Writer) {
	w.SetDigital(operation.DriveTrainUsePositionalMode, true)
	w.SetAnalog(operation.DriveTrainLeftPosition, t.goalLeft)
	w.SetAnalog(operation.DriveTrainRightPosition, t.goalRight)
}

// HasCompleted reports whether both sides reached their goals.
func (t *PositionDriveTask) HasCompleted() bool {
	return math.Abs(t.dt.LeftPosition()-t.goalLeft) <= t.tolerance &&
		math.Abs(t.dt.RightPosition()-t.goalRight) <= t.tolerance
}

// ShouldCancel is always false.
func (t *PositionDriveTask) ShouldCancel() bool { return false }

// End leaves positional mode.
func (t *PositionDriveTask) End(w operation.Writer) {
	w.SetDigital(operation.DriveTrainUsePositionalMode, false)
}

// Stop leaves positional mode.
func (t *PositionDriveTask) Stop(w operation.Writer) {
	t.End(w)
}

// ResetPoseTask resets the odometry to a pose. It completes after one update.
type ResetPoseTask struct {
	pose drivetrain.Pose
	done bool
}

// NewResetPoseTask returns a task resetting the odometry to pose.
func NewResetPoseTask(pose drivetrain.Pose) *ResetPoseTask {
	return &ResetPoseTask{pose: pose}
}

// Begin does nothing.
func (t *ResetPoseTask) Begin(w operation.Writer) {
	t.done = false
}

// Update requests the reset.
func (t *ResetPoseTask) Update(w operation.Writer) {
	w.SetDigital(operation.DriveTrainResetFieldOrientation, true)
	w.SetDigital(operation.DriveTrainResetXYPosition, true)
	w.SetAnalog(operation.DriveTrainStartingXPosition, t.pose.X())
	w.SetAnalog(operation.DriveTrainStartingYPosition, t.pose.Y())
	w.SetAnalog(operation.DriveTrainStartingOrientation, t.pose.Angle)
	t.done = true
}

// HasCompleted reports whether the reset was requested.
func (t *ResetPoseTask) HasCompleted() bool { return t.done }

// ShouldCancel is always false.
func (t *ResetPoseTask) ShouldCancel() bool { return false }

// End clears the reset request.
func (t *ResetPoseTask) End(w operation.Writer) {
	w.SetDigital(operation.DriveTrainResetFieldOrientation, false)
	w.SetDigital(operation.DriveTrainResetXYPosition, false)
}

// Stop clears the reset request.
func (t *ResetPoseTask) Stop(w operation.Writer) {
	t.End(w)
}
