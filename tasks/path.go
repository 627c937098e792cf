package tasks

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/utils"
)

// FollowPathTask drives a trajectory in path mode, starting from the pose the drivetrain is at
// when the task begins. It writes goals for both drivetrain kinds: side distances and velocities
// with a heading correction for tank, and field x, y and angle goals for swerve.
type FollowPathTask struct {
	trajectory Trajectory
	dt         PoseReader
	clock      clock.Clock
	kHeading   float64

	start      time.Time
	startPose  drivetrain.Pose
	startLeft  float64
	startRight float64
}

// NewFollowPathTask returns a task following trajectory. kHeading converts the heading error in
// degrees into the tank heading correction power.
func NewFollowPathTask(trajectory Trajectory, dt PoseReader, clk clock.Clock, kHeading float64) *FollowPathTask {
	if clk == nil {
		clk = clock.New()
	}
	return &FollowPathTask{trajectory: trajectory, dt: dt, clock: clk, kHeading: kHeading}
}

// Begin latches the starting pose and side positions.
func (t *FollowPathTask) Begin(w operation.Writer) {
	t.start = t.clock.Now()
	t.startPose = t.dt.Pose()
	if sides, ok := t.dt.(TankPositions); ok {
		t.startLeft = sides.LeftPosition()
		t.startRight = sides.RightPosition()
	}
	t.Update(w)
}

// Update writes the goals for the current point of the trajectory.
func (t *FollowPathTask) Update(w operation.Writer) {
	state := t.trajectory.Sample(t.clock.Since(t.start))
	w.SetDigital(operation.DriveTrainUsePathMode, true)

	w.SetAnalog(operation.DriveTrainLeftPosition, t.startLeft+state.LeftPosition)
	w.SetAnalog(operation.DriveTrainRightPosition, t.startRight+state.RightPosition)
	w.SetAnalog(operation.DriveTrainLeftVelocity, state.LeftVelocity)
	w.SetAnalog(operation.DriveTrainRightVelocity, state.RightVelocity)

	expected := t.startPose.Angle + state.Heading
	headingError := utils.SignedAngleDeg(expected - t.dt.Pose().Angle)
	w.SetAnalog(operation.DriveTrainHeadingCorrection, t.kHeading*headingError)

	position := t.startPose.Point.Add(rotate(r2.Point{X: state.X, Y: state.Y}, t.startPose.Angle))
	velocity := rotate(r2.Point{X: state.XVelocity, Y: state.YVelocity}, t.startPose.Angle)
	w.SetAnalog(operation.DriveTrainPathXGoal, position.X)
	w.SetAnalog(operation.DriveTrainPathYGoal, position.Y)
	w.SetAnalog(operation.DriveTrainPathXVelocityGoal, velocity.X)
	w.SetAnalog(operation.DriveTrainPathYVelocityGoal, velocity.Y)
	w.SetAnalog(operation.DriveTrainPathAngleGoal, drivetrain.WrapAngleDeg(expected))
}

// HasCompleted reports whether the trajectory's duration has passed.
func (t *FollowPathTask) HasCompleted() bool {
	return t.clock.Since(t.start) >= t.trajectory.Duration()
}

// ShouldCancel is always false.
func (t *FollowPathTask) ShouldCancel() bool { return false }

// End leaves path mode.
func (t *FollowPathTask) End(w operation.Writer) {
	w.SetDigital(operation.DriveTrainUsePathMode, false)
	w.SetAnalog(operation.DriveTrainHeadingCorrection, 0)
	w.SetAnalog(operation.DriveTrainLeftVelocity, 0)
	w.SetAnalog(operation.DriveTrainRightVelocity, 0)
	w.SetAnalog(operation.DriveTrainPathXVelocityGoal, 0)
	w.SetAnalog(operation.DriveTrainPathYVelocityGoal, 0)
}

// Stop leaves path mode.
func (t *FollowPathTask) Stop(w operation.Writer) {
	t.End(w)
}

func rotate(p r2.Point, degrees float64) r2.Point {
	sin, cos := math.Sincos(utils.DegToRad(degrees))
	return r2.Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}
