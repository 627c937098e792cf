package tasks

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/frcbot/control"
	"go.viam.com/frcbot/utils"
)

// TrajectoryState is a planned state at a time from the start of a path. Positions are in inches
// and headings in degrees, relative to the pose the path starts from with x forward and y left.
type TrajectoryState struct {
	Time    time.Duration
	X       float64
	Y       float64
	Heading float64

	XVelocity float64
	YVelocity float64

	// tank side distances and velocities
	LeftPosition  float64
	RightPosition float64
	LeftVelocity  float64
	RightVelocity float64
}

// Trajectory is a list of states in increasing time order.
type Trajectory struct {
	States []TrajectoryState
}

// Duration is the time of the last state.
func (tr Trajectory) Duration() time.Duration {
	if len(tr.States) == 0 {
		return 0
	}
	return tr.States[len(tr.States)-1].Time
}

// Sample returns the state at t, interpolated linearly between the two nearest states. Times
// before the first or after the last state return that state.
func (tr Trajectory) Sample(t time.Duration) TrajectoryState {
	if len(tr.States) == 0 {
		return TrajectoryState{Time: t}
	}
	i := sort.Search(len(tr.States), func(i int) bool { return tr.States[i].Time > t })
	if i == 0 {
		return tr.States[0]
	}
	if i == len(tr.States) {
		return tr.States[len(tr.States)-1]
	}
	a, b := tr.States[i-1], tr.States[i]
	frac := float64(t-a.Time) / float64(b.Time-a.Time)
	lerp := func(x, y float64) float64 { return x + (y-x)*frac }
	return TrajectoryState{
		Time:          t,
		X:             lerp(a.X, b.X),
		Y:             lerp(a.Y, b.Y),
		Heading:       lerp(a.Heading, b.Heading),
		XVelocity:     lerp(a.XVelocity, b.XVelocity),
		YVelocity:     lerp(a.YVelocity, b.YVelocity),
		LeftPosition:  lerp(a.LeftPosition, b.LeftPosition),
		RightPosition: lerp(a.RightPosition, b.RightPosition),
		LeftVelocity:  lerp(a.LeftVelocity, b.LeftVelocity),
		RightVelocity: lerp(a.RightVelocity, b.RightVelocity),
	}
}

func sampleProfile(
	profile control.TrapezoidProfile,
	length float64,
	step time.Duration,
	state func(t time.Duration, p control.ProfileState) TrajectoryState,
) (Trajectory, error) {
	if err := profile.Validate(); err != nil {
		return Trajectory{}, err
	}
	if step <= 0 {
		return Trajectory{}, errors.Errorf("trajectory step must be positive, got %v", step)
	}
	duration := profile.Duration(length)
	var tr Trajectory
	for t := time.Duration(0); t < duration; t += step {
		tr.States = append(tr.States, state(t, profile.Sample(length, t)))
	}
	tr.States = append(tr.States, state(duration, profile.Sample(length, duration)))
	return tr, nil
}

// StraightTrajectory plans driving distance inches straight ahead, or backwards if negative.
func StraightTrajectory(profile control.TrapezoidProfile, distance float64, step time.Duration) (Trajectory, error) {
	return sampleProfile(profile, distance, step, func(t time.Duration, p control.ProfileState) TrajectoryState {
		return TrajectoryState{
			Time:          t,
			X:             p.Position,
			XVelocity:     p.Velocity,
			LeftPosition:  p.Position,
			RightPosition: p.Position,
			LeftVelocity:  p.Velocity,
			RightVelocity: p.Velocity,
		}
	})
}

// ArcTrajectory plans driving forward along a circle of radius inches until the heading has
// changed by degrees, turning left when degrees is positive. trackWidth sets the side distances.
func ArcTrajectory(
	profile control.TrapezoidProfile,
	radius, degrees, trackWidth float64,
	step time.Duration,
) (Trajectory, error) {
	if radius <= 0 {
		return Trajectory{}, errors.Errorf("arc radius must be positive, got %v", radius)
	}
	sign := 1.0
	if degrees < 0 {
		sign = -1
	}
	length := radius * utils.DegToRad(math.Abs(degrees))
	leftScale := (radius - sign*trackWidth/2) / radius
	rightScale := (radius + sign*trackWidth/2) / radius
	return sampleProfile(profile, length, step, func(t time.Duration, p control.ProfileState) TrajectoryState {
		theta := p.Position / radius
		heading := sign * theta
		return TrajectoryState{
			Time:          t,
			X:             radius * math.Sin(theta),
			Y:             sign * radius * (1 - math.Cos(theta)),
			Heading:       utils.RadToDeg(heading),
			XVelocity:     p.Velocity * math.Cos(heading),
			YVelocity:     p.Velocity * math.Sin(heading),
			LeftPosition:  p.Position * leftScale,
			RightPosition: p.Position * rightScale,
			LeftVelocity:  p.Velocity * leftScale,
			RightVelocity: p.Velocity * rightScale,
		}
	})
}
