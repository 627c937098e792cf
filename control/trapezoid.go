package control

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// TrapezoidProfile plans a straight move from rest to rest that accelerates at MaxAcceleration,
// cruises at MaxVelocity and decelerates symmetrically. Short moves never reach MaxVelocity and
// peak at sqrt(distance*MaxAcceleration).
type TrapezoidProfile struct {
	MaxVelocity     float64 `json:"max_velocity"`
	MaxAcceleration float64 `json:"max_acceleration"`
}

// ProfileState is the planned position and velocity at one instant.
type ProfileState struct {
	Position float64
	Velocity float64
}

// Validate ensures the profile can be planned.
func (p TrapezoidProfile) Validate() error {
	if p.MaxVelocity <= 0 {
		return errors.Errorf("trapezoid profile needs a positive max_velocity, got %v", p.MaxVelocity)
	}
	if p.MaxAcceleration <= 0 {
		return errors.Errorf("trapezoid profile needs a positive max_acceleration, got %v", p.MaxAcceleration)
	}
	return nil
}

type trapezoidPlan struct {
	dir      float64
	distance float64
	peak     float64
	tAcc     float64
	tCruise  float64
	dAcc     float64
}

func (p TrapezoidProfile) plan(distance float64) trapezoidPlan {
	d := math.Abs(distance)
	peak := math.Min(math.Sqrt(d*p.MaxAcceleration), p.MaxVelocity)
	plan := trapezoidPlan{dir: 1, distance: d, peak: peak}
	if distance < 0 {
		plan.dir = -1
	}
	if peak <= 0 {
		return plan
	}
	plan.tAcc = peak / p.MaxAcceleration
	plan.dAcc = peak * peak / (2 * p.MaxAcceleration)
	plan.tCruise = (d - 2*plan.dAcc) / peak
	return plan
}

// Duration returns how long the move takes.
func (p TrapezoidProfile) Duration(distance float64) time.Duration {
	plan := p.plan(distance)
	return time.Duration((2*plan.tAcc + plan.tCruise) * float64(time.Second))
}

// Sample returns the planned state t into the move. Before the start the state is at rest at 0
// and after the end it is at rest at distance.
func (p TrapezoidProfile) Sample(distance float64, t time.Duration) ProfileState {
	plan := p.plan(distance)
	ts := t.Seconds()
	total := 2*plan.tAcc + plan.tCruise
	a := p.MaxAcceleration

	var state ProfileState
	switch {
	case ts <= 0:
	case ts < plan.tAcc:
		state = ProfileState{Position: 0.5 * a * ts * ts, Velocity: a * ts}
	case ts < plan.tAcc+plan.tCruise:
		state = ProfileState{Position: plan.dAcc + plan.peak*(ts-plan.tAcc), Velocity: plan.peak}
	case ts < total:
		remaining := total - ts
		state = ProfileState{Position: plan.distance - 0.5*a*remaining*remaining, Velocity: a * remaining}
	default:
		state = ProfileState{Position: plan.distance}
	}
	state.Position *= plan.dir
	state.Velocity *= plan.dir
	return state
}
