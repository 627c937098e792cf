// Package motor defines the motor controllers the mechanisms drive. A motor controller owns an
// encoder and can run open loop or close its own velocity or position loop.
package motor

import (
	"context"
	"fmt"

	"go.viam.com/frcbot/control"
)

// ControlMode selects how the value passed to Set is interpreted.
type ControlMode uint8

// Control modes.
const (
	// PercentOutput values are power levels in [-1, 1].
	PercentOutput ControlMode = iota
	// Velocity values are encoder ticks per second.
	Velocity
	// Position values are encoder ticks.
	Position
)

func (m ControlMode) String() string {
	switch m {
	case PercentOutput:
		return "PercentOutput"
	case Velocity:
		return "Velocity"
	case Position:
		return "Position"
	}
	return fmt.Sprintf("ControlMode(%d)", m)
}

// A Motor is a motor controller with an integrated encoder.
type Motor interface {
	// Set commands the motor in the given mode.
	Set(ctx context.Context, mode ControlMode, value float64) error
	// Position returns the encoder position in ticks.
	Position(ctx context.Context) (float64, error)
	// Velocity returns the encoder velocity in ticks per second.
	Velocity(ctx context.Context) (float64, error)
	// Error returns the closed loop error of the current Velocity or Position command.
	Error(ctx context.Context) (float64, error)
	// SetPIDF configures the gains the controller uses in closed loop modes for a slot.
	SetPIDF(ctx context.Context, gains control.Gains, slot int) error
	// Follow makes the motor mirror every command given to leader.
	Follow(ctx context.Context, leader Motor) error
	// ResetPosition sets the current encoder position to zero.
	ResetPosition(ctx context.Context) error
	// Stop sets the output to zero.
	Stop(ctx context.Context) error
}
