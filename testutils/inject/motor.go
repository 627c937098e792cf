package inject

import (
	"context"

	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/control"
)

// Motor is an injected motor.
type Motor struct {
	motor.Motor
	SetFunc           func(ctx context.Context, mode motor.ControlMode, value float64) error
	PositionFunc      func(ctx context.Context) (float64, error)
	VelocityFunc      func(ctx context.Context) (float64, error)
	ErrorFunc         func(ctx context.Context) (float64, error)
	SetPIDFFunc       func(ctx context.Context, gains control.Gains, slot int) error
	FollowFunc        func(ctx context.Context, leader motor.Motor) error
	ResetPositionFunc func(ctx context.Context) error
	StopFunc          func(ctx context.Context) error
}

// Set calls the injected Set or the real version.
func (m *Motor) Set(ctx context.Context, mode motor.ControlMode, value float64) error {
	if m.SetFunc == nil {
		return m.Motor.Set(ctx, mode, value)
	}
	return m.SetFunc(ctx, mode, value)
}

// Position calls the injected Position or the real version.
func (m *Motor) Position(ctx context.Context) (float64, error) {
	if m.PositionFunc == nil {
		return m.Motor.Position(ctx)
	}
	return m.PositionFunc(ctx)
}

// Velocity calls the injected Velocity or the real version.
func (m *Motor) Velocity(ctx context.Context) (float64, error) {
	if m.VelocityFunc == nil {
		return m.Motor.Velocity(ctx)
	}
	return m.VelocityFunc(ctx)
}

// Error calls the injected Error or the real version.
func (m *Motor) Error(ctx context.Context) (float64, error) {
	if m.ErrorFunc == nil {
		return m.Motor.Error(ctx)
	}
	return m.ErrorFunc(ctx)
}

// SetPIDF calls the injected SetPIDF or the real version.
func (m *Motor) SetPIDF(ctx context.Context, gains control.Gains, slot int) error {
	if m.SetPIDFFunc == nil {
		return m.Motor.SetPIDF(ctx, gains, slot)
	}
	return m.SetPIDFFunc(ctx, gains, slot)
}

// Follow calls the injected Follow or the real version.
func (m *Motor) Follow(ctx context.Context, leader motor.Motor) error {
	if m.FollowFunc == nil {
		return m.Motor.Follow(ctx, leader)
	}
	return m.FollowFunc(ctx, leader)
}

// ResetPosition calls the injected ResetPosition or the real version.
func (m *Motor) ResetPosition(ctx context.Context) error {
	if m.ResetPositionFunc == nil {
		return m.Motor.ResetPosition(ctx)
	}
	return m.ResetPositionFunc(ctx)
}

// Stop calls the injected Stop or the real version.
func (m *Motor) Stop(ctx context.Context) error {
	if m.StopFunc == nil {
		return m.Motor.Stop(ctx)
	}
	return m.StopFunc(ctx)
}
