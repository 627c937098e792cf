package swerve

import (
	"context"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/frcbot/components/drivetrain"
	"go.viam.com/frcbot/components/motor"
	"go.viam.com/frcbot/utils"
)

// Module is the hardware of one swerve module.
type Module struct {
	Drive motor.Motor
	Steer motor.Motor
}

// ModuleState is the command and reading of one module.
type ModuleState struct {
	Name string
	// steer angle in degrees, robot relative, counter-clockwise from forward
	Angle float64
	// drive distance in inches
	Distance float64
	// commanded steer angle and drive power
	AngleSetpoint float64
	DriveSetpoint float64
}

type module struct {
	cfg    drivetrain.ModuleConfig
	offset r2.Point
	hw     Module

	// readings
	angle         float64
	distance      float64
	driveVelocity float64
	lastDistance  float64

	angleSetpoint float64
	driveSetpoint float64
}

func (m *module) read(ctx context.Context, cfg drivetrain.SwerveConfig) error {
	steerTicks, err := m.hw.Steer.Position(ctx)
	if err != nil {
		return errors.Wrapf(err, "module %s steer position", m.cfg.Name)
	}
	driveTicks, err := m.hw.Drive.Position(ctx)
	if err != nil {
		return errors.Wrapf(err, "module %s drive position", m.cfg.Name)
	}
	if m.driveVelocity, err = m.hw.Drive.Velocity(ctx); err != nil {
		return errors.Wrapf(err, "module %s drive velocity", m.cfg.Name)
	}
	m.angle = steerTicks / cfg.SteerTicksPerDegree
	m.distance = driveTicks / cfg.DriveTicksPerInch
	return nil
}

// displacement returns how far the module moved since the last call, robot relative.
func (m *module) displacement() r2.Point {
	delta := m.distance - m.lastDistance
	m.lastDistance = m.distance
	rad := utils.DegToRad(m.angle)
	return r2.Point{X: math.Cos(rad), Y: math.Sin(rad)}.Mul(delta)
}

// optimize returns the steer goal closest to the current angle that points the module along
// angle, and the drive sign to use with it. A module never turns more than 90 degrees; it
// drives backwards instead.
func optimize(current, angle float64) (float64, float64) {
	diff := utils.SignedAngleDeg(angle - current)
	sign := 1.0
	if diff > 90 {
		diff -= 180
		sign = -1
	} else if diff < -90 {
		diff += 180
		sign = -1
	}
	return current + diff, sign
}

func (m *module) state() ModuleState {
	return ModuleState{
		Name:          m.cfg.Name,
		Angle:         m.angle,
		Distance:      m.distance,
		AngleSetpoint: m.angleSetpoint,
		DriveSetpoint: m.driveSetpoint,
	}
}
