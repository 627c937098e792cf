// Package movementsensor defines the inertial sensors the drivetrains use for heading.
package movementsensor

import (
	"context"
)

// An IMU reports the robot's yaw. Yaw is in degrees, counter-clockwise positive, and is not
// wrapped.
type IMU interface {
	// Yaw returns the yaw accumulated since the last Reset.
	Yaw(ctx context.Context) (float64, error)
	// IsConnected reports whether readings can be trusted. Callers fall back to another heading
	// source when it is false.
	IsConnected(ctx context.Context) bool
	// Reset zeroes the yaw.
	Reset(ctx context.Context) error
}
