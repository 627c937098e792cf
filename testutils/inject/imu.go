package inject

import (
	"context"

	"go.viam.com/frcbot/components/movementsensor"
)

// IMU is an injected IMU.
type IMU struct {
	movementsensor.IMU
	YawFunc         func(ctx context.Context) (float64, error)
	IsConnectedFunc func(ctx context.Context) bool
	ResetFunc       func(ctx context.Context) error
}

// Yaw calls the injected Yaw or the real version.
func (i *IMU) Yaw(ctx context.Context) (float64, error) {
	if i.YawFunc == nil {
		return i.IMU.Yaw(ctx)
	}
	return i.YawFunc(ctx)
}

// IsConnected calls the injected IsConnected or the real version.
func (i *IMU) IsConnected(ctx context.Context) bool {
	if i.IsConnectedFunc == nil {
		return i.IMU.IsConnected(ctx)
	}
	return i.IsConnectedFunc(ctx)
}

// Reset calls the injected Reset or the real version.
func (i *IMU) Reset(ctx context.Context) error {
	if i.ResetFunc == nil {
		return i.IMU.Reset(ctx)
	}
	return i.ResetFunc(ctx)
}
