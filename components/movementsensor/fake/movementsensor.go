// Package fake is a fake IMU for testing.
package fake

import (
	"context"
	"sync"

	"go.viam.com/frcbot/components/movementsensor"
)

var _ movementsensor.IMU = &IMU{}

// IMU is an IMU whose yaw and connection state are set directly.
type IMU struct {
	mu           sync.Mutex
	yaw          float64
	disconnected bool
}

// Yaw returns the yaw.
func (f *IMU) Yaw(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.yaw, nil
}

// IsConnected is true unless SetConnected(false) was called.
func (f *IMU) IsConnected(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disconnected
}

// Reset zeroes the yaw.
func (f *IMU) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.yaw = 0
	return nil
}

// SetYaw sets the yaw.
func (f *IMU) SetYaw(yaw float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.yaw = yaw
}

// AddYaw turns the sensor by delta degrees.
func (f *IMU) AddYaw(delta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.yaw += delta
}

// SetConnected connects or disconnects the sensor.
func (f *IMU) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = !connected
}
