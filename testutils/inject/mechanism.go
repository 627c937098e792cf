package inject

import (
	"context"

	"go.viam.com/frcbot/mechanism"
)

// Mechanism is an injected mechanism.
type Mechanism struct {
	mechanism.Mechanism
	ReadSensorsFunc func(ctx context.Context) error
	UpdateFunc      func(ctx context.Context, mode mechanism.Mode) error
	StopFunc        func(ctx context.Context) error
}

// ReadSensors calls the injected ReadSensors or the real version.
func (m *Mechanism) ReadSensors(ctx context.Context) error {
	if m.ReadSensorsFunc == nil {
		return m.Mechanism.ReadSensors(ctx)
	}
	return m.ReadSensorsFunc(ctx)
}

// Update calls the injected Update or the real version.
func (m *Mechanism) Update(ctx context.Context, mode mechanism.Mode) error {
	if m.UpdateFunc == nil {
		return m.Mechanism.Update(ctx, mode)
	}
	return m.UpdateFunc(ctx, mode)
}

// Stop calls the injected Stop or the real version.
func (m *Mechanism) Stop(ctx context.Context) error {
	if m.StopFunc == nil {
		return m.Mechanism.Stop(ctx)
	}
	return m.StopFunc(ctx)
}
