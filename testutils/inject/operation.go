package inject

import (
	"go.viam.com/frcbot/operation"
)

// OperationReader is an injected operation reader. Without injected functions it reads from
// State, so tests can set operation values directly.
type OperationReader struct {
	operation.State
	GetDigitalFunc func(op operation.DigitalOperation) bool
	GetAnalogFunc  func(op operation.AnalogOperation) float64
}

// GetDigital calls the injected GetDigital or reads State.
func (r *OperationReader) GetDigital(op operation.DigitalOperation) bool {
	if r.GetDigitalFunc == nil {
		return r.State.GetDigital(op)
	}
	return r.GetDigitalFunc(op)
}

// GetAnalog calls the injected GetAnalog or reads State.
func (r *OperationReader) GetAnalog(op operation.AnalogOperation) float64 {
	if r.GetAnalogFunc == nil {
		return r.State.GetAnalog(op)
	}
	return r.GetAnalogFunc(op)
}
