package inject

import (
	"go.viam.com/frcbot/components/input"
)

// Joystick is an injected joystick.
type Joystick struct {
	input.Joystick
	IsConnectedFunc func() bool
	ButtonFunc      func(b input.Button) bool
	POVFunc         func() input.POV
	AxisFunc        func(a input.Axis) float64
}

// IsConnected calls the injected IsConnected or the real version.
func (j *Joystick) IsConnected() bool {
	if j.IsConnectedFunc == nil {
		return j.Joystick.IsConnected()
	}
	return j.IsConnectedFunc()
}

// Button calls the injected Button or the real version.
func (j *Joystick) Button(b input.Button) bool {
	if j.ButtonFunc == nil {
		return j.Joystick.Button(b)
	}
	return j.ButtonFunc(b)
}

// POV calls the injected POV or the real version.
func (j *Joystick) POV() input.POV {
	if j.POVFunc == nil {
		return j.Joystick.POV()
	}
	return j.POVFunc()
}

// Axis calls the injected Axis or the real version.
func (j *Joystick) Axis(a input.Axis) float64 {
	if j.AxisFunc == nil {
		return j.Joystick.Axis(a)
	}
	return j.AxisFunc(a)
}
