// Package fake is a fake gamepad for tests and simulation.
package fake

import (
	"sync"

	"go.viam.com/frcbot/components/input"
)

// Joystick is a gamepad whose state is set directly. The zero value is disconnected.
type Joystick struct {
	mu        sync.Mutex
	connected bool
	buttons   map[input.Button]bool
	pov       input.POV
	axes      map[input.Axis]float64
}

// NewJoystick returns a connected joystick with nothing pressed.
func NewJoystick() *Joystick {
	return &Joystick{
		connected: true,
		buttons:   map[input.Button]bool{},
		pov:       input.POVNone,
		axes:      map[input.Axis]float64{},
	}
}

// SetConnected plugs or unplugs the joystick.
func (j *Joystick) SetConnected(connected bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.connected = connected
}

// SetButton presses or releases a button.
func (j *Joystick) SetButton(b input.Button, pressed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.buttons == nil {
		j.buttons = map[input.Button]bool{}
	}
	j.buttons[b] = pressed
}

// SetPOV sets the hat direction.
func (j *Joystick) SetPOV(p input.POV) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pov = p
}

// SetAxis moves an axis.
func (j *Joystick) SetAxis(a input.Axis, value float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.axes == nil {
		j.axes = map[input.Axis]float64{}
	}
	j.axes[a] = value
}

// IsConnected reports whether the joystick is plugged in.
func (j *Joystick) IsConnected() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.connected
}

// Button reports whether b is held.
func (j *Joystick) Button(b input.Button) bool {
	if b == input.ButtonPOV || b == input.ButtonAnalogAxisRange {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.buttons[b]
}

// POV returns the hat direction.
func (j *Joystick) POV() input.POV {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.connected {
		return input.POVNone
	}
	return j.pov
}

// Axis returns the position of a.
func (j *Joystick) Axis(a input.Axis) float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.axes[a]
}
