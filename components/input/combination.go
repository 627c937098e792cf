package input

import (
	"cmp"
	"fmt"
)

// ButtonCombination identifies one physical control point: a button, a POV direction or an
// axis. Two bindings can only collide if they share a ButtonCombination.
//
// Value is the POV angle when Button is ButtonPOV, the axis when Button is
// ButtonAnalogAxisRange, and 0 otherwise.
type ButtonCombination struct {
	Device Device
	Button Button
	Value  int
}

// Compare orders combinations by device, then button, then value.
func (bc ButtonCombination) Compare(other ButtonCombination) int {
	if c := cmp.Compare(bc.Device, other.Device); c != 0 {
		return c
	}
	if c := cmp.Compare(bc.Button, other.Button); c != 0 {
		return c
	}
	return cmp.Compare(bc.Value, other.Value)
}

func (bc ButtonCombination) String() string {
	switch bc.Button {
	case ButtonPOV:
		return fmt.Sprintf("%s POV %d", bc.Device, bc.Value)
	case ButtonAnalogAxisRange:
		return fmt.Sprintf("%s Axis %s", bc.Device, Axis(bc.Value))
	default:
		return fmt.Sprintf("%s %s", bc.Device, bc.Button)
	}
}

// Range is a closed interval of axis values.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FullRange covers every axis value.
var FullRange = Range{Min: -1, Max: 1}

// Contains reports whether v lies in the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Overlaps reports whether either range has an endpoint inside the other. Ranges that only
// touch at an endpoint overlap.
func (r Range) Overlaps(other Range) bool {
	return (r.Min >= other.Min && r.Min <= other.Max) ||
		(r.Max >= other.Min && r.Max <= other.Max) ||
		(other.Min >= r.Min && other.Min <= r.Max) ||
		(other.Max >= r.Min && other.Max <= r.Max)
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Binding is where on a device a digital or macro operation is bound: a button, a POV
// direction (Button is ButtonPOV) or a range of an axis (Button is ButtonAnalogAxisRange).
type Binding struct {
	Device Device
	Button Button
	POV    POV
	Axis   Axis
	Range  Range
}

// Combination returns the control point the binding occupies.
func (b Binding) Combination() ButtonCombination {
	switch b.Button {
	case ButtonPOV:
		return ButtonCombination{Device: b.Device, Button: ButtonPOV, Value: int(b.POV)}
	case ButtonAnalogAxisRange:
		return ButtonCombination{Device: b.Device, Button: ButtonAnalogAxisRange, Value: int(b.Axis)}
	default:
		return ButtonCombination{Device: b.Device, Button: b.Button}
	}
}

// AxisRange returns the axis range of the binding, if it is bound to one.
func (b Binding) AxisRange() (Range, bool) {
	if b.Button != ButtonAnalogAxisRange {
		return Range{}, false
	}
	return b.Range, true
}

// Unmapped reports whether the binding is not attached to any device.
func (b Binding) Unmapped() bool {
	return b.Device == DeviceNone
}

// Pressed reports whether the binding is active on js right now.
func (b Binding) Pressed(js Joystick) bool {
	if js == nil || !js.IsConnected() {
		return false
	}
	switch b.Button {
	case ButtonNone:
		return false
	case ButtonPOV:
		return js.POV() == b.POV
	case ButtonAnalogAxisRange:
		return b.Range.Contains(js.Axis(b.Axis))
	default:
		return js.Button(b.Button)
	}
}

// Joysticks maps each device slot to the gamepad plugged into it.
type Joysticks map[Device]Joystick

// Pressed is Binding.Pressed for the joystick on the binding's device.
func (js Joysticks) Pressed(b Binding) bool {
	return b.Pressed(js[b.Device])
}
