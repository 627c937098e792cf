// Package input provides the driver station's human input devices: which gamepads exist, the
// buttons, POV hat and axes on them, and the physical control points operations are bound to.
package input

import (
	"fmt"

	"github.com/samber/lo"

	"go.viam.com/frcbot/utils"
)

// Device identifies one gamepad slot on the driver station.
type Device uint8

// Devices. DeviceNone marks a binding as unmapped.
const (
	DeviceNone Device = iota
	DeviceDriver
	DeviceCodriver
	DeviceTest1
	DeviceTest2
	numDevices
)

var deviceNames = [numDevices]string{"None", "Driver", "Codriver", "Test1", "Test2"}

func (d Device) String() string {
	if d >= numDevices {
		return fmt.Sprintf("Device(%d)", d)
	}
	return deviceNames[d]
}

// ParseDevice looks up a device by name.
func ParseDevice(name string) (Device, error) {
	idx := lo.IndexOf(deviceNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("device", name)
	}
	return Device(idx), nil
}

// Button identifies a button on a gamepad. ButtonPOV and ButtonAnalogAxisRange are not real
// buttons: they say that a binding is on the POV hat or on a range of an axis instead.
type Button uint8

// Buttons.
const (
	ButtonNone Button = iota
	ButtonA
	ButtonB
	ButtonX
	ButtonY
	ButtonLeftBumper
	ButtonRightBumper
	ButtonBack
	ButtonStart
	ButtonLeftStick
	ButtonRightStick
	ButtonPOV
	ButtonAnalogAxisRange
	numButtons
)

var buttonNames = [numButtons]string{
	"None",
	"A",
	"B",
	"X",
	"Y",
	"LeftBumper",
	"RightBumper",
	"Back",
	"Start",
	"LeftStick",
	"RightStick",
	"POV",
	"AnalogAxisRange",
}

func (b Button) String() string {
	if b >= numButtons {
		return fmt.Sprintf("Button(%d)", b)
	}
	return buttonNames[b]
}

// ParseButton looks up a button by name.
func ParseButton(name string) (Button, error) {
	idx := lo.IndexOf(buttonNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("button", name)
	}
	return Button(idx), nil
}

// Axis identifies an analog axis on a gamepad.
type Axis uint8

// Axes.
const (
	AxisLeftX Axis = iota
	AxisLeftY
	AxisLeftTrigger
	AxisRightTrigger
	AxisRightX
	AxisRightY
	numAxes
)

var axisNames = [numAxes]string{"LeftX", "LeftY", "LeftTrigger", "RightTrigger", "RightX", "RightY"}

func (a Axis) String() string {
	if a >= numAxes {
		return fmt.Sprintf("Axis(%d)", a)
	}
	return axisNames[a]
}

// ParseAxis looks up an axis by name.
func ParseAxis(name string) (Axis, error) {
	idx := lo.IndexOf(axisNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("axis", name)
	}
	return Axis(idx), nil
}

// POV is the angle reported by the POV hat in degrees, clockwise from up, in steps of 45.
type POV int

// POV values.
const (
	POVNone      POV = -1
	POVUp        POV = 0
	POVUpRight   POV = 45
	POVRight     POV = 90
	POVDownRight POV = 135
	POVDown      POV = 180
	POVDownLeft  POV = 225
	POVLeft      POV = 270
	POVUpLeft    POV = 315
)

// Valid reports whether p is POVNone or one of the eight hat directions.
func (p POV) Valid() bool {
	return p == POVNone || (p >= 0 && p < 360 && p%45 == 0)
}

// ButtonType says how presses of a button are interpreted.
type ButtonType uint8

// Button types.
const (
	// Simple is active while the button is held.
	Simple ButtonType = iota
	// Click is active for the one cycle in which the button goes down.
	Click
	// Toggle flips on every press.
	Toggle
	numButtonTypes
)

var buttonTypeNames = [numButtonTypes]string{"Simple", "Click", "Toggle"}

func (bt ButtonType) String() string {
	if bt >= numButtonTypes {
		return fmt.Sprintf("ButtonType(%d)", bt)
	}
	return buttonTypeNames[bt]
}

// ParseButtonType looks up a button type by name. The empty name is Simple.
func ParseButtonType(name string) (ButtonType, error) {
	if name == "" {
		return Simple, nil
	}
	idx := lo.IndexOf(buttonTypeNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("button type", name)
	}
	return ButtonType(idx), nil
}

// Joystick is the per-cycle read surface of one gamepad.
type Joystick interface {
	IsConnected() bool
	// Button reports whether a real button is held. Sentinel buttons always read false.
	Button(b Button) bool
	POV() POV
	// Axis returns the axis position in [-1, 1].
	Axis(a Axis) float64
}
