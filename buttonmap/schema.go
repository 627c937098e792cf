// Package buttonmap describes which physical controls produce which operations, and proves that
// no two bindings can be active on the same control at the same time.
//
// A Schema is built once at startup, verified, and then handed to the driver that decodes it
// every cycle. Nothing in this package holds global state.
package buttonmap

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/frcbot/components/input"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/tasks"
)

// DigitalDescription binds a digital operation to a button, POV direction or axis range.
type DigitalDescription struct {
	Operation operation.DigitalOperation
	Binding   input.Binding
	// Shifts is the exact set of shifts that must be active. The empty set means the binding
	// applies under every single shift.
	Shifts     operation.ShiftSet
	ButtonType input.ButtonType
}

// AnalogDescription binds an analog operation to an axis.
type AnalogDescription struct {
	Operation operation.AnalogOperation
	Device    input.Device
	Axis      input.Axis
	Invert    bool
	// Deadzone is the distance from zero within which the value reads as zero. Values outside
	// are rescaled to still span the full range.
	Deadzone float64
	// Multiplier scales the final value; zero means 1.
	Multiplier float64
	// Range restricts the axis values the binding responds to. Outside it the operation takes
	// DefaultValue. nil means the full axis.
	Range        *input.Range
	DefaultValue float64
	Shifts       operation.ShiftSet
}

// MacroDescription binds a macro to a button, POV direction or axis range.
type MacroDescription struct {
	Operation  operation.MacroOperation
	Binding    input.Binding
	Shifts     operation.ShiftSet
	ButtonType input.ButtonType
	// RequiredOperations are owned exclusively by the macro while it runs.
	RequiredOperations []operation.Operation
	Task               tasks.Factory
}

// ShiftDescription binds the button that activates a shift.
type ShiftDescription struct {
	Shift      operation.Shift
	Binding    input.Binding
	Shifts     operation.ShiftSet
	ButtonType input.ButtonType
}

// Schema is a complete button map.
type Schema struct {
	Digital []DigitalDescription
	Analog  []AnalogDescription
	Macro   []MacroDescription
	Shift   []ShiftDescription
}

// Combination returns the control point of an analog description. Analog bindings share the
// axis range sentinel with digital bindings on the same axis so the two are compared.
func (d AnalogDescription) Combination() input.ButtonCombination {
	return input.ButtonCombination{Device: d.Device, Button: input.ButtonAnalogAxisRange, Value: int(d.Axis)}
}

// InputRange is the axis range the description responds to.
func (d AnalogDescription) InputRange() input.Range {
	if d.Range == nil {
		return input.FullRange
	}
	return *d.Range
}

// Validate checks every description for values that can never work, independent of the other
// descriptions.
func (s Schema) Validate() error {
	for _, d := range s.Digital {
		if err := validateBinding(d.Binding, d.ButtonType); err != nil {
			return errors.Wrapf(err, "digital operation %s", d.Operation)
		}
	}
	for _, d := range s.Analog {
		if d.Range != nil && d.Range.Min > d.Range.Max {
			return errors.Errorf("analog operation %s: range %s is empty", d.Operation, d.Range)
		}
		if d.Deadzone < 0 || d.Deadzone >= 1 || math.IsNaN(d.Deadzone) {
			return errors.Errorf("analog operation %s: deadzone must be in [0, 1), got %v", d.Operation, d.Deadzone)
		}
	}
	for _, d := range s.Macro {
		if err := validateBinding(d.Binding, d.ButtonType); err != nil {
			return errors.Wrapf(err, "macro %s", d.Operation)
		}
		if d.Task == nil {
			return errors.Errorf("macro %s has no task", d.Operation)
		}
		for _, op := range d.RequiredOperations {
			if op == nil || op.Kind() == operation.KindMacro {
				return errors.Errorf("macro %s can only require digital or analog operations, got %v", d.Operation, op)
			}
		}
	}
	for _, d := range s.Shift {
		if err := validateBinding(d.Binding, d.ButtonType); err != nil {
			return errors.Wrapf(err, "shift %s", d.Shift)
		}
		if d.ButtonType == input.Click {
			return errors.Errorf("shift %s cannot use a click button", d.Shift)
		}
	}
	return nil
}

func validateBinding(b input.Binding, bt input.ButtonType) error {
	if b.Unmapped() {
		return nil
	}
	if bt > input.Toggle {
		return errors.Errorf("unknown button type %d", bt)
	}
	switch b.Button {
	case input.ButtonNone:
		return errors.Errorf("binding on %s has no button", b.Device)
	case input.ButtonPOV:
		if !b.POV.Valid() || b.POV == input.POVNone {
			return errors.Errorf("invalid POV %d", b.POV)
		}
	case input.ButtonAnalogAxisRange:
		if b.Range.Min > b.Range.Max {
			return errors.Errorf("axis range %s is empty", b.Range)
		}
	}
	return nil
}
