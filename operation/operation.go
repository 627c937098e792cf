// Package operation defines the closed set of abstract operations the mechanisms react to, the
// shift modifiers that gate button bindings, and the per-cycle table of operation values.
//
// Operations decouple physical controls from mechanism logic: the drivetrain asks "is path mode
// requested?" and never "is button 3 on the driver's joystick held?". The same table is written
// by the teleop input decoder or by whichever macro task currently owns an operation.
package operation

import (
	"fmt"

	"github.com/samber/lo"

	"go.viam.com/frcbot/utils"
)

// Kind is the kind of value an operation carries.
type Kind uint8

const (
	// KindDigital operations carry a boolean.
	KindDigital Kind = iota
	// KindAnalog operations carry a scalar.
	KindAnalog
	// KindMacro operations start a task that owns other operations while it runs.
	KindMacro
)

func (k Kind) String() string {
	switch k {
	case KindDigital:
		return "digital"
	case KindAnalog:
		return "analog"
	case KindMacro:
		return "macro"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Operation is implemented by DigitalOperation, AnalogOperation and MacroOperation.
type Operation interface {
	fmt.Stringer
	Kind() Kind
}

// DigitalOperation is a boolean operation.
type DigitalOperation uint8

// Digital operations.
const (
	DriveTrainEnablePID DigitalOperation = iota
	DriveTrainDisablePID
	DriveTrainUsePathMode
	DriveTrainUsePositionalMode
	DriveTrainUseBrakeMode
	DriveTrainSimpleMode
	DriveTrainResetFieldOrientation
	DriveTrainResetXYPosition
	DriveTrainHoldHeading
	DriveTrainRobotOriented
	numDigitalOperations
)

var digitalNames = [numDigitalOperations]string{
	"DriveTrainEnablePID",
	"DriveTrainDisablePID",
	"DriveTrainUsePathMode",
	"DriveTrainUsePositionalMode",
	"DriveTrainUseBrakeMode",
	"DriveTrainSimpleMode",
	"DriveTrainResetFieldOrientation",
	"DriveTrainResetXYPosition",
	"DriveTrainHoldHeading",
	"DriveTrainRobotOriented",
}

// Kind returns KindDigital.
func (op DigitalOperation) Kind() Kind { return KindDigital }

func (op DigitalOperation) String() string {
	if op >= numDigitalOperations {
		return fmt.Sprintf("DigitalOperation(%d)", op)
	}
	return digitalNames[op]
}

// AllDigitalOperations returns every digital operation in declaration order.
func AllDigitalOperations() []DigitalOperation {
	ops := make([]DigitalOperation, numDigitalOperations)
	for i := range ops {
		ops[i] = DigitalOperation(i)
	}
	return ops
}

// ParseDigitalOperation looks up a digital operation by name.
func ParseDigitalOperation(name string) (DigitalOperation, error) {
	idx := lo.IndexOf(digitalNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("digital operation", name)
	}
	return DigitalOperation(idx), nil
}

// AnalogOperation is a scalar operation.
type AnalogOperation uint8

// Analog operations. Units are noted where they are not a [-1, 1] fraction.
const (
	DriveTrainMoveForward AnalogOperation = iota
	DriveTrainTurn
	DriveTrainMoveRight
	// inches
	DriveTrainLeftPosition
	DriveTrainRightPosition
	// inches per second
	DriveTrainLeftVelocity
	DriveTrainRightVelocity
	// power fraction moved from the left side to the right side
	DriveTrainHeadingCorrection
	// inches, inches per second, degrees
	DriveTrainPathXGoal
	DriveTrainPathYGoal
	DriveTrainPathXVelocityGoal
	DriveTrainPathYVelocityGoal
	DriveTrainPathAngleGoal
	DriveTrainStartingXPosition
	DriveTrainStartingYPosition
	DriveTrainStartingOrientation
	numAnalogOperations
)

var analogNames = [numAnalogOperations]string{
	"DriveTrainMoveForward",
	"DriveTrainTurn",
	"DriveTrainMoveRight",
	"DriveTrainLeftPosition",
	"DriveTrainRightPosition",
	"DriveTrainLeftVelocity",
	"DriveTrainRightVelocity",
	"DriveTrainHeadingCorrection",
	"DriveTrainPathXGoal",
	"DriveTrainPathYGoal",
	"DriveTrainPathXVelocityGoal",
	"DriveTrainPathYVelocityGoal",
	"DriveTrainPathAngleGoal",
	"DriveTrainStartingXPosition",
	"DriveTrainStartingYPosition",
	"DriveTrainStartingOrientation",
}

// Kind returns KindAnalog.
func (op AnalogOperation) Kind() Kind { return KindAnalog }

func (op AnalogOperation) String() string {
	if op >= numAnalogOperations {
		return fmt.Sprintf("AnalogOperation(%d)", op)
	}
	return analogNames[op]
}

// AllAnalogOperations returns every analog operation in declaration order.
func AllAnalogOperations() []AnalogOperation {
	ops := make([]AnalogOperation, numAnalogOperations)
	for i := range ops {
		ops[i] = AnalogOperation(i)
	}
	return ops
}

// ParseAnalogOperation looks up an analog operation by name.
func ParseAnalogOperation(name string) (AnalogOperation, error) {
	idx := lo.IndexOf(analogNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("analog operation", name)
	}
	return AnalogOperation(idx), nil
}

// MacroOperation is a composite, time-extended operation.
type MacroOperation uint8

// Macro operations.
const (
	MacroDriveForward MacroOperation = iota
	MacroDriveBackward
	MacroFollowTestPath
	MacroResetPose
	numMacroOperations
)

var macroNames = [numMacroOperations]string{
	"MacroDriveForward",
	"MacroDriveBackward",
	"MacroFollowTestPath",
	"MacroResetPose",
}

// Kind returns KindMacro.
func (op MacroOperation) Kind() Kind { return KindMacro }

func (op MacroOperation) String() string {
	if op >= numMacroOperations {
		return fmt.Sprintf("MacroOperation(%d)", op)
	}
	return macroNames[op]
}

// AllMacroOperations returns every macro operation in declaration order.
func AllMacroOperations() []MacroOperation {
	ops := make([]MacroOperation, numMacroOperations)
	for i := range ops {
		ops[i] = MacroOperation(i)
	}
	return ops
}

// ParseMacroOperation looks up a macro operation by name.
func ParseMacroOperation(name string) (MacroOperation, error) {
	idx := lo.IndexOf(macroNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("macro operation", name)
	}
	return MacroOperation(idx), nil
}

// Parse looks up a digital or analog operation by name. Macros cannot be owned by other macros,
// so they are not accepted here.
func Parse(name string) (Operation, error) {
	if op, err := ParseDigitalOperation(name); err == nil {
		return op, nil
	}
	if op, err := ParseAnalogOperation(name); err == nil {
		return op, nil
	}
	return nil, utils.NewUnknownNameError("operation", name)
}
