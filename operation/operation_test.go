package operation

import (
	"testing"

	"go.viam.com/test"
)

func TestParse(t *testing.T) {
	for _, op := range AllDigitalOperations() {
		parsed, err := ParseDigitalOperation(op.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, op)
	}
	for _, op := range AllMacroOperations() {
		parsed, err := ParseMacroOperation(op.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, op)
	}

	op, err := Parse("DriveTrainTurn")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, op, test.ShouldEqual, DriveTrainTurn)
	test.That(t, op.Kind(), test.ShouldEqual, KindAnalog)

	op, err = Parse("DriveTrainUseBrakeMode")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, op.Kind(), test.ShouldEqual, KindDigital)

	_, err = Parse("MacroDriveForward")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown operation "MacroDriveForward"`)

	_, err = ParseAnalogOperation("Nope")
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, DigitalOperation(200).String(), test.ShouldEqual, "DigitalOperation(200)")
}

func TestOperationsAreDistinctKeys(t *testing.T) {
	// same underlying index, different kinds
	seen := map[Operation]bool{}
	seen[DriveTrainEnablePID] = true
	test.That(t, seen[DriveTrainMoveForward], test.ShouldBeFalse)
	test.That(t, seen[MacroDriveForward], test.ShouldBeFalse)
	test.That(t, seen[DriveTrainEnablePID], test.ShouldBeTrue)
}

func TestShiftSet(t *testing.T) {
	var empty ShiftSet
	test.That(t, empty.IsEmpty(), test.ShouldBeTrue)
	test.That(t, empty.String(), test.ShouldEqual, "[]")

	set := NewShiftSet(Test1DebugShift, DriverDebugShift)
	test.That(t, set.Has(DriverDebugShift), test.ShouldBeTrue)
	test.That(t, set.Has(CodriverDebugShift), test.ShouldBeFalse)
	test.That(t, set.String(), test.ShouldEqual, "[DriverDebug, Test1Debug]")
	test.That(t, set.Without(Test1DebugShift), test.ShouldEqual, NewShiftSet(DriverDebugShift))
	test.That(t, set.With(CodriverDebugShift).Shifts(), test.ShouldResemble,
		[]Shift{DriverDebugShift, CodriverDebugShift, Test1DebugShift})

	singles := SingleShiftSets()
	test.That(t, singles, test.ShouldHaveLength, len(AllShifts()))
	for i, s := range singles {
		test.That(t, s.Shifts(), test.ShouldResemble, []Shift{Shift(i)})
	}

	shift, err := ParseShift("CodriverDebug")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, shift, test.ShouldEqual, CodriverDebugShift)
	_, err = ParseShift("Turbo")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestState(t *testing.T) {
	var state State
	test.That(t, state.GetDigital(DriveTrainUsePathMode), test.ShouldBeFalse)
	test.That(t, state.GetAnalog(DriveTrainTurn), test.ShouldEqual, 0.0)

	state.SetDigital(DriveTrainUsePathMode, true)
	state.SetAnalog(DriveTrainTurn, -0.5)
	test.That(t, state.GetDigital(DriveTrainUsePathMode), test.ShouldBeTrue)
	test.That(t, state.GetAnalog(DriveTrainTurn), test.ShouldEqual, -0.5)

	// out of range writes are ignored
	state.SetAnalog(AnalogOperation(250), 3)
	test.That(t, state.GetAnalog(AnalogOperation(250)), test.ShouldEqual, 0.0)

	state.Reset()
	test.That(t, state.GetDigital(DriveTrainUsePathMode), test.ShouldBeFalse)
	test.That(t, state.GetAnalog(DriveTrainTurn), test.ShouldEqual, 0.0)
}

func TestRestrictWriter(t *testing.T) {
	var state State
	w := RestrictWriter(&state, []Operation{DriveTrainMoveForward, DriveTrainUsePositionalMode})

	w.SetAnalog(DriveTrainMoveForward, 0.7)
	w.SetAnalog(DriveTrainTurn, 0.7)
	w.SetDigital(DriveTrainUsePositionalMode, true)
	w.SetDigital(DriveTrainUsePathMode, true)

	test.That(t, state.GetAnalog(DriveTrainMoveForward), test.ShouldEqual, 0.7)
	test.That(t, state.GetAnalog(DriveTrainTurn), test.ShouldEqual, 0.0)
	test.That(t, state.GetDigital(DriveTrainUsePositionalMode), test.ShouldBeTrue)
	test.That(t, state.GetDigital(DriveTrainUsePathMode), test.ShouldBeFalse)
}
