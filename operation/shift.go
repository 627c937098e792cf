package operation

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"go.viam.com/frcbot/utils"
)

// Shift is a modifier state, toggled or held through its own button binding, that changes which
// operation bindings are active.
type Shift uint8

// Shifts.
const (
	DriverDebugShift Shift = iota
	CodriverDebugShift
	Test1DebugShift
	numShifts
)

var shiftNames = [numShifts]string{
	"DriverDebug",
	"CodriverDebug",
	"Test1Debug",
}

func (s Shift) String() string {
	if s >= numShifts {
		return fmt.Sprintf("Shift(%d)", s)
	}
	return shiftNames[s]
}

// AllShifts returns every shift in declaration order.
func AllShifts() []Shift {
	shifts := make([]Shift, numShifts)
	for i := range shifts {
		shifts[i] = Shift(i)
	}
	return shifts
}

// ParseShift looks up a shift by name.
func ParseShift(name string) (Shift, error) {
	idx := lo.IndexOf(shiftNames[:], name)
	if idx < 0 {
		return 0, utils.NewUnknownNameError("shift", name)
	}
	return Shift(idx), nil
}

// ShiftSet is a set of shifts stored as a bitset. It is a comparable value and is used directly
// as a map key. The zero ShiftSet is the empty set.
type ShiftSet uint8

// NewShiftSet returns the set containing the given shifts.
func NewShiftSet(shifts ...Shift) ShiftSet {
	var set ShiftSet
	for _, s := range shifts {
		set = set.With(s)
	}
	return set
}

// Has reports whether s is in the set.
func (set ShiftSet) Has(s Shift) bool {
	return set&(1<<s) != 0
}

// With returns the set with s added.
func (set ShiftSet) With(s Shift) ShiftSet {
	return set | (1 << s)
}

// Without returns the set with s removed.
func (set ShiftSet) Without(s Shift) ShiftSet {
	return set &^ (1 << s)
}

// IsEmpty reports whether no shift is in the set.
func (set ShiftSet) IsEmpty() bool {
	return set == 0
}

// Shifts returns the members of the set in declaration order.
func (set ShiftSet) Shifts() []Shift {
	return lo.Filter(AllShifts(), func(s Shift, _ int) bool { return set.Has(s) })
}

// String renders the set as "[DriverDebug, Test1Debug]", members in declaration order.
func (set ShiftSet) String() string {
	names := lo.Map(set.Shifts(), func(s Shift, _ int) string { return s.String() })
	return "[" + strings.Join(names, ", ") + "]"
}

// SingleShiftSets returns one set per shift, each holding exactly that shift.
func SingleShiftSets() []ShiftSet {
	return lo.Map(AllShifts(), func(s Shift, _ int) ShiftSet { return NewShiftSet(s) })
}
