package buttonmap

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"

	"go.viam.com/frcbot/components/input"
	"go.viam.com/frcbot/operation"
)

// EntryKind says which kind of description an Entry came from.
type EntryKind uint8

// Entry kinds.
const (
	DigitalEntry EntryKind = iota
	AnalogEntry
	MacroEntry
	ShiftEntry
)

func (k EntryKind) String() string {
	switch k {
	case DigitalEntry:
		return "digital"
	case AnalogEntry:
		return "analog"
	case MacroEntry:
		return "macro"
	case ShiftEntry:
		return "shift"
	}
	return fmt.Sprintf("EntryKind(%d)", k)
}

// Entry is one description as recorded under one shift set.
type Entry struct {
	Kind        EntryKind
	Name        string
	Combination input.ButtonCombination
	Shifts      operation.ShiftSet
	// Range is set for analog descriptions and for bindings on an axis range.
	Range *input.Range
}

// conflicts reports whether two entries on the same combination and shift set can be active
// together. Only two ranged entries with disjoint ranges can share a key.
func (e Entry) conflicts(other Entry) bool {
	if e.Range == nil || other.Range == nil {
		return true
	}
	return e.Range.Overlaps(*other.Range)
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (Shift: %s) --> %s", e.Combination, e.Shifts, e.Name)
}

// Mapping is the resolved button map: for each control point and shift set, the descriptions
// bound there.
type Mapping struct {
	entries map[input.ButtonCombination]map[operation.ShiftSet][]Entry
}

func newMapping() *Mapping {
	return &Mapping{entries: map[input.ButtonCombination]map[operation.ShiftSet][]Entry{}}
}

func (m *Mapping) bucket(bc input.ButtonCombination, shifts operation.ShiftSet) []Entry {
	return m.entries[bc][shifts]
}

func (m *Mapping) add(e Entry) {
	byShift, ok := m.entries[e.Combination]
	if !ok {
		byShift = map[operation.ShiftSet][]Entry{}
		m.entries[e.Combination] = byShift
	}
	byShift[e.Shifts] = append(byShift[e.Shifts], e)
}

// Lookup returns the entries bound to a control point under a shift set.
func (m *Mapping) Lookup(bc input.ButtonCombination, shifts operation.ShiftSet) []Entry {
	return slices.Clone(m.bucket(bc, shifts))
}

// Rows returns every entry ordered by combination, then by the shift set's string form. Entries
// sharing both keep the order they were added in.
func (m *Mapping) Rows() []Entry {
	combinations := lo.Keys(m.entries)
	slices.SortFunc(combinations, input.ButtonCombination.Compare)

	var rows []Entry
	for _, bc := range combinations {
		shiftSets := lo.Keys(m.entries[bc])
		slices.SortFunc(shiftSets, func(a, b operation.ShiftSet) int {
			return cmp.Compare(a.String(), b.String())
		})
		for _, shifts := range shiftSets {
			rows = append(rows, m.entries[bc][shifts]...)
		}
	}
	return rows
}

// Print writes one line per entry in Rows order.
func (m *Mapping) Print(w io.Writer) error {
	for _, row := range m.Rows() {
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	return nil
}
