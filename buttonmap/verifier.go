package buttonmap

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/frcbot/components/input"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/operation"
)

// ErrConflict is matched by every *ConflictError.
var ErrConflict = errors.New("button map conflict")

// ConflictError names two descriptions that could be active on the same control at once.
type ConflictError struct {
	Combination input.ButtonCombination
	Shifts      operation.ShiftSet
	Existing    string
	Conflicting string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s and %s both bound to %s (Shift: %s)",
		ErrConflict, e.Existing, e.Conflicting, e.Combination, e.Shifts)
}

// Unwrap returns ErrConflict.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// VerifyOptions control Verify.
type VerifyOptions struct {
	// FailOnError stops at the first conflict. Otherwise every conflict is logged, the
	// conflicting description is left out of the mapping, and all conflicts are returned together.
	FailOnError bool
	// PrintMapping writes the mapping to Writer, or stdout, once verification is done.
	PrintMapping bool
	Writer       io.Writer
	Logger       logging.Logger
}

// Verify proves that no two descriptions in schema can be active on the same control under
// the same shifts, unless they are bound to disjoint ranges of an axis, and that no shift
// button doubles as an operation button.
func Verify(schema Schema, opts VerifyOptions) error {
	mapping, err := Build(schema, opts)
	if opts.PrintMapping && mapping != nil {
		w := opts.Writer
		if w == nil {
			w = os.Stdout
		}
		err = multierr.Combine(err, mapping.Print(w))
	}
	return err
}

// MustVerify is Verify with FailOnError set that panics on failure. It belongs on the startup
// path, where a conflicting map must keep the robot from enabling.
func MustVerify(schema Schema, opts VerifyOptions) {
	opts.FailOnError = true
	if err := Verify(schema, opts); err != nil {
		panic(err)
	}
}

// Build verifies schema and returns the resolved mapping. On a conflict with FailOnError set
// the mapping built so far is returned with the error.
func Build(schema Schema, opts VerifyOptions) (*Mapping, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	b := &builder{mapping: newMapping(), opts: opts}

	for _, d := range schema.Digital {
		if b.addOperation(d.Operation.String(), DigitalEntry, d.Binding, d.Shifts) {
			return b.mapping, b.errs
		}
	}
	for _, d := range schema.Analog {
		if d.Device == input.DeviceNone {
			continue
		}
		r := d.InputRange()
		e := Entry{Kind: AnalogEntry, Name: d.Operation.String(), Combination: d.Combination(), Range: &r}
		if b.addEntry(e, d.Shifts) {
			return b.mapping, b.errs
		}
	}
	for _, d := range schema.Macro {
		if b.addOperation(d.Operation.String(), MacroEntry, d.Binding, d.Shifts) {
			return b.mapping, b.errs
		}
	}
	for _, d := range schema.Shift {
		if b.addShift(d) {
			return b.mapping, b.errs
		}
	}
	return b.mapping, b.errs
}

type builder struct {
	mapping *Mapping
	opts    VerifyOptions
	errs    error
}

// expand returns the shift sets a description applies under.
func expand(shifts operation.ShiftSet) []operation.ShiftSet {
	if shifts.IsEmpty() {
		return operation.SingleShiftSets()
	}
	return []operation.ShiftSet{shifts}
}

func (b *builder) addOperation(name string, kind EntryKind, binding input.Binding, shifts operation.ShiftSet) bool {
	if binding.Unmapped() {
		return false
	}
	e := Entry{Kind: kind, Name: name, Combination: binding.Combination()}
	if r, ok := binding.AxisRange(); ok {
		e.Range = &r
	}
	return b.addEntry(e, shifts)
}

// addEntry records e under every shift set it applies to. It reports whether verification must
// stop.
func (b *builder) addEntry(e Entry, shifts operation.ShiftSet) bool {
	keys := expand(shifts)
	for _, key := range keys {
		for _, existing := range b.mapping.bucket(e.Combination, key) {
			if existing.conflicts(e) {
				if b.conflict(existing, e, key) {
					return true
				}
				return false
			}
		}
	}
	for _, key := range keys {
		e.Shifts = key
		b.mapping.add(e)
	}
	return false
}

// addShift checks that nothing else is bound to the shift's button under the shift set it
// activates, or under the set it requires, and then records it there.
func (b *builder) addShift(d ShiftDescription) bool {
	if d.Binding.Unmapped() {
		return false
	}
	e := Entry{Kind: ShiftEntry, Name: d.Shift.String(), Combination: d.Binding.Combination()}
	keys := []operation.ShiftSet{operation.NewShiftSet(d.Shift)}
	if !d.Shifts.IsEmpty() && d.Shifts != keys[0] {
		keys = append(keys, d.Shifts)
	}
	for _, key := range keys {
		if existing := b.mapping.bucket(e.Combination, key); len(existing) > 0 {
			if b.conflict(existing[0], e, key) {
				return true
			}
			return false
		}
	}
	for _, key := range keys {
		e.Shifts = key
		b.mapping.add(e)
	}
	return false
}

func (b *builder) conflict(existing, e Entry, shifts operation.ShiftSet) bool {
	err := &ConflictError{
		Combination: e.Combination,
		Shifts:      shifts,
		Existing:    existing.Name,
		Conflicting: e.Name,
	}
	b.errs = multierr.Append(b.errs, err)
	if b.opts.FailOnError {
		return true
	}
	if b.opts.Logger != nil {
		b.opts.Logger.Errorw("button map conflict",
			"combination", e.Combination.String(),
			"shifts", shifts.String(),
			"existing", existing.Name,
			"conflicting", e.Name)
	}
	return false
}
