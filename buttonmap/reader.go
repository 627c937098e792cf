package buttonmap

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"
	"gopkg.in/yaml.v3"

	"go.viam.com/frcbot/components/input"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/tasks"
)

// RawSchema is the file form of a Schema. Every enumerated value is given by name.
type RawSchema struct {
	Digital []RawDescription `yaml:"digital"`
	Analog  []RawDescription `yaml:"analog"`
	Macro   []RawDescription `yaml:"macro"`
	Shift   []RawDescription `yaml:"shift"`
}

// RawDescription is the file form of any description. Fields that do not apply to its kind are
// ignored.
type RawDescription struct {
	Operation  string       `yaml:"operation"`
	Shift      string       `yaml:"shift"`
	Device     string       `yaml:"device"`
	Button     string       `yaml:"button"`
	POV        *int         `yaml:"pov"`
	Axis       string       `yaml:"axis"`
	Range      *input.Range `yaml:"range"`
	Shifts     []string     `yaml:"shifts"`
	ButtonType string       `yaml:"button_type"`

	Invert       bool     `yaml:"invert"`
	Deadzone     float64  `yaml:"deadzone"`
	Multiplier   float64  `yaml:"multiplier"`
	DefaultValue float64  `yaml:"default"`
	Requires     []string `yaml:"requires"`
}

// ReadSchemaFile reads a schema file. See ReadSchema.
func ReadSchemaFile(path string, macros map[operation.MacroOperation]tasks.Factory) (Schema, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return Schema{}, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)
	schema, err := ReadSchema(f, macros)
	if err != nil {
		return Schema{}, errors.Wrapf(err, "reading button map %s", path)
	}
	return schema, nil
}

// ReadSchema parses a YAML schema. Tasks cannot be written in a file, so every macro in it
// takes its task factory from macros.
func ReadSchema(r io.Reader, macros map[operation.MacroOperation]tasks.Factory) (Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Schema{}, err
	}
	var raw RawSchema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Schema{}, errors.Wrap(err, "parsing button map")
	}
	return raw.Schema(macros)
}

// Schema converts the file form, resolving every name.
func (raw RawSchema) Schema(macros map[operation.MacroOperation]tasks.Factory) (Schema, error) {
	var schema Schema
	for i, rd := range raw.Digital {
		op, err := operation.ParseDigitalOperation(rd.Operation)
		if err != nil {
			return Schema{}, errors.Wrapf(err, "digital.%d", i)
		}
		binding, shifts, bt, err := rd.common()
		if err != nil {
			return Schema{}, errors.Wrapf(err, "digital.%d (%s)", i, op)
		}
		schema.Digital = append(schema.Digital, DigitalDescription{
			Operation: op, Binding: binding, Shifts: shifts, ButtonType: bt,
		})
	}
	for i, rd := range raw.Analog {
		d, err := rd.analog()
		if err != nil {
			return Schema{}, errors.Wrapf(err, "analog.%d", i)
		}
		schema.Analog = append(schema.Analog, d)
	}
	for i, rd := range raw.Macro {
		op, err := operation.ParseMacroOperation(rd.Operation)
		if err != nil {
			return Schema{}, errors.Wrapf(err, "macro.%d", i)
		}
		binding, shifts, bt, err := rd.common()
		if err != nil {
			return Schema{}, errors.Wrapf(err, "macro.%d (%s)", i, op)
		}
		required, err := parseOperations(rd.Requires)
		if err != nil {
			return Schema{}, errors.Wrapf(err, "macro.%d (%s)", i, op)
		}
		factory, ok := macros[op]
		if !ok {
			return Schema{}, errors.Errorf("macro.%d: no task registered for %s", i, op)
		}
		schema.Macro = append(schema.Macro, MacroDescription{
			Operation:          op,
			Binding:            binding,
			Shifts:             shifts,
			ButtonType:         bt,
			RequiredOperations: required,
			Task:               factory,
		})
	}
	for i, rd := range raw.Shift {
		shift, err := operation.ParseShift(rd.Shift)
		if err != nil {
			return Schema{}, errors.Wrapf(err, "shift.%d", i)
		}
		binding, shifts, bt, err := rd.common()
		if err != nil {
			return Schema{}, errors.Wrapf(err, "shift.%d (%s)", i, shift)
		}
		schema.Shift = append(schema.Shift, ShiftDescription{
			Shift: shift, Binding: binding, Shifts: shifts, ButtonType: bt,
		})
	}
	return schema, schema.Validate()
}

func (rd RawDescription) common() (input.Binding, operation.ShiftSet, input.ButtonType, error) {
	binding, err := rd.binding()
	if err != nil {
		return input.Binding{}, 0, 0, err
	}
	shifts, err := parseShifts(rd.Shifts)
	if err != nil {
		return input.Binding{}, 0, 0, err
	}
	bt, err := input.ParseButtonType(rd.ButtonType)
	if err != nil {
		return input.Binding{}, 0, 0, err
	}
	return binding, shifts, bt, nil
}

// binding resolves exactly one of button, pov or axis. A missing device leaves the binding
// unmapped.
func (rd RawDescription) binding() (input.Binding, error) {
	if rd.Device == "" {
		return input.Binding{}, nil
	}
	device, err := input.ParseDevice(rd.Device)
	if err != nil {
		return input.Binding{}, err
	}
	set := lo.Count([]bool{rd.Button != "", rd.POV != nil, rd.Axis != ""}, true)
	if set != 1 {
		return input.Binding{}, errors.New("exactly one of button, pov and axis must be set")
	}
	binding := input.Binding{Device: device}
	switch {
	case rd.POV != nil:
		binding.Button = input.ButtonPOV
		binding.POV = input.POV(*rd.POV)
	case rd.Axis != "":
		binding.Button = input.ButtonAnalogAxisRange
		if binding.Axis, err = input.ParseAxis(rd.Axis); err != nil {
			return input.Binding{}, err
		}
		binding.Range = input.FullRange
		if rd.Range != nil {
			binding.Range = *rd.Range
		}
	default:
		if binding.Button, err = input.ParseButton(rd.Button); err != nil {
			return input.Binding{}, err
		}
		if binding.Button == input.ButtonPOV || binding.Button == input.ButtonAnalogAxisRange {
			return input.Binding{}, errors.Errorf("button %s is set with pov or axis", binding.Button)
		}
	}
	return binding, nil
}

func (rd RawDescription) analog() (AnalogDescription, error) {
	op, err := operation.ParseAnalogOperation(rd.Operation)
	if err != nil {
		return AnalogDescription{}, err
	}
	d := AnalogDescription{
		Operation:    op,
		Invert:       rd.Invert,
		Deadzone:     rd.Deadzone,
		Multiplier:   rd.Multiplier,
		Range:        rd.Range,
		DefaultValue: rd.DefaultValue,
	}
	if rd.Device != "" {
		if d.Device, err = input.ParseDevice(rd.Device); err != nil {
			return AnalogDescription{}, err
		}
		if d.Axis, err = input.ParseAxis(rd.Axis); err != nil {
			return AnalogDescription{}, errors.Wrap(err, op.String())
		}
	}
	if d.Shifts, err = parseShifts(rd.Shifts); err != nil {
		return AnalogDescription{}, err
	}
	return d, nil
}

func parseShifts(names []string) (operation.ShiftSet, error) {
	var set operation.ShiftSet
	for _, name := range names {
		s, err := operation.ParseShift(name)
		if err != nil {
			return 0, err
		}
		set = set.With(s)
	}
	return set, nil
}

func parseOperations(names []string) ([]operation.Operation, error) {
	ops := make([]operation.Operation, 0, len(names))
	for _, name := range names {
		op, err := operation.Parse(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
