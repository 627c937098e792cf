// Package driver turns the driver station's gamepads into operation values once per cycle,
// following a button map, and runs the macros and autonomous routine that take over operations.
package driver

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/frcbot/buttonmap"
	"go.viam.com/frcbot/components/input"
	"go.viam.com/frcbot/logging"
	"go.viam.com/frcbot/mechanism"
	"go.viam.com/frcbot/operation"
	"go.viam.com/frcbot/tasks"
	"go.viam.com/frcbot/utils"
)

// KeyActiveShifts is the telemetry key of the active shift set.
const KeyActiveShifts = "DriverActiveShifts"

// Options are the collaborators of a Driver. Telemetry and Clock may be nil.
type Options struct {
	Joysticks input.Joysticks
	Telemetry logging.Telemetry
	Clock     clock.Clock
}

// edge tracks one binding's press history.
type edge struct {
	pressed bool
	toggled bool
}

// update records this cycle's press and reports whether it was a new press.
func (e *edge) update(pressed bool) bool {
	rising := pressed && !e.pressed
	e.pressed = pressed
	if rising {
		e.toggled = !e.toggled
	}
	return rising
}

func (e *edge) value(bt input.ButtonType, rising bool) bool {
	switch bt {
	case input.Click:
		return rising
	case input.Toggle:
		return e.toggled
	default:
		return e.pressed
	}
}

type runningTask struct {
	task   tasks.Task
	writer operation.Writer
	begun  bool
	// nil for the autonomous routine
	run *operation.MacroRun
}

// Driver implements operation.Reader. Values are recomputed by Update and stay fixed until the
// next Update.
type Driver struct {
	mu        sync.Mutex
	schema    buttonmap.Schema
	joysticks input.Joysticks
	telemetry logging.Telemetry
	logger    logging.Logger
	macros    *operation.MacroManager

	digitalEdges []edge
	macroEdges   []edge
	shiftEdges   []edge
	active       operation.ShiftSet

	teleop     operation.State
	macroState operation.State
	values     operation.State
	running    map[operation.MacroOperation]*runningTask

	autonomousRoutine tasks.Factory
	autonomous        *runningTask
	autonomousState   operation.State
	lastMode          mechanism.Mode
}

var _ operation.Reader = &Driver{}

// New returns a driver decoding schema. The schema is expected to be verified already.
func New(schema buttonmap.Schema, opts Options, logger logging.Logger) (*Driver, error) {
	if err := schema.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid button map")
	}
	if opts.Telemetry == nil {
		opts.Telemetry = logging.NewLoggerTelemetry(logger)
	}
	if opts.Joysticks == nil {
		opts.Joysticks = input.Joysticks{}
	}
	return &Driver{
		schema:       schema,
		joysticks:    opts.Joysticks,
		telemetry:    opts.Telemetry,
		logger:       logger,
		macros:       operation.NewMacroManager(opts.Clock),
		digitalEdges: make([]edge, len(schema.Digital)),
		macroEdges:   make([]edge, len(schema.Macro)),
		shiftEdges:   make([]edge, len(schema.Shift)),
		running:      map[operation.MacroOperation]*runningTask{},
	}, nil
}

// SetAutonomousRoutine sets the routine run in autonomous mode. It takes effect the next time
// the robot enters autonomous.
func (d *Driver) SetAutonomousRoutine(routine tasks.Factory) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autonomousRoutine = routine
}

// GetDigital returns the value of a digital operation for this cycle.
func (d *Driver) GetDigital(op operation.DigitalOperation) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values.GetDigital(op)
}

// GetAnalog returns the value of an analog operation for this cycle.
func (d *Driver) GetAnalog(op operation.AnalogOperation) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values.GetAnalog(op)
}

// ActiveShifts returns the shifts active this cycle.
func (d *Driver) ActiveShifts() operation.ShiftSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// RunningMacros returns the macros currently running, in order.
func (d *Driver) RunningMacros() []operation.MacroOperation {
	var macros []operation.MacroOperation
	for _, run := range d.macros.Runs() {
		macros = append(macros, run.Macro)
	}
	return macros
}

// Update computes this cycle's operation values.
func (d *Driver) Update(ctx context.Context, mode mechanism.Mode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() { d.lastMode = mode }()

	switch mode {
	case mechanism.Disabled:
		d.reset()
		return nil
	case mechanism.Autonomous:
		if d.lastMode != mechanism.Autonomous {
			d.reset()
			if d.autonomousRoutine != nil {
				d.autonomous = &runningTask{task: d.autonomousRoutine(), writer: &d.autonomousState}
				d.logger.CInfow(ctx, "autonomous routine starting")
			}
		}
		if d.autonomous != nil && d.step(ctx, d.autonomous) {
			d.autonomous = nil
		}
		d.values = d.autonomousState
		return nil
	}

	if d.lastMode == mechanism.Autonomous {
		d.reset()
	}
	d.decodeShifts()
	d.decodeDigital()
	d.decodeAnalog()
	d.decodeMacros(ctx)
	d.stepMacros(ctx)
	d.resolve()
	return nil
}

// reset cancels everything running and returns every value and button state to its default.
func (d *Driver) reset() {
	for _, run := range d.macros.CancelAll() {
		if rt, ok := d.running[run.Macro]; ok && rt.begun {
			rt.task.Stop(rt.writer)
		}
	}
	d.running = map[operation.MacroOperation]*runningTask{}
	if d.autonomous != nil {
		if d.autonomous.begun {
			d.autonomous.task.Stop(d.autonomous.writer)
		}
		d.autonomous = nil
		d.logger.Info("autonomous routine stopped")
	}
	clear(d.digitalEdges)
	clear(d.macroEdges)
	clear(d.shiftEdges)
	d.active = 0
	d.teleop.Reset()
	d.macroState.Reset()
	d.autonomousState.Reset()
	d.values.Reset()
}

// decodeShifts computes the active shifts. A shift description with required shifts only
// responds while those were active in the previous cycle.
func (d *Driver) decodeShifts() {
	previous := d.active
	var active operation.ShiftSet
	for i, sd := range d.schema.Shift {
		e := &d.shiftEdges[i]
		if previous&sd.Shifts != sd.Shifts {
			*e = edge{}
			continue
		}
		e.update(d.joysticks.Pressed(sd.Binding))
		if e.value(sd.ButtonType, false) {
			active = active.With(sd.Shift)
		}
	}
	if active != previous {
		d.logger.Debugw("active shifts changed", "shifts", active.String())
	}
	d.active = active
	d.telemetry.LogString(KeyActiveShifts, active.String())
}

// matches reports whether a description requiring shifts is live under the active shifts.
func (d *Driver) matches(shifts operation.ShiftSet) bool {
	return shifts.IsEmpty() || shifts == d.active
}

func (d *Driver) decodeDigital() {
	for _, op := range operation.AllDigitalOperations() {
		d.teleop.SetDigital(op, false)
	}
	for i, dd := range d.schema.Digital {
		e := &d.digitalEdges[i]
		// a description out of its shift scope forgets its press history
		if !d.matches(dd.Shifts) {
			*e = edge{}
			continue
		}
		rising := e.update(d.joysticks.Pressed(dd.Binding))
		if e.value(dd.ButtonType, rising) {
			d.teleop.SetDigital(dd.Operation, true)
		}
	}
}

func (d *Driver) decodeAnalog() {
	for _, op := range operation.AllAnalogOperations() {
		d.teleop.SetAnalog(op, 0)
	}
	seen := map[operation.AnalogOperation]bool{}
	for _, ad := range d.schema.Analog {
		if !seen[ad.Operation] {
			seen[ad.Operation] = true
			d.teleop.SetAnalog(ad.Operation, ad.DefaultValue)
		}
		if ad.Device == input.DeviceNone || !d.matches(ad.Shifts) {
			continue
		}
		js := d.joysticks[ad.Device]
		if js == nil || !js.IsConnected() {
			continue
		}
		raw := js.Axis(ad.Axis)
		if !ad.InputRange().Contains(raw) {
			continue
		}
		d.teleop.SetAnalog(ad.Operation, Scale(ad, raw))
	}
}

// Scale applies an analog description's inversion, dead zone and multiplier to an axis value.
func Scale(ad buttonmap.AnalogDescription, raw float64) float64 {
	value := raw
	if ad.Invert {
		value = -value
	}
	value = utils.ApplyDeadband(value, ad.Deadzone)
	if ad.Multiplier != 0 {
		value *= ad.Multiplier
	}
	return value
}

// decodeMacros starts and cancels macros from their buttons. Simple macros run while held,
// click macros restart on every press and toggle macros start and stop on alternate presses.
func (d *Driver) decodeMacros(ctx context.Context) {
	for i, md := range d.schema.Macro {
		pressed := d.matches(md.Shifts) && d.joysticks.Pressed(md.Binding)
		e := &d.macroEdges[i]
		wasPressed := e.pressed
		rising := e.update(pressed)
		_, running := d.running[md.Operation]

		switch md.ButtonType {
		case input.Click:
			if rising {
				d.startMacro(ctx, md)
			}
		case input.Toggle:
			if rising {
				if running {
					d.cancelMacro(md.Operation)
				} else {
					d.startMacro(ctx, md)
				}
			}
		default:
			if rising {
				d.startMacro(ctx, md)
			} else if wasPressed && !pressed && running {
				d.cancelMacro(md.Operation)
			}
		}
	}
}

func (d *Driver) startMacro(ctx context.Context, md buttonmap.MacroDescription) {
	run, preempted := d.macros.Start(ctx, md.Operation, md.RequiredOperations)
	for _, old := range preempted {
		d.release(old, true)
	}
	for _, op := range md.RequiredOperations {
		clearOperation(&d.macroState, op)
	}
	d.running[md.Operation] = &runningTask{
		task:   md.Task(),
		writer: operation.RestrictWriter(&d.macroState, md.RequiredOperations),
		run:    run,
	}
	d.logger.Debugw("macro started", "macro", md.Operation.String(), "id", run.ID.String())
}

func (d *Driver) cancelMacro(macro operation.MacroOperation) {
	if run, ok := d.macros.Cancel(macro); ok {
		d.release(run, true)
	}
}

// release forgets a run. A run cancelled before completing has its task stopped.
func (d *Driver) release(run *operation.MacroRun, stop bool) {
	rt, ok := d.running[run.Macro]
	if !ok || rt.run != run {
		return
	}
	if stop && rt.begun {
		rt.task.Stop(rt.writer)
	}
	delete(d.running, run.Macro)
	d.logger.Debugw("macro stopped", "macro", run.Macro.String(), "id", run.ID.String(), "cancelled", stop)
}

func (d *Driver) stepMacros(ctx context.Context) {
	for _, run := range d.macros.Runs() {
		rt, ok := d.running[run.Macro]
		if !ok {
			continue
		}
		if d.step(ctx, rt) {
			d.macros.Finish(run)
			delete(d.running, run.Macro)
		}
	}
}

// step advances a task by one cycle and reports whether it is over.
func (d *Driver) step(ctx context.Context, rt *runningTask) bool {
	if rt.begun {
		if rt.task.HasCompleted() {
			rt.task.End(rt.writer)
			return true
		}
		if rt.task.ShouldCancel() {
			rt.task.Stop(rt.writer)
			return true
		}
	} else {
		rt.task.Begin(rt.writer)
		rt.begun = true
	}
	rt.task.Update(rt.writer)
	return false
}

// resolve picks each operation's value from the macro that owns it, or from teleop.
func (d *Driver) resolve() {
	d.values = d.teleop
	for _, run := range d.macros.Runs() {
		for _, op := range run.Owned() {
			switch op := op.(type) {
			case operation.DigitalOperation:
				d.values.SetDigital(op, d.macroState.GetDigital(op))
			case operation.AnalogOperation:
				d.values.SetAnalog(op, d.macroState.GetAnalog(op))
			}
		}
	}
}

func clearOperation(s *operation.State, op operation.Operation) {
	switch op := op.(type) {
	case operation.DigitalOperation:
		s.SetDigital(op, false)
	case operation.AnalogOperation:
		s.SetAnalog(op, 0)
	}
}
