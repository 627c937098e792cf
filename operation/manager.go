package operation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MacroRun is one running instance of a macro and the operations it exclusively owns.
type MacroRun struct {
	ID      uuid.UUID
	Macro   MacroOperation
	Started time.Time

	owned      []Operation
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Owns reports whether the run owns op.
func (r *MacroRun) Owns(op Operation) bool {
	return lo.Contains(r.owned, op)
}

// Owned returns the operations the run owns.
func (r *MacroRun) Owned() []Operation {
	return r.owned
}

// Context is cancelled when the run is preempted, cancelled or finished.
func (r *MacroRun) Context() context.Context {
	return r.ctx
}

// MacroManager enforces exclusive ownership of operations by running macros. Starting a macro
// cancels every running macro that shares an owned operation with it, so at most one run owns
// any given operation at a time.
type MacroManager struct {
	mu    sync.Mutex
	clock clock.Clock
	runs  map[MacroOperation]*MacroRun
}

// NewMacroManager returns an empty manager that timestamps runs with clk.
func NewMacroManager(clk clock.Clock) *MacroManager {
	if clk == nil {
		clk = clock.New()
	}
	return &MacroManager{clock: clk, runs: map[MacroOperation]*MacroRun{}}
}

// Start creates a new run of macro owning the given operations. Runs that overlap with it,
// including a previous run of the same macro, are cancelled and returned as preempted so the
// caller can stop their tasks.
func (mm *MacroManager) Start(ctx context.Context, macro MacroOperation, owned []Operation) (*MacroRun, []*MacroRun) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	var preempted []*MacroRun
	for _, other := range mm.sortedRunsInLock() {
		if other.Macro == macro || lo.Some(other.owned, owned) {
			mm.cancelInLock(other)
			preempted = append(preempted, other)
		}
	}

	run := &MacroRun{
		ID:      uuid.New(),
		Macro:   macro,
		Started: mm.clock.Now(),
		owned:   lo.Uniq(owned),
	}
	run.ctx, run.cancelFunc = context.WithCancel(ctx)
	mm.runs[macro] = run
	return run, preempted
}

// Running returns the current run of macro, if any.
func (mm *MacroManager) Running(macro MacroOperation) (*MacroRun, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	run, ok := mm.runs[macro]
	return run, ok
}

// Runs returns every current run ordered by macro.
func (mm *MacroManager) Runs() []*MacroRun {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.sortedRunsInLock()
}

// Owner returns the run that currently owns op, if any.
func (mm *MacroManager) Owner(op Operation) (*MacroRun, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for _, run := range mm.runs {
		if run.Owns(op) {
			return run, true
		}
	}
	return nil, false
}

// Finish releases a run that completed on its own. It is a no-op for runs that were already
// replaced or cancelled.
func (mm *MacroManager) Finish(run *MacroRun) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if current, ok := mm.runs[run.Macro]; ok && current == run {
		mm.cancelInLock(run)
	}
}

// Cancel cancels the current run of macro and returns it.
func (mm *MacroManager) Cancel(macro MacroOperation) (*MacroRun, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	run, ok := mm.runs[macro]
	if !ok {
		return nil, false
	}
	mm.cancelInLock(run)
	return run, true
}

// CancelAll cancels every run and returns them ordered by macro.
func (mm *MacroManager) CancelAll() []*MacroRun {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	runs := mm.sortedRunsInLock()
	for _, run := range runs {
		mm.cancelInLock(run)
	}
	return runs
}

func (mm *MacroManager) cancelInLock(run *MacroRun) {
	run.cancelFunc()
	delete(mm.runs, run.Macro)
}

func (mm *MacroManager) sortedRunsInLock() []*MacroRun {
	runs := lo.Values(mm.runs)
	sort.Slice(runs, func(i, j int) bool { return runs[i].Macro < runs[j].Macro })
	return runs
}
