package tasks

import (
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/frcbot/operation"
)

// WaitTask completes once a duration has passed since it began. It writes nothing.
type WaitTask struct {
	duration time.Duration
	clock    clock.Clock
	start    time.Time
}

// NewWaitTask returns a task that waits for d.
func NewWaitTask(d time.Duration, clk clock.Clock) *WaitTask {
	if clk == nil {
		clk = clock.New()
	}
	return &WaitTask{duration: d, clock: clk}
}

// Begin starts the timer.
func (t *WaitTask) Begin(w operation.Writer) {
	t.start = t.clock.Now()
}

// Update does nothing.
func (t *WaitTask) Update(w operation.Writer) {}

// HasCompleted reports whether the duration has passed.
func (t *WaitTask) HasCompleted() bool {
	return t.clock.Since(t.start) >= t.duration
}

// ShouldCancel is always false.
func (t *WaitTask) ShouldCancel() bool { return false }

// End does nothing.
func (t *WaitTask) End(w operation.Writer) {}

// Stop does nothing.
func (t *WaitTask) Stop(w operation.Writer) {}
