package tasks

import (
	"go.viam.com/frcbot/operation"
)

// SequentialTask runs its tasks one after another. The next task begins in the cycle the previous
// one is found complete.
type SequentialTask struct {
	tasks   []Task
	current int
}

// NewSequentialTask returns a task running tasks in order.
func NewSequentialTask(tasks ...Task) *SequentialTask {
	return &SequentialTask{tasks: tasks}
}

// Begin begins the first task.
func (t *SequentialTask) Begin(w operation.Writer) {
	t.current = 0
	if len(t.tasks) > 0 {
		t.tasks[0].Begin(w)
	}
}

// Update advances past completed tasks and updates the current one.
func (t *SequentialTask) Update(w operation.Writer) {
	if len(t.tasks) == 0 {
		return
	}
	for t.current < len(t.tasks)-1 && t.tasks[t.current].HasCompleted() {
		t.tasks[t.current].End(w)
		t.current++
		t.tasks[t.current].Begin(w)
	}
	t.tasks[t.current].Update(w)
}

// HasCompleted reports whether the last task completed.
func (t *SequentialTask) HasCompleted() bool {
	if len(t.tasks) == 0 {
		return true
	}
	return t.current == len(t.tasks)-1 && t.tasks[t.current].HasCompleted()
}

// ShouldCancel reports whether the current task wants to cancel.
func (t *SequentialTask) ShouldCancel() bool {
	return len(t.tasks) > 0 && t.tasks[t.current].ShouldCancel()
}

// End ends the last task.
func (t *SequentialTask) End(w operation.Writer) {
	if len(t.tasks) > 0 {
		t.tasks[t.current].End(w)
	}
}

// Stop stops the current task.
func (t *SequentialTask) Stop(w operation.Writer) {
	if len(t.tasks) > 0 {
		t.tasks[t.current].Stop(w)
	}
}

// ConcurrentTask runs its tasks side by side. It completes when all of them have completed, or
// when any one has if anyCompletes is set.
type ConcurrentTask struct {
	anyCompletes bool
	tasks        []Task
	done         []bool
}

// NewConcurrentTask returns a task running tasks together.
func NewConcurrentTask(anyCompletes bool, tasks ...Task) *ConcurrentTask {
	return &ConcurrentTask{anyCompletes: anyCompletes, tasks: tasks}
}

// Begin begins every task.
func (t *ConcurrentTask) Begin(w operation.Writer) {
	t.done = make([]bool, len(t.tasks))
	for _, task := range t.tasks {
		task.Begin(w)
	}
}

// Update ends tasks that completed and updates the rest.
func (t *ConcurrentTask) Update(w operation.Writer) {
	for i, task := range t.tasks {
		if t.done[i] {
			continue
		}
		if task.HasCompleted() {
			task.End(w)
			t.done[i] = true
			continue
		}
		task.Update(w)
	}
}

// HasCompleted reports whether all tasks, or any task if anyCompletes is set, have completed.
func (t *ConcurrentTask) HasCompleted() bool {
	completed := 0
	for i, task := range t.tasks {
		if t.done[i] || task.HasCompleted() {
			completed++
		}
	}
	if t.anyCompletes {
		return completed > 0 || len(t.tasks) == 0
	}
	return completed == len(t.tasks)
}

// ShouldCancel reports whether any unfinished task wants to cancel.
func (t *ConcurrentTask) ShouldCancel() bool {
	for i, task := range t.tasks {
		if !t.done[i] && task.ShouldCancel() {
			return true
		}
	}
	return false
}

// End ends the tasks that completed and stops the ones still running.
func (t *ConcurrentTask) End(w operation.Writer) {
	for i, task := range t.tasks {
		if t.done[i] {
			continue
		}
		if task.HasCompleted() {
			task.End(w)
		} else {
			task.Stop(w)
		}
		t.done[i] = true
	}
}

// Stop stops every unfinished task.
func (t *ConcurrentTask) Stop(w operation.Writer) {
	for i, task := range t.tasks {
		if !t.done[i] {
			task.Stop(w)
			t.done[i] = true
		}
	}
}
