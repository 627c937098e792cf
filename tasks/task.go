// Package tasks contains the time-extended actions run by macros and autonomous routines. A
// task writes operation values through the writer it is handed each cycle, exactly as the
// teleop decoder does, and the mechanisms cannot tell the two apart.
package tasks

import (
	"go.viam.com/frcbot/operation"
)

// A Task is driven once per cycle by its owner:
//
//	Begin once, then every cycle either
//	  HasCompleted -> End, or
//	  ShouldCancel -> Stop, or
//	  Update.
//
// Stop is also called when the owner cancels the task, e.g. when a button is released or another
// macro takes over one of its operations.
type Task interface {
	Begin(w operation.Writer)
	Update(w operation.Writer)
	HasCompleted() bool
	ShouldCancel() bool
	// End is called after the task completed.
	End(w operation.Writer)
	// Stop is called when the task is cancelled before completing.
	Stop(w operation.Writer)
}

// Factory builds a fresh task each time a macro starts.
type Factory func() Task
