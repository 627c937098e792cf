package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a group of goroutines sharing one context. Stop cancels the context and
// waits for every goroutine to return.
type StoppableWorkers struct {
	mu         sync.Mutex
	ctx        context.Context
	cancelFunc context.CancelFunc
	active     sync.WaitGroup
}

// NewStoppableWorkers starts each function in its own goroutine with a context derived from ctx.
func NewStoppableWorkers(ctx context.Context, funcs ...func(context.Context)) *StoppableWorkers {
	cancelCtx, cancelFunc := context.WithCancel(ctx)
	workers := &StoppableWorkers{ctx: cancelCtx, cancelFunc: cancelFunc}
	workers.Add(funcs...)
	return workers
}

// Add starts more goroutines. It does nothing once the workers are stopped.
func (sw *StoppableWorkers) Add(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.ctx.Err() != nil {
		return
	}
	sw.active.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer sw.active.Done()
			f(sw.ctx)
		})
	}
}

// Stop cancels the workers' context and waits for them to return.
func (sw *StoppableWorkers) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cancelFunc()
	sw.active.Wait()
}

// Context returns the context the workers run with.
func (sw *StoppableWorkers) Context() context.Context {
	return sw.ctx
}
