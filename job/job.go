// Copyright (c) 2023 BVK Chaitanya

// Package job implements an api to manage jobs. Jobs are activities that can
// be canceled, paused or resumed through the context.Context argument and
// survive server restarts through their saved state.
package job

import (
	"context"
	"errors"
	"sync"
)

type State string

const (
	PAUSED    State = "PAUSED"
	RUNNING   State = "RUNNING"
	COMPLETED State = "COMPLETED"
	CANCELED  State = "CANCELED"
	FAILED    State = "FAILED"
)

// IsStopped returns true if a job in the given state is not running.
func IsStopped(s State) bool {
	return s != RUNNING
}

// IsDone returns true if a job in the given state can never run again.
func IsDone(s State) bool {
	return s == COMPLETED || s == CANCELED || s == FAILED
}

type Func func(ctx context.Context) error

var (
	errPause  = errors.New("job is paused")
	errCancel = errors.New("job is canceled")
)

// Job tracks one running invocation of a job function.
type Job struct {
	cancel context.CancelCauseFunc

	wg sync.WaitGroup

	mu sync.Mutex

	status State

	err error
}

// Run invokes the job function on a background goroutine. The function
// receives a context derived from fctx that is canceled by Pause and Cancel
// with their respective causes.
func Run(f Func, fctx context.Context) *Job {
	jctx, jcancel := context.WithCancelCause(fctx)
	j := &Job{
		cancel: jcancel,
		status: RUNNING,
	}
	j.wg.Add(1)
	go j.goRun(jctx, f)
	return j
}

func (j *Job) goRun(ctx context.Context, f Func) {
	defer j.wg.Done()

	err := f(ctx)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = err
	j.status = finalState(ctx, err)
}

// finalState classifies the job function's return value. An error matching
// the job's own cancellation cause is not a failure.
func finalState(ctx context.Context, err error) State {
	switch {
	case err == nil:
		return COMPLETED
	case !errors.Is(err, context.Cause(ctx)):
		return FAILED
	case errors.Is(err, errCancel):
		return CANCELED
	default:
		return PAUSED
	}
}

// Pause stops the job function. The job can be resumed later.
func (j *Job) Pause() {
	j.cancel(errPause)
}

// Cancel stops the job function permanently.
func (j *Job) Cancel() {
	j.cancel(errCancel)
}

// Wait blocks till the job function returns.
func (j *Job) Wait() {
	j.wg.Wait()
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Err returns the job function's return value after the job has stopped.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
