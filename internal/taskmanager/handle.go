package taskmanager

import (
	"context"
	"sync"
)

// Handle represents the eventual outcome of a submitted task. It is returned
// immediately at submission time; while a record stays live under its name,
// every submission of that name receives the same handle.
//
// A handle completes exactly once. Waiting is the only blocking operation the
// facility exposes, and it is opt-in; a caller that wants a timeout wraps the
// context it passes to Wait.
type Handle struct {
	name string
	done chan struct{}

	once   sync.Once
	result any
	err    error
}

func newHandle(name string) *Handle {
	return &Handle{
		name: name,
		done: make(chan struct{}),
	}
}

// Name returns the task name this handle belongs to.
func (h *Handle) Name() string {
	return h.name
}

// Done returns a channel that is closed when the task reaches a terminal
// state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task completes, fails, or is cancelled, or until ctx
// is done. On success it returns the task's result. If the task failed, the
// original failure is returned as an *ExecutionError; if it was cancelled
// before starting, ErrTaskCancelled is returned.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the task outcome without blocking. The boolean reports
// whether the task has reached a terminal state; when it is false the other
// return values are meaningless.
func (h *Handle) Result() (any, error, bool) {
	select {
	case <-h.done:
		return h.result, h.err, true
	default:
		return nil, nil, false
	}
}

// complete records the outcome and releases all waiters. Later calls are
// no-ops, which keeps terminal transitions one-shot even if cancellation and
// completion race.
func (h *Handle) complete(result any, err error) {
	h.once.Do(func() {
		h.result = result
		h.err = err
		close(h.done)
	})
}
