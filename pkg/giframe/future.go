package giframe

import (
	"context"
	"sync"
)

// future is resolved or rejected exactly once and may be awaited from any
// goroutine.
type future struct {
	once   sync.Once
	done   chan struct{}
	result string
	err    error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) resolve(result string) {
	f.once.Do(func() {
		f.result = result
		close(f.done)
	})
}

func (f *future) reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the workflow has produced its result or failed.
func (g *GIFrame) Done() <-chan struct{} {
	return g.future.done
}

// Result returns the encoded frame, the fatal error that stopped the
// workflow, or ErrPending.
func (g *GIFrame) Result() (string, error) {
	select {
	case <-g.future.done:
		return g.future.result, g.future.err
	default:
		return "", ErrPending
	}
}

// Wait blocks until Done is closed or ctx ends. Another goroutine must keep
// feeding the GIFrame meanwhile.
func (g *GIFrame) Wait(ctx context.Context) (string, error) {
	select {
	case <-g.future.done:
		return g.future.result, g.future.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
