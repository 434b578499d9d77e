package gemini

import (
	"context"
	"sync"
)

// Call is the handle to one in-flight API operation. Submitting an
// operation returns immediately with a Call; the outcome becomes
// available once the Done channel closes. A Call completes exactly once
// and its outcome never changes afterwards.
type Call[T any] struct {
	op   string
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newCall[T any](op string) *Call[T] {
	return &Call[T]{op: op, done: make(chan struct{})}
}

// complete records the outcome and releases waiters. Later completions
// are no-ops.
func (c *Call[T]) complete(v T, err error) {
	c.once.Do(func() {
		c.val = v
		c.err = err
		close(c.done)
	})
}

// Op returns the operation label, e.g. "GET models".
func (c *Call[T]) Op() string { return c.op }

// Done returns a channel that closes once the call has completed, for
// use in select statements alongside other channels.
func (c *Call[T]) Done() <-chan struct{} { return c.done }

// Value returns the decoded result, or the zero value while the call is
// still in flight. Check Done first, or use Wait.
func (c *Call[T]) Value() T {
	select {
	case <-c.done:
		return c.val
	default:
		var zero T
		return zero
	}
}

// Err returns the call's error, or nil while the call is still in
// flight. Check Done first, or use Wait.
func (c *Call[T]) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the call completes or ctx is done, whichever comes
// first. When ctx wins the race the underlying request keeps running
// and Wait returns an UnexpectedError wrapping ctx.Err(); other waiters
// on the same Call are unaffected.
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, &UnexpectedError{Op: c.op, Cause: ctx.Err()}
	}
}
