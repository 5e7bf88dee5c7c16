package toaster

import (
	"context"
	"errors"
	"slices"

	"github.com/colonyops/toaster/internal/core/toast"
)

// ErrNoResult is returned by an operation built with FromChannel when the
// channel closes without delivering a result.
var ErrNoResult = errors.New("operation finished without a result")

// Operation is the work tracked by Promise.
type Operation[T any] func(ctx context.Context) (T, error)

// Result is the outcome of an operation that is already running.
type Result[T any] struct {
	Value T
	Err   error
}

// FromChannel adapts an operation that is already running and reports its
// outcome on ch.
func FromChannel[T any](ch <-chan Result[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		select {
		case res, ok := <-ch:
			if !ok {
				return zero, ErrNoResult
			}
			return res.Value, res.Err
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// PromiseMessages configures the notifications shown by Promise. A nil
// Success or Error (or one returning an empty message) dismisses the loading
// notification instead of replacing it.
type PromiseMessages[T any] struct {
	Loading toast.Message
	Success func(T) toast.Message
	Error   func(error) toast.Message

	LoadingOptions []Option
	SuccessOptions []Option
	ErrorOptions   []Option
}

// Always returns a message func ignoring its argument.
func Always[T any](m toast.Message) func(T) toast.Message {
	return func(T) toast.Message { return m }
}

// Promise shows a loading notification, runs op and turns the same
// notification into a success or error one depending on the outcome. The
// operation's value and error are returned unchanged.
func Promise[T any](ctx context.Context, t *Toaster, op Operation[T], msgs PromiseMessages[T], opts ...Option) (T, error) {
	id := t.Loading(msgs.Loading, concat(opts, msgs.LoadingOptions)...)

	value, err := op(ctx)

	var (
		kind  = toast.KindSuccess
		msg   toast.Message
		extra = msgs.SuccessOptions
	)
	if err != nil {
		kind = toast.KindError
		extra = msgs.ErrorOptions
		if msgs.Error != nil {
			msg = msgs.Error(err)
		}
	} else if msgs.Success != nil {
		msg = msgs.Success(value)
	}

	if isEmpty(msg) {
		t.Dismiss(id, collect(opts).key)
		return value, err
	}

	showOpts := concat(opts, []Option{WithID(id)})
	t.Show(kind, msg, concat(showOpts, extra)...)

	return value, err
}

func concat(a, b []Option) []Option {
	return append(slices.Clone(a), b...)
}

func isEmpty(m toast.Message) bool {
	if m == nil {
		return true
	}
	if s, ok := m.(toast.Static); ok {
		return s == ""
	}
	return false
}
