package result

import "fmt"

// Result is a tagged value with exactly two variants: a success carrying a
// payload, or a failure carrying a domain error plus its return trace.
// The zero value is a success holding T's zero value.
type Result[T any] struct {
	val  T
	fail *Failure
}

// Ok returns a successful result. No trace is allocated.
func Ok[T any](v T) Result[T] {
	return Result[T]{val: v}
}

// Err returns a failed result with an empty trace. The trace is populated
// only as the value travels through propagation points.
func Err[T any](err error) Result[T] {
	return Result[T]{fail: newFailure(err)}
}

// Wrap converts a plain error into a failed result whose trace starts at
// the caller. Use it where an untraced error first enters traced code.
func Wrap[T any](err error) Result[T] {
	f := newFailure(err)
	f.record(caller(1))
	return Result[T]{fail: f}
}

// Of bridges Go's (value, error) convention: a nil error yields a success,
// a non-nil error yields a failure whose trace starts at the caller.
//
//	return result.Of(os.Open(path))
func Of[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	f := newFailure(err)
	f.record(caller(1))
	return Result[T]{fail: f}
}

// Failed adopts a failure released by Propagate into the current
// function's result type. No location is appended here: the hop was
// recorded by Propagate at its call site.
func Failed[T any](f *Failure) Result[T] {
	if f == nil {
		panic("result: Failed with a nil failure")
	}
	f.consumed = false
	return Result[T]{fail: f}
}

// Propagate consumes the result. A success yields its payload and a nil
// failure. A failure records the caller as the next hop, invalidates r and
// releases the (error, trace) pair for the caller to return via Failed:
//
//	v, fail := loadIndex(dir).Propagate()
//	if fail != nil {
//		return result.Failed[Snapshot](fail)
//	}
//
// Propagating the same failed result twice panics: the first application
// moved the failure out.
func (r Result[T]) Propagate() (T, *Failure) {
	if r.fail == nil {
		return r.val, nil
	}
	f := r.fail
	f.mustLive("Propagate")
	f.record(caller(1))
	f.consumed = true
	var zero T
	return zero, f
}

// Forward returns r unchanged on success, or records the caller as one
// more hop on failure, for functions that hand a received result straight
// back to their own caller. Returning r without Forward is also legal and
// records nothing.
func Forward[T any](r Result[T]) Result[T] {
	if r.fail != nil {
		r.fail.mustLive("Forward")
		r.fail.record(caller(1))
	}
	return r
}

// IsOk reports whether the result is a success.
func (r Result[T]) IsOk() bool {
	return r.fail == nil
}

// IsErr reports whether the result is a failure.
func (r Result[T]) IsErr() bool {
	return r.fail != nil
}

// Get is the pattern-style accessor: exactly one of the payload and the
// failure is meaningful. It neither appends a hop nor consumes the
// failure, so it is the right call for a final handler.
func (r Result[T]) Get() (T, *Failure) {
	if r.fail != nil {
		r.fail.mustLive("Get")
	}
	return r.val, r.fail
}

// Value returns the payload and true on success.
func (r Result[T]) Value() (T, bool) {
	if r.fail != nil {
		var zero T
		return zero, false
	}
	return r.val, true
}

// Fail returns the failure of a failed result. Calling it on a success is
// a contract violation and panics.
func (r Result[T]) Fail() *Failure {
	if r.fail == nil {
		panic("result: Fail called on a successful result")
	}
	r.fail.mustLive("Fail")
	return r.fail
}

// Unwrap returns the payload, panicking on failure with the domain error
// and the rendered trace.
func (r Result[T]) Unwrap() T {
	if r.fail != nil {
		unwrapFailed("Unwrap on a failed result", r.fail)
	}
	return r.val
}

// Expect returns the payload, panicking on failure with msg, the domain
// error and the rendered trace.
func (r Result[T]) Expect(msg string) T {
	if r.fail != nil {
		unwrapFailed(msg, r.fail)
	}
	return r.val
}

// UnwrapErr returns the domain error of a failed result, panicking on
// success.
func (r Result[T]) UnwrapErr() error {
	if r.fail == nil {
		panic(fmt.Sprintf("result: UnwrapErr on a successful result: %v", r.val))
	}
	r.fail.mustLive("UnwrapErr")
	return r.fail.err
}

// ExpectErr returns the domain error of a failed result, panicking on
// success with msg.
func (r Result[T]) ExpectErr(msg string) error {
	if r.fail == nil {
		panic(fmt.Sprintf("%s: %v", msg, r.val))
	}
	r.fail.mustLive("ExpectErr")
	return r.fail.err
}

// UnwrapOr returns the payload, or def on failure.
func (r Result[T]) UnwrapOr(def T) T {
	if r.fail != nil {
		return def
	}
	return r.val
}

// UnwrapOrElse returns the payload, or op applied to the domain error.
func (r Result[T]) UnwrapOrElse(op func(error) T) T {
	if r.fail != nil {
		r.fail.mustLive("UnwrapOrElse")
		return op(r.fail.err)
	}
	return r.val
}

// UnwrapOrZero returns the payload, or T's zero value on failure.
func (r Result[T]) UnwrapOrZero() T {
	if r.fail != nil {
		var zero T
		return zero
	}
	return r.val
}

// MapErr transforms the domain error of a failure, leaving the trace and
// a success untouched. No hop is recorded.
func (r Result[T]) MapErr(op func(error) error) Result[T] {
	if r.fail == nil {
		return r
	}
	r.fail.mustLive("MapErr")
	r.fail.err = op(r.fail.err)
	return r
}

// Std converts to Go's (value, error) convention. The returned error is
// the Failure itself, so the trace stays reachable through errors.As and
// the domain error through errors.Is.
func (r Result[T]) Std() (T, error) {
	if r.fail == nil {
		return r.val, nil
	}
	r.fail.mustLive("Std")
	var zero T
	return zero, r.fail
}

func unwrapFailed(msg string, f *Failure) {
	panic(fmt.Sprintf("result: %s: %v\nreturn trace:%s", msg, f.err, &f.trace))
}
