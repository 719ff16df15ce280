package result

import "fmt"

// Failure is the (error, trace) pair carried by a failed Result. The two
// travel together as a single ownership unit: propagation, re-wrapping and
// hand-off always move the whole pair.
type Failure struct {
	err      error
	trace    Trace
	consumed bool
}

func newFailure(err error) *Failure {
	if err == nil {
		panic("result: failure constructed from a nil error")
	}
	return &Failure{err: err}
}

// Error implements the error interface with the domain error's text, so a
// Failure can be returned through plain error channels.
func (f *Failure) Error() string {
	return f.err.Error()
}

// Unwrap exposes the domain error to errors.Is and errors.As.
func (f *Failure) Unwrap() error {
	return f.err
}

// Err returns the wrapped domain error, untouched by the trace machinery.
func (f *Failure) Err() error {
	f.mustLive("Err")
	return f.err
}

// Trace returns the accumulated propagation trace.
func (f *Failure) Trace() *Trace {
	f.mustLive("Trace")
	return &f.trace
}

// record appends one propagation hop.
func (f *Failure) record(loc Location) {
	f.trace.push(loc)
}

// mustLive aborts when the failure was already moved out by Propagate or a
// hand-off. Such use is a contract violation, not a recoverable error.
func (f *Failure) mustLive(op string) {
	if f.consumed {
		panic(fmt.Sprintf("result: %s on a failure that was already moved", op))
	}
}
