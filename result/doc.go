// Package result provides a success/failure value that accumulates a
// return trace: an ordered list of source locations recording every point
// where a failure was propagated out of a fallible operation.
//
// # Usage
//
// A fallible function returns a Result and propagates sub-call failures
// with Propagate, which records the call site and releases the failure for
// an early return:
//
//	func readHeader(path string) result.Result[Header] {
//		data, fail := readFile(path).Propagate()
//		if fail != nil {
//			return result.Failed[Header](fail)
//		}
//		return parseHeader(data)
//	}
//
// At the boundary where a plain (value, error) API first enters traced
// code, Of or Wrap start the trace:
//
//	func readFile(path string) result.Result[[]byte] {
//		return result.Of(os.ReadFile(path))
//	}
//
// The final consumer pattern-matches with Get and renders the trace:
//
//	if v, fail := r.Get(); fail == nil {
//		use(v)
//	} else {
//		fmt.Printf("error: %v\n", fail.Err())
//		fmt.Printf("\nreturn trace:%s\n", fail.Trace())
//	}
//
// # Capture cost
//
// Each propagation point performs exactly one frame lookup for its own
// call site and one append. There is no stack unwinding and no symbol
// resolution; the trace is built incrementally as the failure travels.
//
// # Ownership
//
// The (error, trace) pair inside a failed Result is a single ownership
// unit. Propagate consumes it; the caller re-owns it through Failed.
// Using a failure after it was consumed is a contract violation and
// panics, as is extracting the failure of a successful result.
package result
