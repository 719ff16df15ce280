package result

import (
	"fmt"
	"iter"
	"strings"
)

// Trace is an append-only sequence of propagation locations, ordered from
// the failure origin (first entry) to the most recent hop (last entry).
// Entries are never reordered, deduplicated or truncated. The zero value
// is an empty trace.
type Trace struct {
	locs []Location
}

// NewTrace builds a trace from pre-captured locations, for renderers and
// tests. Propagation never uses it: live traces grow one hop at a time.
func NewTrace(locs ...Location) *Trace {
	t := &Trace{}
	t.locs = append(t.locs, locs...)
	return t
}

// push appends one hop to the tail.
func (t *Trace) push(loc Location) {
	t.locs = append(t.locs, loc)
}

// Len returns the number of recorded hops.
func (t *Trace) Len() int {
	return len(t.locs)
}

// At returns the i-th location in propagation order.
func (t *Trace) At(i int) Location {
	return t.locs[i]
}

// All iterates over locations in propagation order. The sequence is
// finite and restartable.
func (t *Trace) All() iter.Seq[Location] {
	return func(yield func(Location) bool) {
		for _, loc := range t.locs {
			if !yield(loc) {
				return
			}
		}
	}
}

// Strings renders every location as "<file>:<line>".
func (t *Trace) Strings() []string {
	out := make([]string, len(t.locs))
	for i, loc := range t.locs {
		out[i] = loc.String()
	}
	return out
}

// String renders the trace for embedding in a larger error report: one
// entry per line, each preceded by a newline so the listing starts on a
// fresh line after a "return trace:" style prefix.
func (t *Trace) String() string {
	var sb strings.Builder
	for i, loc := range t.locs {
		fmt.Fprintf(&sb, "\n   %d: %s", i, loc)
	}
	return sb.String()
}
