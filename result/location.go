package result

import (
	"fmt"
	"runtime"

	"fortio.org/safecast"
)

// Location identifies a single source position (file and line) captured at
// a propagation call site. Locations are immutable once captured.
type Location struct {
	File string
	Line uint32
}

// Here returns the location of its caller.
func Here() Location {
	return caller(1)
}

// DownBy returns the location n lines below l. Useful in tests that tag
// the line of an upcoming statement.
func (l Location) DownBy(n uint32) Location {
	return Location{File: l.File, Line: l.Line + n}
}

// String renders the location as "<file>:<line>".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// caller captures the file and line skip frames above the caller of
// caller itself. A single frame lookup, no stack walk.
func caller(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{File: "unknown"}
	}
	n, err := safecast.Conv[uint32](line)
	if err != nil {
		n = 0
	}
	return Location{File: file, Line: n}
}
