// Package render formats return traces for human consumption. The output
// is purely presentational: there is no parser counterpart.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"trail/result"
)

// Format renders the canonical trace listing: one line per hop, three
// leading spaces, the zero-based index, ": ", then "<file>:<line>".
// Rendering the same trace twice yields byte-identical output.
func Format(t *result.Trace) string {
	return Renderer{}.Render(t)
}

// FormatAligned renders the listing with hop indexes right-justified and
// locations padded into a right-aligned column, so indexes and line
// numbers scan vertically in long traces. Padding is display-width
// aware: wide runes in file paths do not skew the column.
func FormatAligned(t *result.Trace) string {
	locs := t.Strings()
	if len(locs) == 0 {
		return ""
	}
	idxWidth := len(strconv.Itoa(len(locs) - 1))
	locWidth := 0
	for _, s := range locs {
		if w := runewidth.StringWidth(s); w > locWidth {
			locWidth = w
		}
	}
	var sb strings.Builder
	for i, s := range locs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "   %*d: %s", idxWidth, i, runewidth.FillLeft(s, locWidth))
	}
	return sb.String()
}

// Renderer configures trace rendering. The zero value produces the
// canonical listing.
type Renderer struct {
	// Color styles the index and location segments.
	Color bool
	// MaxWidth truncates each line to the given display width with an
	// ellipsis. Zero disables truncation.
	MaxWidth int
}

var (
	indexColor    = color.New(color.FgHiBlack)
	locationColor = color.New(color.FgCyan)
)

// Render produces the trace listing according to the renderer settings.
func (r Renderer) Render(t *result.Trace) string {
	var sb strings.Builder
	i := 0
	for loc := range t.All() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(r.line(i, loc))
		i++
	}
	return sb.String()
}

// Report renders a failure as a complete error report: the domain error
// first, then the return trace preceded by a blank line.
func (r Renderer) Report(f *result.Failure) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %v\n", f.Err())
	if f.Trace().Len() > 0 {
		sb.WriteString("\nreturn trace:\n")
		sb.WriteString(r.Render(f.Trace()))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r Renderer) line(i int, loc result.Location) string {
	idx := fmt.Sprintf("%d", i)
	pos := loc.String()
	if r.MaxWidth > 0 {
		// gutter + index + ": " are plain ASCII; only the location needs
		// display-width handling
		avail := r.MaxWidth - (3 + len(idx) + 2)
		if avail > 0 && runewidth.StringWidth(pos) > avail {
			pos = runewidth.Truncate(pos, avail, "…")
		}
	}
	if r.Color {
		return "   " + indexColor.Sprint(idx) + ": " + locationColor.Sprint(pos)
	}
	return "   " + idx + ": " + pos
}
