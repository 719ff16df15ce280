package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"trail/result"
)

func readmeTrace() *result.Trace {
	return result.NewTrace(
		result.Location{File: "readme.rs", Line: 7},
		result.Location{File: "readme.rs", Line: 27},
	)
}

func TestFormatReferenceLayout(t *testing.T) {
	want := "   0: readme.rs:7\n   1: readme.rs:27"
	if got := Format(readmeTrace()); got != want {
		t.Fatalf("Format: want %q, got %q", want, got)
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	tr := readmeTrace()
	first := Format(tr)
	second := Format(tr)
	if first != second {
		t.Fatalf("repeated Format differs: %q vs %q", first, second)
	}
}

func TestFormatEmptyTrace(t *testing.T) {
	if got := Format(result.NewTrace()); got != "" {
		t.Fatalf("empty trace: want empty string, got %q", got)
	}
}

func TestFormatAlignedColumns(t *testing.T) {
	locs := make([]result.Location, 11)
	for i := range locs {
		locs[i] = result.Location{File: "hop.go", Line: uint32(i + 1)}
	}
	locs[3] = result.Location{File: "a/longer/path.go", Line: 9}

	lines := strings.Split(FormatAligned(result.NewTrace(locs...)), "\n")
	if len(lines) != 11 {
		t.Fatalf("lines: want 11, got %d", len(lines))
	}
	// single-digit indexes are padded to the two-digit column
	if !strings.HasPrefix(lines[0], "    0: ") {
		t.Fatalf("index not right-justified: %q", lines[0])
	}
	if !strings.HasPrefix(lines[10], "   10: ") {
		t.Fatalf("widest index mispadded: %q", lines[10])
	}
	// every location ends in the same column
	width := len(lines[3])
	for i, line := range lines {
		if len(line) != width {
			t.Fatalf("line %d not aligned: %q vs %q", i, line, lines[3])
		}
	}

	if got := FormatAligned(result.NewTrace()); got != "" {
		t.Fatalf("empty trace: want empty string, got %q", got)
	}
}

func TestRenderTruncatesLongLocations(t *testing.T) {
	tr := result.NewTrace(result.Location{
		File: "internal/very/deeply/nested/package/file_with_a_long_name.go",
		Line: 120,
	})
	r := Renderer{MaxWidth: 30}
	got := r.Render(tr)
	if !strings.HasPrefix(got, "   0: ") {
		t.Fatalf("layout broken: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis: %q", got)
	}
	// short lines are untouched
	short := r.Render(readmeTrace())
	if short != Format(readmeTrace()) {
		t.Fatalf("short lines truncated: %q", short)
	}
}

func TestColorRenderKeepsLayout(t *testing.T) {
	// with colors globally disabled the styled render must equal the
	// canonical bytes
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	r := Renderer{Color: true}
	if got, want := r.Render(readmeTrace()), Format(readmeTrace()); got != want {
		t.Fatalf("color render: want %q, got %q", want, got)
	}
}

func TestReportSeparatesTraceWithBlankLine(t *testing.T) {
	inner := func() result.Result[int] {
		return result.Wrap[int](errors.New("file not found"))
	}
	outer := func() result.Result[int] {
		v, fail := inner().Propagate()
		if fail != nil {
			return result.Failed[int](fail)
		}
		return result.Ok(v)
	}

	_, fail := outer().Get()
	if fail == nil {
		t.Fatalf("expected a failure")
	}
	report := Renderer{}.Report(fail)
	if !strings.HasPrefix(report, "error: file not found\n") {
		t.Fatalf("report header: %q", report)
	}
	if !strings.Contains(report, "\n\nreturn trace:\n   0: ") {
		t.Fatalf("trace not separated by a blank line: %q", report)
	}

	// a never-propagated failure has nothing to list
	_, direct := result.Err[int](errors.New("direct")).Get()
	bare := Renderer{}.Report(direct)
	if strings.Contains(bare, "return trace") {
		t.Fatalf("empty trace rendered: %q", bare)
	}
}
