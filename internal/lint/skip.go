package lint

import (
	"go/ast"
	"go/token"
	"sort"
	"strings"
)

// skipDirective is the comment that suppresses a finding on its line.
// Anything after the directive is free-form justification.
const skipDirective = "//trail:skip"

// isSkipComment matches the directive exactly: the marker followed by
// end-of-comment or whitespace, so //trail:skipped is not a directive.
func isSkipComment(text string) bool {
	if !strings.HasPrefix(text, skipDirective) {
		return false
	}
	rest := text[len(skipDirective):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

type skipMark struct {
	pos  token.Pos
	used bool
}

// skipSet indexes skip directives by file and line.
type skipSet struct {
	marks map[string]map[int]*skipMark
}

func collectSkips(fset *token.FileSet, files []*ast.File) *skipSet {
	s := &skipSet{marks: make(map[string]map[int]*skipMark)}
	for _, f := range files {
		for _, cg := range f.Comments {
			for _, c := range cg.List {
				if !isSkipComment(c.Text) {
					continue
				}
				pos := fset.Position(c.Pos())
				if s.marks[pos.Filename] == nil {
					s.marks[pos.Filename] = make(map[int]*skipMark)
				}
				s.marks[pos.Filename][pos.Line] = &skipMark{pos: c.Pos()}
			}
		}
	}
	return s
}

// suppress reports whether a skip directive covers pos and marks it used.
func (s *skipSet) suppress(pos token.Position) bool {
	m := s.marks[pos.Filename][pos.Line]
	if m == nil {
		return false
	}
	m.used = true
	return true
}

// reportUnused flags directives that suppressed nothing, in a
// deterministic order.
func (s *skipSet) reportUnused(report func(token.Pos, string)) {
	var unused []*skipMark
	for _, lines := range s.marks {
		for _, m := range lines {
			if !m.used {
				unused = append(unused, m)
			}
		}
	}
	sort.Slice(unused, func(i, j int) bool { return unused[i].pos < unused[j].pos })
	for _, m := range unused {
		report(m.pos, "unused trail:skip directive")
	}
}
