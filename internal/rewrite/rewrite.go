// Package rewrite inserts propagation forwarding into Go sources: a
// `return r` statement that hands a received traced result straight back
// to the caller is rewritten to `return result.Forward(r)`, so the hop is
// recorded in the return trace. This recovers the ergonomics of an
// operator-level propagation step without compiler support.
package rewrite

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// resultPkgPath is the import path of the traced result package.
const resultPkgPath = "trail/result"

// skipDirective on the return line leaves the statement untouched.
const skipDirective = "//trail:skip"

// File rewrites src, the content of filename. It returns the new content
// and the number of rewritten return statements. When nothing changes the
// original src is returned untouched.
func File(filename string, src []byte) ([]byte, int, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", filename, err)
	}

	alias := resultImportName(f)
	if alias == "" {
		return src, 0, nil
	}
	skips := skipLines(fset, f)

	changed := 0
	var stack []*ast.FuncType
	pre := func(c *astutil.Cursor) bool {
		switch n := c.Node().(type) {
		case *ast.FuncDecl:
			stack = append(stack, n.Type)
		case *ast.FuncLit:
			stack = append(stack, n.Type)
		case *ast.ReturnStmt:
			if len(stack) == 0 || len(n.Results) != 1 {
				return true
			}
			if !returnsTracedResult(stack[len(stack)-1], alias) {
				return true
			}
			if skips[fset.Position(n.Pos()).Line] {
				return true
			}
			if !shouldWrap(n.Results[0], alias) {
				return true
			}
			n.Results[0] = &ast.CallExpr{
				Fun: &ast.SelectorExpr{
					X:   ast.NewIdent(alias),
					Sel: ast.NewIdent("Forward"),
				},
				Args: []ast.Expr{n.Results[0]},
			}
			changed++
		}
		return true
	}
	post := func(c *astutil.Cursor) bool {
		switch c.Node().(type) {
		case *ast.FuncDecl, *ast.FuncLit:
			stack = stack[:len(stack)-1]
		}
		return true
	}
	astutil.Apply(f, pre, post)

	if changed == 0 {
		return src, 0, nil
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, 0, fmt.Errorf("print %s: %w", filename, err)
	}
	return buf.Bytes(), changed, nil
}

// resultImportName returns the local name under which the file imports
// the result package, or "" when it does not import it usably.
func resultImportName(f *ast.File) string {
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != resultPkgPath {
			continue
		}
		if imp.Name == nil {
			return "result"
		}
		if imp.Name.Name == "_" || imp.Name.Name == "." {
			return ""
		}
		return imp.Name.Name
	}
	return ""
}

// skipLines collects the lines carrying a skip directive. The marker
// must be followed by end-of-comment or whitespace, so //trail:skipped
// is not a directive.
func skipLines(fset *token.FileSet, f *ast.File) map[int]bool {
	lines := make(map[int]bool)
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			rest, ok := strings.CutPrefix(c.Text, skipDirective)
			if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
				continue
			}
			lines[fset.Position(c.Pos()).Line] = true
		}
	}
	return lines
}

// returnsTracedResult reports whether the function type has exactly one
// result written as alias.Result[...].
func returnsTracedResult(ftype *ast.FuncType, alias string) bool {
	if ftype == nil || ftype.Results == nil || len(ftype.Results.List) != 1 {
		return false
	}
	field := ftype.Results.List[0]
	if len(field.Names) > 1 {
		return false
	}
	idx, ok := field.Type.(*ast.IndexExpr)
	if !ok {
		return false
	}
	sel, ok := idx.X.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Result" {
		return false
	}
	id, ok := sel.X.(*ast.Ident)
	return ok && id.Name == alias
}

// shouldWrap reports whether the returned expression forwards a received
// result. Calls into the result package construct or already forward, so
// they stay as written.
func shouldWrap(expr ast.Expr, alias string) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.CallExpr:
		fun := e.Fun
		// explicit instantiation: result.Err[int](err)
		switch idx := fun.(type) {
		case *ast.IndexExpr:
			fun = idx.X
		case *ast.IndexListExpr:
			fun = idx.X
		}
		if sel, ok := fun.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok && id.Name == alias {
				return false
			}
		}
		return true
	default:
		return false
	}
}
