// Package lint implements trailcheck, a go/analysis pass that reports
// traced results which are silently discarded.
package lint

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/packages"
)

const doc = `trailcheck reports traced results that are silently discarded

A result.Result carries a failure that must be handled or propagated.
Discarding one in an expression statement or a blank assignment loses both
the error and its return trace. Suppress a finding with a trailing
//trail:skip comment on the offending line; a skip that suppresses nothing
is itself reported.`

// resultPkgPath is the import path of the traced result package.
const resultPkgPath = "trail/result"

// Analyzer is the trailcheck pass, usable with vet-style drivers.
var Analyzer = &analysis.Analyzer{
	Name:     "trailcheck",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	check(pass.Fset, pector, pass.TypesInfo, pass.Files, func(pos token.Pos, msg string) {
		pass.Reportf(pos, "%s", msg)
	})
	return nil, nil
}

// Finding is one diagnostic produced by Check.
type Finding struct {
	Pos token.Position
	Msg string
}

// Check runs the pass over packages loaded with x/tools/go/packages and
// returns the findings sorted by position.
func Check(pkgs []*packages.Package) []Finding {
	var out []Finding
	for _, pkg := range pkgs {
		if pkg.TypesInfo == nil {
			continue
		}
		fset := pkg.Fset
		pector := inspector.New(pkg.Syntax)
		check(fset, pector, pkg.TypesInfo, pkg.Syntax, func(pos token.Pos, msg string) {
			out = append(out, Finding{Pos: fset.Position(pos), Msg: msg})
		})
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Pos, out[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
	return out
}

func check(fset *token.FileSet, pector *inspector.Inspector, info *types.Info, files []*ast.File, report func(token.Pos, string)) {
	skips := collectSkips(fset, files)

	nodeFilter := []ast.Node{
		(*ast.ExprStmt)(nil),
		(*ast.AssignStmt)(nil),
	}
	pector.Preorder(nodeFilter, func(node ast.Node) {
		switch stmt := node.(type) {
		case *ast.ExprStmt:
			call, ok := stmt.X.(*ast.CallExpr)
			if !ok || !isTracedResult(info.TypeOf(call)) {
				return
			}
			if skips.suppress(fset.Position(stmt.Pos())) {
				return
			}
			report(stmt.Pos(), fmt.Sprintf("result of %s call is discarded", types.ExprString(call.Fun)))
		case *ast.AssignStmt:
			if len(stmt.Lhs) != len(stmt.Rhs) {
				return
			}
			for i, lhs := range stmt.Lhs {
				id, ok := lhs.(*ast.Ident)
				if !ok || id.Name != "_" {
					continue
				}
				call, ok := stmt.Rhs[i].(*ast.CallExpr)
				if !ok || !isTracedResult(info.TypeOf(call)) {
					continue
				}
				if skips.suppress(fset.Position(stmt.Pos())) {
					continue
				}
				report(call.Pos(), fmt.Sprintf("result of %s call is assigned to the blank identifier", types.ExprString(call.Fun)))
			}
		}
	})

	skips.reportUnused(report)
}

// isTracedResult reports whether t is result.Result (possibly
// instantiated, possibly behind an alias).
func isTracedResult(t types.Type) bool {
	if t == nil {
		return false
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj != nil && obj.Name() == "Result" &&
		obj.Pkg() != nil && obj.Pkg().Path() == resultPkgPath
}
