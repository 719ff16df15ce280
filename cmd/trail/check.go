package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"

	"trail/internal/lint"
)

var checkMaxDiagnostics int

func init() {
	checkCmd.Flags().IntVar(&checkMaxDiagnostics, "max-diagnostics", 0, "cap on printed findings (0 = config default)")
}

var checkCmd = &cobra.Command{
	Use:   "check [packages]",
	Short: "Report traced results that are silently discarded",
	Long: `check loads the named Go packages (./... when none are given) and
reports every call whose traced result is dropped on the floor: discarded
as a bare statement, or assigned to the blank identifier. A //trail:skip
comment on the offending line suppresses the finding; directives that
suppress nothing are reported as stale.`,
	RunE: runCheckCmd,
}

var (
	findingMsgColor = color.New(color.FgRed, color.Bold)
	findingPosColor = color.New(color.FgCyan)
)

func runCheckCmd(cmd *cobra.Command, args []string) error {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	maxDiag := checkMaxDiagnostics
	if maxDiag == 0 {
		maxDiag = cfg.Check.MaxDiagnostics
	}

	loadCfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps,
	}
	pkgs, err := packages.Load(loadCfg, patterns...)
	if err != nil {
		return fmt.Errorf("failed to load packages: %w", err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		return fmt.Errorf("%d package load errors", n)
	}

	findings := dropSkippedFindings(lint.Check(pkgs), cfg.Check.Skip)
	if len(findings) == 0 {
		return nil
	}

	useColor := colorEnabled(cmd, os.Stdout)
	out := cmd.OutOrStdout()
	for i, f := range findings {
		if maxDiag > 0 && i >= maxDiag {
			fmt.Fprintf(out, "... and %d more findings\n", len(findings)-i)
			break
		}
		pos := fmt.Sprintf("%s:%d:%d", f.Pos.Filename, f.Pos.Line, f.Pos.Column)
		if useColor {
			fmt.Fprintf(out, "%s: %s\n", findingPosColor.Sprint(pos), findingMsgColor.Sprint(f.Msg))
		} else {
			fmt.Fprintf(out, "%s: %s\n", pos, f.Msg)
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "trail check: %d findings\n", len(findings))
	os.Exit(1)
	return nil
}

// dropSkippedFindings removes findings whose file matches one of the
// configured skip globs.
func dropSkippedFindings(findings []lint.Finding, globs []string) []lint.Finding {
	if len(globs) == 0 {
		return findings
	}
	kept := findings[:0]
	for _, f := range findings {
		if matchesAnyGlob(globs, f.Pos.Filename) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func matchesAnyGlob(globs []string, path string) bool {
	base := filepath.Base(path)
	for _, g := range globs {
		if ok, _ := filepath.Match(g, path); ok {
			return true
		}
		if ok, _ := filepath.Match(g, base); ok {
			return true
		}
	}
	return false
}
