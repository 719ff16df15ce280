package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trail/internal/fixcache"
	"trail/internal/rewrite"
)

var (
	fixWrite   bool
	fixJobs    int
	fixNoCache bool
)

func init() {
	fixCmd.Flags().BoolVar(&fixWrite, "write", false, "rewrite files in place (default: dry run)")
	fixCmd.Flags().IntVar(&fixJobs, "jobs", 0, "max parallel workers (0 = GOMAXPROCS)")
	fixCmd.Flags().BoolVar(&fixNoCache, "no-cache", false, "examine every file even when cached as clean")
}

var fixCmd = &cobra.Command{
	Use:   "fix [directory]",
	Short: "Insert forwarding into bare traced-result returns",
	Long: `fix rewrites "return r" into "return result.Forward(r)" inside
functions that return a traced result, so each hand-off leaves an entry
in the return trace. Without --write it only reports what would change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFixCmd,
}

type fixOutcome struct {
	path     string
	rewrites int
}

func runFixCmd(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	var cache *fixcache.Cache
	if cfg.fixCacheEnabled() && !fixNoCache {
		cache, err = fixcache.Open("trail")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "fix: cache disabled: %v\n", err)
			cache = nil
		}
	}

	files, err := listGoFiles(dir)
	if err != nil {
		return err
	}

	jobs := fixJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var (
		mu       sync.Mutex
		outcomes []fixOutcome
	)
	var g errgroup.Group
	g.SetLimit(jobs)
	for _, path := range files {
		g.Go(func() error {
			n, err := fixFile(path, cache)
			if err != nil {
				return err
			}
			if n > 0 {
				mu.Lock()
				outcomes = append(outcomes, fixOutcome{path: path, rewrites: n})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].path < outcomes[j].path })

	out := cmd.OutOrStdout()
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "nothing to rewrite")
		return nil
	}
	verb := "would rewrite"
	if fixWrite {
		verb = "rewrote"
	}
	total := 0
	for _, o := range outcomes {
		fmt.Fprintf(out, "%s %s (%d returns)\n", verb, o.path, o.rewrites)
		total += o.rewrites
	}
	if !fixWrite {
		fmt.Fprintf(out, "%d returns in %d files; rerun with --write to apply\n", total, len(outcomes))
	}
	return nil
}

// fixFile examines one file, consulting and refreshing the cache, and
// returns how many return statements were (or would be) rewritten.
func fixFile(path string, cache *fixcache.Cache) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	key := fixcache.HashContent(content)

	var cached fixcache.Entry
	if ok, err := cache.Get(key, &cached); err == nil && ok && cached.Clean {
		return 0, nil
	}

	out, n, err := rewrite.File(path, content)
	if err != nil {
		return 0, err
	}
	// A broken cache never fails the run.
	_ = cache.Put(key, &fixcache.Entry{Path: path, Hash: key, Clean: n == 0, Rewrites: n})
	if n == 0 {
		return 0, nil
	}
	if fixWrite {
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return n, nil
}

// listGoFiles returns sorted .go files under dir, skipping vendor,
// testdata, hidden and underscore-prefixed directories.
func listGoFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
