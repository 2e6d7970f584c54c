package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hlintls/internal/config"
	"hlintls/internal/diag"
	"hlintls/internal/diagfmt"
	"hlintls/internal/hlint"
	"hlintls/internal/lintcache"
	"hlintls/internal/toolcheck"
)

var (
	checkJSON    bool
	checkNoCache bool
	checkMax     int
)

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "emit findings as JSON")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "bypass the lint result cache")
	checkCmd.Flags().IntVar(&checkMax, "max", 0, "maximum number of findings to show (0 = no limit)")
}

var checkCmd = &cobra.Command{
	Use:          "check [path...]",
	Short:        "Lint Haskell sources and report findings",
	SilenceUsage: true,
	RunE:         runCheck,
}

type checkResult struct {
	path   string
	source string
	diags  []diag.Diagnostic
	err    error
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	gate := toolcheck.Check(ctx, toolcheck.HLint(cfg.Tools.HLint))
	if !gate.Ok() {
		return fmt.Errorf("hlint is unusable (%s): %s", gate.Status, gate.Detail)
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := collectHaskellFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no Haskell sources under %s", strings.Join(args, ", "))
	}

	var cache *lintcache.Cache
	if cfg.CacheEnabled() && !checkNoCache {
		cache, _ = lintcache.Open("hlintls")
	}

	results := make([]checkResult, len(files))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for i, path := range files {
		i, path := i, path
		group.Go(func() error {
			results[i] = lintOne(gctx, cfg, cache, gate.Version, path)
			return results[i].err
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	useColor := colorEnabled(cmd)
	total := 0
	if checkJSON {
		all := make([]diagfmt.FileDiagnostics, 0, len(results))
		for _, res := range results {
			total += len(res.diags)
			all = append(all, diagfmt.FileDiagnostics{Path: res.path, Diags: res.diags})
		}
		if err := diagfmt.JSONAll(cmd.OutOrStdout(), all, diagfmt.JSONOpts{Max: checkMax}); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			total += len(res.diags)
			diagfmt.Pretty(cmd.OutOrStdout(), res.path, res.diags, res.source, diagfmt.PrettyOpts{
				Color:   useColor,
				Context: true,
			})
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) checked, %d finding(s)\n", len(files), total)
		}
	}
	if total > 0 {
		// Non-zero exit for scripting; the findings themselves are not an
		// execution failure.
		cmd.SilenceErrors = true
		return fmt.Errorf("%d finding(s)", total)
	}
	return nil
}

func lintOne(ctx context.Context, cfg config.Config, cache *lintcache.Cache, toolVersion, path string) checkResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return checkResult{path: path, err: err}
	}
	text := string(data)
	flags := cfg.Lint.Flags

	var (
		ideas []hlint.Idea
		key   lintcache.Digest
		hit   bool
	)
	if cache != nil {
		key = lintcache.Key(text, toolVersion, flags)
		ideas, hit = cache.Get(key)
	}
	if !hit {
		runner := hlint.Runner{
			Path:    cfg.Tools.HLint,
			Flags:   flags,
			Timeout: cfg.ToolTimeout(),
		}
		ideas, err = runner.Lint(ctx, hlint.Snapshot{
			Path:     path,
			Text:     text,
			UseStdin: cfg.StdinLint(),
		})
		if err != nil {
			return checkResult{path: path, err: fmt.Errorf("%s: %w", path, err)}
		}
		if cache != nil {
			_ = cache.Put(key, ideas)
		}
	}

	target := hlint.StdinFile
	if !cfg.StdinLint() {
		target = path
	}
	return checkResult{path: path, source: text, diags: diag.FromIdeas(ideas, target)}
}

func collectHaskellFiles(roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isHaskellSource(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func isHaskellSource(path string) bool {
	switch filepath.Ext(path) {
	case ".hs", ".lhs":
		return true
	}
	return false
}
