package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hlintls/internal/config"
	"hlintls/internal/hlint"
	"hlintls/internal/lintcache"
	"hlintls/internal/lsp"
	"hlintls/internal/refact"
	"hlintls/internal/toolcheck"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the hlint language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// hlint is load-bearing: without an acceptable version the server must
	// not start.
	hlintRes := toolcheck.Check(ctx, toolcheck.HLint(cfg.Tools.HLint))
	if !hlintRes.Ok() {
		return fmt.Errorf("hlint is unusable (%s): %s", hlintRes.Status, hlintRes.Detail)
	}

	// refactor is optional: a failed gate only disables code actions.
	refactorWarning := ""
	refactorRes := toolcheck.Check(ctx, toolcheck.Refactor(cfg.Tools.Refactor))
	if !refactorRes.Ok() {
		refactorWarning = fmt.Sprintf(
			"hlint: refactoring disabled, %s is unusable (%s): %s",
			cfg.Tools.Refactor, refactorRes.Status, refactorRes.Detail)
	}

	applier := refact.NewRunner(cfg.Tools.Refactor)
	applier.Timeout = cfg.ToolTimeout()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:        cfg.Debounce(),
		Lint:            newLintFunc(cfg, hlintRes.Version),
		Apply:           applier.Apply,
		StdinLint:       cfg.StdinLint(),
		EnableRefactor:  refactorRes.Ok(),
		RefactorWarning: refactorWarning,
	})
	if err := server.Run(ctx); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}

// newLintFunc builds the lint callback: one hlint invocation per cycle,
// fronted by the content-keyed disk cache when enabled.
func newLintFunc(cfg config.Config, toolVersion string) lsp.LintFunc {
	var cache *lintcache.Cache
	if cfg.CacheEnabled() {
		// Best-effort: an unusable cache dir just means every cycle runs
		// the tool.
		cache, _ = lintcache.Open("hlintls")
		if cache != nil {
			_ = cache.Prune(30 * 24 * time.Hour)
		}
	}
	return func(ctx context.Context, snap hlint.Snapshot, extraFlags []string) ([]hlint.Idea, error) {
		flags := append(append([]string(nil), cfg.Lint.Flags...), extraFlags...)
		runner := hlint.Runner{
			Path:    cfg.Tools.HLint,
			Flags:   flags,
			Timeout: cfg.ToolTimeout(),
		}
		if cache == nil || !snap.UseStdin {
			return runner.Lint(ctx, snap)
		}
		key := lintcache.Key(snap.Text, toolVersion, flags)
		if ideas, ok := cache.Get(key); ok {
			return ideas, nil
		}
		ideas, err := runner.Lint(ctx, snap)
		if err != nil {
			return nil, err
		}
		_ = cache.Put(key, ideas)
		return ideas, nil
	}
}
