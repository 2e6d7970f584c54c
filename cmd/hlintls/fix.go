package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hlintls/internal/config"
	"hlintls/internal/diag"
	"hlintls/internal/hlint"
	"hlintls/internal/refact"
	"hlintls/internal/toolcheck"
)

var (
	fixOnce   bool
	fixAll    bool
	fixDryRun bool
)

// maxFixRounds bounds the lint-apply loop: mutually reintroducing hints
// would otherwise cycle forever.
const maxFixRounds = 25

func init() {
	fixCmd.Flags().BoolVar(&fixOnce, "once", true, "apply only the first suggested refactoring")
	fixCmd.Flags().BoolVar(&fixAll, "all", false, "apply fixes repeatedly until no actionable finding remains")
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "print the rewritten source instead of modifying the file")
	fixCmd.MarkFlagsMutuallyExclusive("once", "all")
}

var fixCmd = &cobra.Command{
	Use:          "fix <file>",
	Short:        "Apply hlint's suggested refactorings to a file",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runFix,
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	path := args[0]

	// Both tools are load-bearing here.
	hlintRes := toolcheck.Check(ctx, toolcheck.HLint(cfg.Tools.HLint))
	if !hlintRes.Ok() {
		return fmt.Errorf("hlint is unusable (%s): %s", hlintRes.Status, hlintRes.Detail)
	}
	refactorRes := toolcheck.Check(ctx, toolcheck.Refactor(cfg.Tools.Refactor))
	if !refactorRes.Ok() {
		return fmt.Errorf("%s is unusable (%s): %s", cfg.Tools.Refactor, refactorRes.Status, refactorRes.Detail)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(data)

	applier := refact.NewRunner(cfg.Tools.Refactor)
	applier.Timeout = cfg.ToolTimeout()

	// The plain single-fix path lets the tool rewrite the saved file
	// directly. The --all loop and --dry-run need the rewritten text back,
	// so they run the stdout strategy and persist at the end.
	if !fixAll && !fixDryRun {
		target, err := firstActionable(ctx, cfg, path, text)
		if err != nil {
			return err
		}
		if target == nil {
			if !quiet(cmd) {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to fix")
			}
			return nil
		}
		applier.Mode = refact.ModeInPlace
		if _, err := applier.Apply(ctx, path, "", target.Refactoring); err != nil {
			return err
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "applied 1 fix to %s\n", path)
		}
		return nil
	}

	applied := 0
	for round := 0; round < maxFixRounds; round++ {
		target, err := firstActionable(ctx, cfg, path, text)
		if err != nil {
			return err
		}
		if target == nil {
			break
		}
		res, err := applier.Apply(ctx, path, text, target.Refactoring)
		if err != nil {
			return err
		}
		if !res.Applied {
			break
		}
		text = res.Text
		applied++
		if !fixAll {
			break
		}
	}

	if applied == 0 {
		if !quiet(cmd) {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to fix")
		}
		return nil
	}
	if fixDryRun {
		fmt.Fprint(cmd.OutOrStdout(), text)
		if len(text) > 0 && text[len(text)-1] != '\n' {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}
	if err := writeFilePreserveMode(path, text); err != nil {
		return err
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d fix(es) to %s\n", applied, path)
	}
	return nil
}

// firstActionable lints the current text and returns the first finding
// carrying a refactoring descriptor, nil when there is none.
func firstActionable(ctx context.Context, cfg config.Config, path, text string) (*diag.Diagnostic, error) {
	runner := hlint.Runner{
		Path:    cfg.Tools.HLint,
		Flags:   cfg.Lint.Flags,
		Timeout: cfg.ToolTimeout(),
	}
	ideas, err := runner.Lint(ctx, hlint.Snapshot{Path: path, Text: text, UseStdin: true})
	if err != nil {
		return nil, err
	}
	for _, d := range diag.FromIdeas(ideas, hlint.StdinFile) {
		if d.Actionable() {
			return &d, nil
		}
	}
	return nil, nil
}

func writeFilePreserveMode(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(text), mode)
}
