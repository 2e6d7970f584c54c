package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hlintls/internal/toolcheck"
	"hlintls/internal/version"
)

var versionJSON bool

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "emit version report as JSON")
}

var versionCmd = &cobra.Command{
	Use:          "version",
	Short:        "Show hlintls and external tool versions",
	SilenceUsage: true,
	RunE:         runVersion,
}

type toolReport struct {
	Tool    string `json:"tool"`
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type versionReport struct {
	Version   string       `json:"version"`
	GitCommit string       `json:"git_commit,omitempty"`
	BuildDate string       `json:"build_date,omitempty"`
	Tools     []toolReport `json:"tools"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	colorEnabled(cmd)

	report := versionReport{
		Version:   version.Version,
		GitCommit: version.GitCommit,
		BuildDate: version.BuildDate,
	}
	for _, req := range []toolcheck.Requirement{
		toolcheck.HLint(cfg.Tools.HLint),
		toolcheck.Refactor(cfg.Tools.Refactor),
	} {
		res := toolcheck.Check(ctx, req)
		report.Tools = append(report.Tools, toolReport{
			Tool:    req.Tool,
			Status:  res.Status.String(),
			Version: res.Version,
			Detail:  res.Detail,
		})
	}

	out := cmd.OutOrStdout()
	if versionJSON {
		// Colored version strings carry escape codes; the JSON report
		// wants the plain text.
		report.Version = version.Number
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	renderVersionPretty(out, report)
	return nil
}

func renderVersionPretty(out io.Writer, report versionReport) {
	fmt.Fprintf(out, "hlintls %s\n", report.Version)
	if report.GitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", report.GitCommit)
	}
	if report.BuildDate != "" {
		fmt.Fprintf(out, "built:  %s\n", report.BuildDate)
	}
	for _, tool := range report.Tools {
		line := fmt.Sprintf("%s: %s", tool.Tool, tool.Status)
		if tool.Version != "" {
			line += " (" + tool.Version + ")"
		}
		if tool.Detail != "" && tool.Status != "satisfied" {
			line += " - " + tool.Detail
		}
		fmt.Fprintln(out, line)
	}
}
