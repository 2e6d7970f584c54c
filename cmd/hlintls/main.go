package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hlintls/internal/config"
	"hlintls/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "hlintls",
	Short: "hlint language server and lint driver",
	Long:  `hlintls drives the hlint linter and the apply-refact tool: as an LSP server over stdio, or directly from the command line.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to hlintls.toml (default: auto-discover)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.Discover()
	}
	return config.Load(path)
}

// colorEnabled resolves the --color tristate against the terminal.
func colorEnabled(cmd *cobra.Command) bool {
	mode, _ := cmd.Flags().GetString("color")
	var enabled bool
	switch mode {
	case "on", "always":
		enabled = true
	case "off", "never":
		enabled = false
	default:
		enabled = isTerminal(os.Stdout)
	}
	color.NoColor = !enabled
	return enabled
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Flags().GetBool("quiet")
	return q
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
