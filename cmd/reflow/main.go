package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "reflow",
	Short: "Width-aware layout engine for source formatters",
	Long: `reflow renders layout bundles (a document plus its side tables) into
text under a line-width budget and applies the post-render corrections:
alignment, call-shape dedent, literal indentation and declaration compaction.`,
	PersistentPreRunE:  setupRun,
	PersistentPostRunE: finishRun,
	SilenceErrors:      true,
}

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.Bool("timings", false, "show per-pass timing information")
	pf.String("config", "", "path to reflow.toml (default: search upwards from the working directory)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring buffer")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		// PostRun не вызывается после ошибки
		_ = finishRun(cmd, nil)
		loggerFromContext(cmd.Context()).Error(err)
		os.Exit(1)
	}
}

var runCleanup func()

// setupRun prepares color, logging and tracing for every subcommand.
func setupRun(cmd *cobra.Command, _ []string) error {
	pf := cmd.Root().PersistentFlags()
	colorMode, err := pf.GetString("color")
	if err != nil {
		return err
	}
	switch colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorMode)
	}

	verbose, err := pf.GetBool("verbose")
	if err != nil {
		return err
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), logLevel(verbose, quiet))
	cmd.SetContext(withLogger(cmd.Context(), logger))

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	stopTracing, err := setupTracing(cmd)
	if err != nil {
		stopProfiling()
		return err
	}
	runCleanup = func() {
		stopTracing()
		stopProfiling()
	}
	return nil
}

func finishRun(*cobra.Command, []string) error {
	if runCleanup != nil {
		runCleanup()
		runCleanup = nil
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
