package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reflow/internal/config"
	"reflow/internal/driver"
	"reflow/internal/format"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Render layout bundles into formatted text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	registerFmtFlags(fmtCmd)
}

func registerFmtFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("check", false, "report bundles whose target would change, write nothing")
	cmd.Flags().String("format", "text", "output format (text|json)")
	cmd.Flags().Bool("stdout", false, "print formatted text to stdout instead of rewriting targets")
	cmd.Flags().Int("width", 0, "maximum line width (overrides reflow.toml)")
	cmd.Flags().Int("indent", 0, "indent width (overrides reflow.toml)")
	cmd.Flags().IntP("jobs", "j", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().StringSlice("disable", nil, "corrections to skip (e.g. align_comments,compact_declarations)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	writeToStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if writeToStdout && check {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if writeToStdout && outputFormat != "text" {
		return fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("fmt: unsupported output format %q", outputFormat)
	}

	opts, err := fmtOptions(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	req := driver.FormatOptions{
		Check:   check,
		Stdout:  writeToStdout,
		Options: opts,
		Jobs:    jobs,
	}
	// stdout занят текстом, прогресс там не рисуем
	useUI := !writeToStdout && outputFormat == "text" && !quiet && shouldUseTUI(mode)

	var results []driver.FormatResult
	if useUI {
		results, err = runFmtWithUI(cmd.Context(), "fmt", args, req)
	} else {
		results, err = driver.FormatPaths(cmd.Context(), args, req)
	}
	if err != nil {
		dumpTraceRing(cmd)
		return err
	}

	logger := loggerFromContext(cmd.Context())
	var hasErrors, hasChanges bool
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			logger.Error("format failed", "bundle", res.Path, "err", res.Err)
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case outputFormat == "json":
		if err := renderFmtJSON(out, results, check); err != nil {
			return err
		}
	case writeToStdout:
		renderFmtStdout(out, results)
	default:
		renderFmtText(out, results, check, quiet)
	}
	for _, res := range results {
		if res.Err == nil && res.Changed {
			hasChanges = true
		}
	}

	if showTimings {
		printTimings(cmd.ErrOrStderr(), results)
	}

	if hasErrors {
		dumpTraceRing(cmd)
		return errors.New("fmt: failed to format some bundles")
	}
	if check && hasChanges {
		return errors.New("fmt: formatting changes required")
	}
	return nil
}

// fmtOptions merges reflow.toml with the command-line overrides.
func fmtOptions(cmd *cobra.Command) (format.Options, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return format.Options{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return format.Options{}, err
	}
	if cfg.Path != "" {
		loggerFromContext(cmd.Context()).Debug("loaded config", "path", cfg.Path)
	}
	opts := cfg.FormatOptions()

	if cmd.Flags().Changed("width") {
		width, err := cmd.Flags().GetInt("width")
		if err != nil {
			return format.Options{}, err
		}
		if width <= 0 {
			return format.Options{}, fmt.Errorf("fmt: --width must be positive, got %d", width)
		}
		opts.Width = width
	}
	if cmd.Flags().Changed("indent") {
		indent, err := cmd.Flags().GetInt("indent")
		if err != nil {
			return format.Options{}, err
		}
		if indent <= 0 {
			return format.Options{}, fmt.Errorf("fmt: --indent must be positive, got %d", indent)
		}
		opts.IndentWidth = indent
	}
	disabled, err := cmd.Flags().GetStringSlice("disable")
	if err != nil {
		return format.Options{}, err
	}
	for _, name := range disabled {
		p, ok := format.PassByName(strings.TrimSpace(name))
		if !ok {
			return format.Options{}, fmt.Errorf("fmt: unknown pass %q", name)
		}
		opts.Disabled |= p
	}
	return opts, nil
}

func renderFmtStdout(out io.Writer, results []driver.FormatResult) {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
}

var (
	changedColor     = color.New(color.FgYellow)
	reformattedColor = color.New(color.FgGreen, color.Bold)
)

func renderFmtText(out io.Writer, results []driver.FormatResult, check, quiet bool) {
	if quiet {
		return
	}
	for _, res := range results {
		if res.Err != nil || !res.Changed {
			continue
		}
		if check {
			fmt.Fprintln(out, changedColor.Sprint(res.Target))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", reformattedColor.Sprint("reformatted"), res.Target)
	}
}

func renderFmtJSON(out io.Writer, results []driver.FormatResult, check bool) error {
	type jsonResult struct {
		Path     string        `json:"path"`
		Target   string        `json:"target,omitempty"`
		Changed  bool          `json:"changed"`
		Error    string        `json:"error,omitempty"`
		CheckRun bool          `json:"check"`
		Stats    *format.Stats `json:"stats,omitempty"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Target: res.Target, Changed: res.Changed, CheckRun: check}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			stats := res.Stats
			jr.Stats = &stats
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
