package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kobzarvs/qbeautify/internal/batch"
	"github.com/kobzarvs/qbeautify/internal/config"
	"github.com/kobzarvs/qbeautify/internal/logger"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Format JavaScript, CSS and HTML files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list files that need formatting without rewriting them")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().String("mode", "", "format every file in this mode (javascript|css|htmlmixed)")
	fmtCmd.Flags().Int("jobs", 0, "number of files formatted in parallel (0 = GOMAXPROCS)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	check, err := cmd.Flags().GetBool("check")
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
	mode, err := cmd.Flags().GetString("mode")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	indent, err := cmd.Flags().GetInt("indent")
	if err != nil {
		return err
	}
	colorFlag, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	setting, err := cfg.Beautify.Setting()
	if err != nil {
		return err
	}
	if indent <= 0 {
		indent = cfg.Editor.IndentUnit
	}

	results, err := batch.FormatPaths(cmd.Context(), args, batch.Options{
		Check:      check,
		Stdout:     writeToStdout,
		Mode:       mode,
		IndentUnit: indent,
		Jobs:       jobs,
		Setting:    setting,
		Languages:  langs,
		Logger:     logger.Named("fmt"),
	})
	if err != nil {
		return err
	}

	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	var hasErrors, hasChanges bool
	if writeToStdout {
		hasErrors = renderFmtStdout(cmd.OutOrStdout(), cmd.ErrOrStderr(), results)
	} else {
		hasErrors, hasChanges = renderFmtText(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, check, useColor)
	}

	if hasErrors {
		return fmt.Errorf("fmt: failed to format some files")
	}
	if check && hasChanges {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}

func renderFmtStdout(out, errOut io.Writer, results []batch.Result) (hasErrors bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(errOut, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
	return hasErrors
}

func renderFmtText(out, errOut io.Writer, results []batch.Result, check, useColor bool) (hasErrors, hasChanges bool) {
	changed := color.New(color.FgYellow)
	failed := color.New(color.FgRed, color.Bold)
	if useColor {
		changed.EnableColor()
		failed.EnableColor()
	} else {
		changed.DisableColor()
		failed.DisableColor()
	}
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(errOut, "%s %s: %v\n", failed.Sprint("fmt:"), res.Path, res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		hasChanges = true
		if check {
			fmt.Fprintln(out, changed.Sprint(res.Path))
			continue
		}
		fmt.Fprintf(out, "reformatted %s\n", changed.Sprint(res.Path))
	}
	return hasErrors, hasChanges
}
