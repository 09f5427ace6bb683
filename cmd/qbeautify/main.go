package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kobzarvs/qbeautify/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "qbeautify",
	Short: "Terminal editor that reformats code as you type",
	Long: `qbeautify reformats JavaScript, CSS and HTML documents whenever a
closing character is typed and keeps the cursor next to it.`,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return err
		}
		return logger.Init(debug)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(fmtCmd)

	rootCmd.PersistentFlags().Bool("debug", false, "write debug messages to the log file")
	rootCmd.PersistentFlags().Int("indent", 0, "indent unit override (0 uses config)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code. The log
// file is closed on every path.
func execute(args []string, stdout, stderr io.Writer) int {
	defer logger.Close()

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		logger.Named("cli").Error("command failed", zap.Strings("args", args), zap.Error(err))
		fmt.Fprintln(stderr, "qbeautify:", err)
		return 1
	}
	return 0
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
