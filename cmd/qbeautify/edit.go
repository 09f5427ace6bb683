package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kobzarvs/qbeautify/internal/app"
	"github.com/kobzarvs/qbeautify/internal/config"
	"github.com/kobzarvs/qbeautify/internal/logger"
	"github.com/kobzarvs/qbeautify/internal/session"
)

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Open a file in the editor",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	indent, err := cmd.Flags().GetInt("indent")
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
	a, err := app.New(cfg, langs, args[0], indent)
	if err != nil {
		return err
	}
	if sm, err := session.NewManager(); err != nil {
		logger.Named("edit").Warn("session unavailable", zap.Error(err))
	} else {
		a.RestoreSession(sm)
	}
	return a.Run()
}
