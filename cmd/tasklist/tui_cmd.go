package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fentz26/tasklist/internal/seed"
	"github.com/fentz26/tasklist/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var loader *seed.Loader
	if cfg.Seed.Enabled {
		loader = a.loader()
	}

	logPath := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	if err := tui.New(a.tasks, loader).Run(logPath); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
