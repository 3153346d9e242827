package main

import (
	"fmt"
	"os"

	"github.com/fentz26/tasklist/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tasklist",
	Short: "tasklist - a small to-do list for the terminal",
	Long:  `tasklist keeps a dated to-do list with active/completed filters, in-place editing and a keyboard-driven TUI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if storageDriver != "" {
			c.Storage.Driver = storageDriver
		}
		if dbPath != "" {
			c.Storage.Path = dbPath
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = c
		return nil
	},
	SilenceUsage: true,
	RunE:         runTUI,
}

var (
	cfgPath       string
	dbPath        string
	storageDriver string

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default ~/.tasklist/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Storage path (SQLite database or JSON file)")
	rootCmd.PersistentFlags().StringVar(&storageDriver, "storage", "", "Storage driver: sqlite or file")

	// Add subcommands
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
