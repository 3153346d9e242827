package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample tasks when the list has nothing left to do",
	RunE:  runSeed,
}

var seedForce bool

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Replace the list even if it has active tasks")
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	loader := a.loader()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if seedForce {
		items, err := loader.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := a.tasks.Replace(loader.ToTasks(items, a.tasks.Today())); err != nil {
			return err
		}
	} else {
		seeded, err := loader.Bootstrap(ctx, a.tasks)
		if err != nil {
			return err
		}
		if !seeded {
			fmt.Println("Active tasks exist; nothing to seed (use --force to replace them)")
			return nil
		}
	}

	fmt.Printf("Loaded %d sample tasks from %s\n", len(a.tasks.Tasks()), loader.Endpoint())
	printTasks(os.Stdout, a.tasks.Tasks())
	return nil
}
