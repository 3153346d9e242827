package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the journal of task changes",
	RunE:  runLog,
}

var logLimit int

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "Number of entries to show")
}

func runLog(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("the journal is kept in SQLite; it is unavailable with the %q storage driver", cfg.Storage.Driver)
	}

	entries, err := a.db.ListJournal(logLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No journal entries")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tOUTCOME\tTASK\tDETAILS")
	for _, e := range entries {
		task := ""
		if e.TaskID != 0 {
			task = fmt.Sprintf("%d", e.TaskID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Outcome, task, truncate(e.Details, 50))
	}
	w.Flush()
	return nil
}
