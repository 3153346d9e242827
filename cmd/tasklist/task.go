package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fentz26/tasklist/internal/models"
	"github.com/fentz26/tasklist/internal/tasks"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task between active and completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskRmCmd = &cobra.Command{
	Use:     "rm [task-id]",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskRm,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Change a task's text or due date",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskSortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort tasks by due date and keep that order",
	RunE:  runTaskSort,
}

var (
	taskText   string
	taskDate   string
	taskFilter string
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskDoneCmd, taskRmCmd, taskEditCmd, taskSortCmd)

	taskAddCmd.Flags().StringVar(&taskText, "text", "", "Task text (required)")
	taskAddCmd.Flags().StringVar(&taskDate, "date", "", "Due date: YYYY-MM-DD, DD/MM/YYYY, today or tomorrow (required)")
	taskAddCmd.MarkFlagRequired("text")
	taskAddCmd.MarkFlagRequired("date")

	taskListCmd.Flags().StringVar(&taskFilter, "filter", "all", "Filter: all, active or completed")

	taskEditCmd.Flags().StringVar(&taskText, "text", "", "New task text")
	taskEditCmd.Flags().StringVar(&taskDate, "date", "", "New due date")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.tasks.Add(taskText, normalizeDate(a.tasks, taskDate))
	if err != nil {
		return err
	}
	fmt.Printf("Created task: %d\n", task.ID)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.tasks.SetFilter(models.ParseFilter(taskFilter))
	printTasks(cmd.OutOrStdout(), a.tasks.Visible())
	return nil
}

func printTasks(out io.Writer, ts []models.Task) {
	if len(ts) == 0 {
		fmt.Fprintln(out, "No tasks found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tDUE\tTEXT")
	for _, t := range ts {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, done, t.DisplayDate(), truncate(t.Text, 60))
	}
	w.Flush()
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	return withTask(args[0], func(a *app, t models.Task) error {
		if err := a.tasks.ToggleComplete(t.ID); err != nil {
			return err
		}
		state := "completed"
		if t.Completed {
			state = "active"
		}
		fmt.Printf("Task %d is now %s\n", t.ID, state)
		return nil
	})
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	return withTask(args[0], func(a *app, t models.Task) error {
		if err := a.tasks.Delete(t.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted task: %d\n", t.ID)
		return nil
	})
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	textSet := cmd.Flags().Changed("text")
	dateSet := cmd.Flags().Changed("date")
	if !textSet && !dateSet {
		return fmt.Errorf("nothing to change: pass --text and/or --date")
	}

	return withTask(args[0], func(a *app, t models.Task) error {
		if textSet {
			if err := a.tasks.EditText(t.ID, taskText); err != nil {
				return err
			}
		}
		if dateSet {
			if err := a.tasks.EditDate(t.ID, normalizeDate(a.tasks, taskDate)); err != nil {
				return err
			}
		}
		fmt.Printf("Updated task: %d\n", t.ID)
		return nil
	})
}

func runTaskSort(cmd *cobra.Command, args []string) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.tasks.SortByDate(); err != nil {
		return err
	}
	printTasks(os.Stdout, a.tasks.Tasks())
	return nil
}

// withTask opens the store and resolves raw to an existing task.
func withTask(raw string, fn func(a *app, t models.Task) error) error {
	id, err := parseID(raw)
	if err != nil {
		return err
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tasks.Get(id)
	if err != nil {
		return err
	}
	return fn(a, t)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func normalizeDate(st *tasks.Store, raw string) string {
	if iso, err := models.NormalizeDate(raw, st.Now()); err == nil && iso != "" {
		return iso
	}
	return raw
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
