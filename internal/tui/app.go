// Package tui provides the interactive terminal UI for tasklist.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/tasklist/internal/models"
	"github.com/fentz26/tasklist/internal/seed"
	"github.com/fentz26/tasklist/internal/tasks"
	"github.com/fentz26/tasklist/internal/view"
)

// editDateLayout prefills date edits with a four-digit year so the value
// parses back unchanged.
const editDateLayout = "02/01/2006"

type mode int

const (
	modeList mode = iota
	modeAddText
	modeAddDate
	modeEdit
)

// App is the main TUI application model.
type App struct {
	store  *tasks.Store
	view   *view.Synchronizer
	loader *seed.Loader

	keys  keyMap
	help  help.Model
	input *InputBar

	mode        mode
	pendingText string
	selectedIdx int
	width       int
	height      int

	message string
	isErr   bool
	banner  string
	seeding bool
}

type seedLoadedMsg struct {
	items []seed.Item
	err   error
}

// New creates the TUI over a loaded store. A nil loader disables seeding.
func New(store *tasks.Store, loader *seed.Loader) *App {
	return &App{
		store:  store,
		view:   view.New(store),
		loader: loader,
		keys:   newKeyMap(),
		help:   help.New(),
		input:  NewInputBar(),
	}
}

// Run starts the TUI application. Log output goes to logPath so it does not
// tear the screen.
func (a *App) Run(logPath string) error {
	if logPath != "" {
		f, err := tea.LogToFile(logPath, "tasklist")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	}
	defer a.view.Close()

	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.startSeed())
}

// startSeed clears the list and returns the fetch command when there is
// nothing left to do. The result is applied in Update.
func (a *App) startSeed() tea.Cmd {
	if a.loader == nil || !a.store.NeedsSeed() {
		return nil
	}
	a.store.Clear()
	a.seeding = true
	loader := a.loader
	return func() tea.Msg {
		log.Printf("No active tasks found. Fetching sample tasks from %s", loader.Endpoint())
		items, err := loader.Fetch(context.Background())
		return seedLoadedMsg{items: items, err: err}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.input.SetWidth(msg.Width - 20)
		return a, nil

	case seedLoadedMsg:
		a.seeding = false
		if !a.store.NeedsSeed() {
			// The user added work while the fetch was in flight.
			log.Printf("Discarding %d sample tasks: active tasks exist", len(msg.items))
			a.banner = ""
			return a, nil
		}
		if msg.err != nil {
			log.Printf("Seed load error: %v", msg.err)
			a.banner = "Could not load sample tasks: " + msg.err.Error()
			return a, nil
		}
		if err := a.store.Replace(a.loader.ToTasks(msg.items, a.store.Today())); err != nil {
			a.banner = "Could not save sample tasks: " + err.Error()
			return a, nil
		}
		a.banner = ""
		a.clampSelection()
		return a, nil

	case tea.KeyMsg:
		if a.mode == modeList {
			return a.updateList(msg)
		}
		return a.updateInput(msg)
	}

	return a, a.input.Update(msg)
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.message = ""
	rows := a.view.Rows()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Up):
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}

	case key.Matches(msg, a.keys.Down):
		if a.selectedIdx < len(rows)-1 {
			a.selectedIdx++
		}

	case key.Matches(msg, a.keys.Add):
		a.mode = modeAddText
		a.pendingText = ""
		return a, a.input.Focus("New task:", "What needs to be done?", "")

	case key.Matches(msg, a.keys.Toggle):
		if row, ok := a.selected(); ok {
			a.report(row.Toggle(), "")
		}

	case key.Matches(msg, a.keys.Delete):
		if row, ok := a.selected(); ok {
			a.report(row.Delete(), "✓ Deleted "+row.Task.Text)
		}

	case key.Matches(msg, a.keys.EditText):
		return a, a.beginEdit(view.FieldText)

	case key.Matches(msg, a.keys.EditDate):
		return a, a.beginEdit(view.FieldDate)

	case key.Matches(msg, a.keys.All):
		a.store.SetFilter(models.FilterAll)
	case key.Matches(msg, a.keys.Active):
		a.store.SetFilter(models.FilterActive)
	case key.Matches(msg, a.keys.Completed):
		a.store.SetFilter(models.FilterCompleted)

	case key.Matches(msg, a.keys.Cycle):
		a.store.SetFilter(nextFilter(a.view.Mode()))

	case key.Matches(msg, a.keys.Sort):
		a.report(a.store.SortByDate(), "✓ Sorted by due date")

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}

	a.clampSelection()
	return a, nil
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		if a.mode == modeEdit {
			a.view.Cancel()
		}
		a.closeInput()
		return a, nil

	case key.Matches(msg, a.keys.Enter):
		a.submit()
		return a, nil
	}
	return a, a.input.Update(msg)
}

func (a *App) submit() {
	value := a.input.Value()

	switch a.mode {
	case modeAddText:
		if strings.TrimSpace(value) == "" {
			a.fail(&tasks.ValidationError{Field: "text", Err: tasks.ErrEmptyField})
			return
		}
		a.pendingText = value
		a.mode = modeAddDate
		a.input.Focus("Due date:", "dd/mm/yyyy, yyyy-mm-dd, today or tomorrow", "")

	case modeAddDate:
		task, err := a.store.Add(a.pendingText, a.normalize(value))
		if err != nil {
			a.fail(err)
			var verr *tasks.ValidationError
			if errors.As(err, &verr) && verr.Field == "text" {
				a.mode = modeAddText
				a.input.Focus("New task:", "What needs to be done?", a.pendingText)
				return
			}
			if errors.Is(err, tasks.ErrPastDueDate) {
				a.input.Reset()
			}
			return
		}
		a.closeInput()
		a.ok("✓ Added " + task.Text)
		a.selectID(task.ID)

	case modeEdit:
		session, open := a.view.Editing()
		if !open {
			a.closeInput()
			return
		}
		if session.Field == view.FieldDate {
			value = a.normalize(value)
		}
		changed, err := a.view.Commit(value)
		if err != nil {
			a.fail(err)
			return
		}
		a.closeInput()
		if changed {
			a.ok("✓ Updated")
		}
	}
}

func (a *App) beginEdit(field view.Field) tea.Cmd {
	row, ok := a.selected()
	if !ok {
		return nil
	}
	session, err := a.view.BeginEdit(row.Task.ID, field)
	if err != nil {
		a.fail(err)
		return nil
	}
	a.mode = modeEdit
	if field == view.FieldDate {
		value := session.Original
		if due, err := row.Task.DueDate(); err == nil {
			value = due.Format(editDateLayout)
		}
		return a.input.Focus("Edit date:", "dd/mm/yyyy", value)
	}
	return a.input.Focus("Edit task:", "", session.Original)
}

func (a *App) closeInput() {
	a.mode = modeList
	a.pendingText = ""
	a.input.Blur()
	a.clampSelection()
}

// normalize accepts the display format and shortcuts, passing anything
// unrecognised through for the store to reject.
func (a *App) normalize(value string) string {
	if iso, err := models.NormalizeDate(value, a.store.Now()); err == nil && iso != "" {
		return iso
	}
	return value
}

func (a *App) report(err error, success string) {
	if err != nil {
		a.fail(err)
		return
	}
	if success != "" {
		a.ok(success)
	}
}

func (a *App) ok(msg string) {
	a.message = msg
	a.isErr = false
}

func (a *App) fail(err error) {
	a.message = "Error: " + describe(err)
	a.isErr = true
}

func (a *App) selected() (view.Row, bool) {
	rows := a.view.Rows()
	if a.selectedIdx < 0 || a.selectedIdx >= len(rows) {
		return view.Row{}, false
	}
	return rows[a.selectedIdx], true
}

func (a *App) selectID(id int64) {
	for i, r := range a.view.Rows() {
		if r.Task.ID == id {
			a.selectedIdx = i
			return
		}
	}
	a.clampSelection()
}

func (a *App) clampSelection() {
	n := len(a.view.Rows())
	if a.selectedIdx >= n {
		a.selectedIdx = n - 1
	}
	if a.selectedIdx < 0 {
		a.selectedIdx = 0
	}
}

func nextFilter(cur models.Filter) models.Filter {
	for i, f := range models.Filters {
		if f == cur {
			return models.Filters[(i+1)%len(models.Filters)]
		}
	}
	return models.FilterAll
}

// describe turns store errors into messages for the message bar.
func describe(err error) string {
	switch {
	case errors.Is(err, tasks.ErrPastDueDate):
		return "the due date cannot be in the past"
	case errors.Is(err, tasks.ErrInvalidDate):
		return "that is not a valid date"
	case errors.Is(err, tasks.ErrEmptyField):
		var verr *tasks.ValidationError
		if errors.As(err, &verr) {
			return verr.Field + " cannot be empty"
		}
		return "value cannot be empty"
	default:
		return err.Error()
	}
}
