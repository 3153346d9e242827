// Package view keeps a UI-independent rendered model of the task list in
// step with the task store. Adapters (the TUI, tests) read rows, counts and
// empty-state from here and call the actions bound on each row.
package view

import (
	"errors"
	"strings"

	"github.com/fentz26/tasklist/internal/filter"
	"github.com/fentz26/tasklist/internal/models"
)

// ErrNoSuchRow is returned when an edit targets a task that is not rendered.
var ErrNoSuchRow = errors.New("task is not in the current view")

// Store is the part of the task store the synchronizer depends on.
type Store interface {
	Tasks() []models.Task
	Filter() models.Filter
	Subscribe(fn func()) func()
	ToggleComplete(id int64) error
	Delete(id int64) error
	EditText(id int64, text string) error
	EditDate(id int64, date string) error
}

// Row is one rendered task with its interaction handlers bound.
type Row struct {
	Task        models.Task
	DisplayDate string

	Toggle   func() error
	Delete   func() error
	EditText func(text string) error
	EditDate func(date string) error
}

// FilterButton describes one filter selector.
type FilterButton struct {
	Filter models.Filter
	Label  string
	Count  int
	Active bool
}

var filterLabels = map[models.Filter]string{
	models.FilterAll:       "All",
	models.FilterActive:    "Active",
	models.FilterCompleted: "Completed",
}

// Field identifies the editable part of a row.
type Field int

const (
	FieldText Field = iota
	FieldDate
)

// EditSession is an in-place edit in progress.
type EditSession struct {
	ID       int64
	Field    Field
	Original string
}

// Synchronizer rebuilds the whole view on every store change. The list is
// small enough that replacing everything beats diffing.
type Synchronizer struct {
	store Store

	rows    []Row
	counts  filter.Counts
	mode    models.Filter
	empty   bool
	version int

	edit        *EditSession
	unsubscribe func()
}

// New builds the initial view and subscribes to store changes.
func New(store Store) *Synchronizer {
	s := &Synchronizer{store: store}
	s.Rebuild()
	s.unsubscribe = store.Subscribe(s.Rebuild)
	return s
}

// Close stops following the store.
func (s *Synchronizer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Rebuild discards all rows and derives them again from the store.
func (s *Synchronizer) Rebuild() {
	tasks := s.store.Tasks()
	s.mode = s.store.Filter()
	s.counts = filter.Count(tasks)
	s.empty = EmptyState(s.counts, s.mode)

	visible := filter.Apply(tasks, s.mode)
	rows := make([]Row, len(visible))
	for i, t := range visible {
		rows[i] = s.bind(t)
	}
	s.rows = rows

	if s.edit != nil && s.rowIndex(s.edit.ID) < 0 {
		s.edit = nil
	}
	s.version++
}

func (s *Synchronizer) bind(t models.Task) Row {
	id := t.ID
	return Row{
		Task:        t,
		DisplayDate: t.DisplayDate(),
		Toggle:      func() error { return s.store.ToggleComplete(id) },
		Delete:      func() error { return s.store.Delete(id) },
		EditText:    func(text string) error { return s.store.EditText(id, text) },
		EditDate:    func(date string) error { return s.store.EditDate(id, date) },
	}
}

// Rows returns the rendered rows in display order.
func (s *Synchronizer) Rows() []Row {
	return s.rows
}

// Row returns the rendered row for id.
func (s *Synchronizer) Row(id int64) (Row, bool) {
	if i := s.rowIndex(id); i >= 0 {
		return s.rows[i], true
	}
	return Row{}, false
}

// Counts returns totals for every filter, regardless of the active one.
func (s *Synchronizer) Counts() filter.Counts {
	return s.counts
}

// Mode returns the filter the view was built with.
func (s *Synchronizer) Mode() models.Filter {
	return s.mode
}

// EmptyVisible reports whether the empty-state indicator should show.
func (s *Synchronizer) EmptyVisible() bool {
	return s.empty
}

// Version increments on every rebuild.
func (s *Synchronizer) Version() int {
	return s.version
}

// FilterButtons returns the filter selectors with exactly one active.
func (s *Synchronizer) FilterButtons() []FilterButton {
	buttons := make([]FilterButton, len(models.Filters))
	for i, f := range models.Filters {
		buttons[i] = FilterButton{
			Filter: f,
			Label:  filterLabels[f],
			Count:  s.counts.Of(f),
			Active: f == s.mode,
		}
	}
	return buttons
}

// EmptyState decides empty-state visibility:
//   - active: no active tasks
//   - completed: at least one task and all of them completed
//   - all: no tasks, or all of them completed
func EmptyState(c filter.Counts, mode models.Filter) bool {
	switch mode {
	case models.FilterActive:
		return c.Active == 0
	case models.FilterCompleted:
		return c.All > 0 && c.Completed == c.All
	default:
		return c.All == 0 || c.Completed == c.All
	}
}

// --- In-place editing ---

// BeginEdit enters edit mode for a rendered task's text or date.
func (s *Synchronizer) BeginEdit(id int64, field Field) (EditSession, error) {
	row, ok := s.Row(id)
	if !ok {
		return EditSession{}, ErrNoSuchRow
	}
	original := row.Task.Text
	if field == FieldDate {
		original = row.Task.Date
	}
	s.edit = &EditSession{ID: id, Field: field, Original: original}
	return *s.edit, nil
}

// Editing returns the open edit session, if any.
func (s *Synchronizer) Editing() (EditSession, bool) {
	if s.edit == nil {
		return EditSession{}, false
	}
	return *s.edit, true
}

// Commit ends the edit session with value, as on loss of focus. Text is
// trimmed. An unchanged value closes the session without touching the store.
// On a store error the session stays open so the value can be corrected.
func (s *Synchronizer) Commit(value string) (bool, error) {
	if s.edit == nil {
		return false, nil
	}
	edit := *s.edit
	value = strings.TrimSpace(value)
	if value == edit.Original {
		s.edit = nil
		return false, nil
	}

	row, ok := s.Row(edit.ID)
	if !ok {
		s.edit = nil
		return false, ErrNoSuchRow
	}

	var err error
	if edit.Field == FieldDate {
		err = row.EditDate(value)
	} else {
		err = row.EditText(value)
	}
	if err != nil {
		return false, err
	}
	s.edit = nil
	return true, nil
}

// Cancel abandons the edit session.
func (s *Synchronizer) Cancel() {
	s.edit = nil
}

func (s *Synchronizer) rowIndex(id int64) int {
	for i, r := range s.rows {
		if r.Task.ID == id {
			return i
		}
	}
	return -1
}
