// Package tasks owns the authoritative task collection and its mutations.
package tasks

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fentz26/tasklist/internal/audit"
	"github.com/fentz26/tasklist/internal/filter"
	"github.com/fentz26/tasklist/internal/models"
)

// Persister reads and writes the whole collection in one slot.
type Persister interface {
	Save(tasks []models.Task) error
	Load() ([]models.Task, error)
}

// Recorder journals mutations.
type Recorder interface {
	Record(action string, inputs interface{}, outcome string, taskID int64, details string) models.JournalEntry
}

// Journal actions.
const (
	ActionAdd      = "task.add"
	ActionToggle   = "task.toggle"
	ActionDelete   = "task.delete"
	ActionEditText = "task.edit_text"
	ActionEditDate = "task.edit_date"
	ActionSort     = "task.sort"
	ActionReplace  = "task.replace"
)

// Store holds the task collection and the current filter mode. Every
// mutation is written through the Persister before it becomes visible, and
// subscribers are signalled afterwards.
type Store struct {
	mu      sync.Mutex
	slot    Persister
	journal Recorder
	logger  *log.Logger
	now     func() time.Time

	tasks  []models.Task
	filter models.Filter

	subs    map[int]func()
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids and due-date checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithJournal records every mutation to r.
func WithJournal(r Recorder) Option {
	return func(s *Store) { s.journal = r }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store writing to slot. Call Load to read the
// persisted collection.
func New(slot Persister, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		now:    time.Now,
		logger: log.New(os.Stderr, "", log.LstdFlags),
		tasks:  []models.Task{},
		filter: models.FilterAll,
		subs:   make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Load replaces the in-memory collection with the persisted one. If the slot
// is corrupt the collection is left empty and the error is returned, so the
// caller can tell it apart from a legitimately empty list.
func (s *Store) Load() error {
	loaded, err := s.slot.Load()
	if loaded == nil {
		loaded = []models.Task{}
	}

	s.mu.Lock()
	s.tasks = loaded
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.logger.Printf("load tasks: %v", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	return nil
}

// --- Reads ---

// Tasks returns a copy of the collection in canonical order.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.tasks)
}

// Visible returns the tasks matching the current filter.
func (s *Store) Visible() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter.Apply(s.tasks, s.filter)
}

// Filter returns the current filter mode.
func (s *Store) Filter() models.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Get returns the task with id.
func (s *Store) Get(id int64) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		return s.tasks[i], nil
	}
	return models.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// NeedsSeed reports whether the collection is empty or fully completed.
func (s *Store) NeedsSeed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// Today returns the current calendar date in canonical form.
func (s *Store) Today() string {
	return models.Today(s.now())
}

// --- Mutations ---

// Add validates and appends a new task.
func (s *Store) Add(text, date string) (models.Task, error) {
	text = strings.TrimSpace(text)
	date = strings.TrimSpace(date)
	inputs := map[string]string{"text": text, "date": date}

	if text == "" {
		return models.Task{}, invalid("text", ErrEmptyField)
	}
	if date == "" {
		return models.Task{}, invalid("date", ErrEmptyField)
	}
	due, err := models.ParseDate(date)
	if err != nil {
		return models.Task{}, invalid("date", ErrInvalidDate)
	}
	if due.Before(models.StartOfDay(s.now())) {
		return models.Task{}, invalid("date", ErrPastDueDate)
	}

	var task models.Task
	err = s.mutate(ActionAdd, inputs, func(cur []models.Task) ([]models.Task, int64, bool, error) {
		task = models.Task{
			ID:   s.nextID(cur),
			Text: text,
			Date: due.Format(models.DateLayout),
		}
		return append(clone(cur), task), task.ID, true, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ToggleComplete flips a task's completion and sinks completed tasks to the
// bottom. Unknown ids are ignored.
func (s *Store) ToggleComplete(id int64) error {
	return s.mutate(ActionToggle, id, func(cur []models.Task) ([]models.Task, int64, bool, error) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, id, false, nil
		}
		next := clone(cur)
		next[i].Completed = !next[i].Completed
		return filter.Reorder(next), id, true, nil
	})
}

// Delete removes a task. Unknown ids are ignored.
func (s *Store) Delete(id int64) error {
	return s.mutate(ActionDelete, id, func(cur []models.Task) ([]models.Task, int64, bool, error) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, id, false, nil
		}
		next := make([]models.Task, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		return next, id, true, nil
	})
}

// EditText replaces a task's text. Whitespace is trimmed; an unchanged
// value writes nothing and an empty one is rejected.
func (s *Store) EditText(id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalid("text", ErrEmptyField)
	}
	return s.mutate(ActionEditText, map[string]interface{}{"id": id, "text": text}, func(cur []models.Task) ([]models.Task, int64, bool, error) {
		i := indexOf(cur, id)
		if i < 0 || cur[i].Text == text {
			return nil, id, false, nil
		}
		next := clone(cur)
		next[i].Text = text
		return next, id, true, nil
	})
}

// EditDate replaces a task's due date. Past dates are accepted here; only
// creation enforces a future due date.
func (s *Store) EditDate(id int64, date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return invalid("date", ErrEmptyField)
	}
	due, err := models.ParseDate(date)
	if err != nil {
		return invalid("date", ErrInvalidDate)
	}
	date = due.Format(models.DateLayout)

	return s.mutate(ActionEditDate, map[string]interface{}{"id": id, "date": date}, func(cur []models.Task) ([]models.Task, int64, bool, error) {
		i := indexOf(cur, id)
		if i < 0 || cur[i].Date == date {
			return nil, id, false, nil
		}
		next := clone(cur)
		next[i].Date = date
		return next, id, true, nil
	})
}

// SortByDate reorders the canonical collection by ascending due date. The
// order is stored and replaces any earlier completion-based ordering.
func (s *Store) SortByDate() error {
	return s.mutate(ActionSort, nil, func(cur []models.Task) ([]models.Task, int64, bool, error) {
		return filter.SortByDate(cur), 0, true, nil
	})
}

// SetFilter changes the displayed subset. The filter is not persisted.
func (s *Store) SetFilter(mode models.Filter) {
	s.mu.Lock()
	s.filter = models.ParseFilter(string(mode))
	s.mu.Unlock()
	s.notify()
}

// Replace swaps in a whole new collection, as done by seeding.
func (s *Store) Replace(tasks []models.Task) error {
	seen := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}
	return s.mutate(ActionReplace, len(tasks), func([]models.Task) ([]models.Task, int64, bool, error) {
		return clone(tasks), 0, true, nil
	})
}

// Clear empties the in-memory collection without persisting. Seeding calls
// it before fetching so a failed fetch leaves an empty list on screen.
func (s *Store) Clear() {
	s.mu.Lock()
	s.tasks = []models.Task{}
	s.mu.Unlock()
	s.notify()
}

// mutate computes the next collection from the current one, persists it,
// and only then swaps it in. fn reports changed=false for a no-op.
func (s *Store) mutate(action string, inputs interface{}, fn func(cur []models.Task) (next []models.Task, taskID int64, changed bool, err error)) error {
	s.mu.Lock()
	next, taskID, changed, err := fn(s.tasks)
	if err != nil {
		s.mu.Unlock()
		s.record(action, inputs, audit.OutcomeError, taskID, err.Error())
		return err
	}
	if !changed {
		s.mu.Unlock()
		s.record(action, inputs, audit.OutcomeNoop, taskID, "")
		return nil
	}
	if err := s.slot.Save(next); err != nil {
		s.mu.Unlock()
		s.logger.Printf("persist tasks after %s: %v", action, err)
		s.record(action, inputs, audit.OutcomeError, taskID, err.Error())
		return fmt.Errorf("persist tasks: %w", err)
	}
	s.tasks = next
	s.mu.Unlock()

	s.record(action, inputs, audit.OutcomeSuccess, taskID, "")
	s.notify()
	return nil
}

func (s *Store) record(action string, inputs interface{}, outcome string, taskID int64, details string) {
	if s.journal == nil {
		return
	}
	s.journal.Record(action, inputs, outcome, taskID, details)
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// nextID derives an id from the clock, bumped past the current maximum so
// ids stay unique even within the same millisecond.
func (s *Store) nextID(cur []models.Task) int64 {
	id := s.now().UnixMilli()
	for _, t := range cur {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

func indexOf(tasks []models.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}
