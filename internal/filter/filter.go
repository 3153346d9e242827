// Package filter derives displayed subsets and orderings from a task
// collection. Nothing here mutates its input.
package filter

import (
	"sort"

	"github.com/fentz26/tasklist/internal/models"
)

// Counts holds per-filter totals for a collection.
type Counts struct {
	All       int
	Active    int
	Completed int
}

// Of returns the count matching f.
func (c Counts) Of(f models.Filter) int {
	switch f {
	case models.FilterActive:
		return c.Active
	case models.FilterCompleted:
		return c.Completed
	default:
		return c.All
	}
}

// Apply returns the tasks matching mode, in source order. Unknown modes
// behave like FilterAll.
func Apply(tasks []models.Task, mode models.Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		switch mode {
		case models.FilterActive:
			if t.Completed {
				continue
			}
		case models.FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// SortByDate returns a copy ordered by ascending due date. Ties keep their
// relative order; tasks with unparseable dates go last.
func SortByDate(tasks []models.Task) []models.Task {
	type keyed struct {
		task models.Task
		unix int64
		ok   bool
	}
	ks := make([]keyed, len(tasks))
	for i, t := range tasks {
		d, err := t.DueDate()
		ks[i] = keyed{task: t, unix: d.Unix(), ok: err == nil}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.unix < b.unix
	})

	out := make([]models.Task, len(ks))
	for i, k := range ks {
		out[i] = k.task
	}
	return out
}

// Reorder puts not-completed tasks before completed ones, each group sorted
// by ascending id (creation order).
func Reorder(tasks []models.Task) []models.Task {
	active := Apply(tasks, models.FilterActive)
	done := Apply(tasks, models.FilterCompleted)
	byID := func(ts []models.Task) {
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
	}
	byID(active)
	byID(done)
	return append(active, done...)
}

// Count tallies the collection per filter mode.
func Count(tasks []models.Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}
