// Package models defines the core domain types for tasklist.
package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical stored form of a due date.
	DateLayout = "2006-01-02"
	// DisplayLayout is how due dates are shown to the user (DD/MM/YY).
	DisplayLayout = "02/01/06"
)

// Filter selects which tasks are displayed.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists the filter modes in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter maps a string to a Filter, falling back to FilterAll.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterActive:
		return FilterActive
	case FilterCompleted:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Task is a single to-do item.
type Task struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"` // YYYY-MM-DD
	Completed bool   `json:"completed"`
}

// DueDate parses the stored date.
func (t Task) DueDate() (time.Time, error) {
	return ParseDate(t.Date)
}

// DisplayDate renders the due date as DD/MM/YY, or the raw value if it
// cannot be parsed.
func (t Task) DisplayDate() string {
	d, err := ParseDate(t.Date)
	if err != nil {
		return t.Date
	}
	return d.Format(DisplayLayout)
}

// ParseDate parses a canonical YYYY-MM-DD date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// Today returns the calendar date of now, formatted canonically.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// inputLayouts are accepted by NormalizeDate, most specific first.
var inputLayouts = []string{
	DateLayout,
	"02/01/2006",
	"2/1/2006",
	DisplayLayout,
	"2/1/06",
	"02.01.2006",
}

// NormalizeDate turns user-entered date text into the canonical YYYY-MM-DD
// form. It accepts ISO dates, day/month/year in several shapes, and the
// keywords "today" and "tomorrow" relative to now.
func NormalizeDate(input string, now time.Time) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "":
		return "", nil
	case "today":
		return Today(now), nil
	case "tomorrow":
		return Today(now.AddDate(0, 0, 1)), nil
	}
	for _, layout := range inputLayouts {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return d.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or DD/MM/YY)", input)
}

// JournalEntry records a state-mutating action for the audit trail.
type JournalEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	TaskID     int64     `json:"task_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
