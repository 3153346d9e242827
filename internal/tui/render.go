package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tasklist/internal/models"
	"github.com/fentz26/tasklist/internal/view"
)

var emptyMessages = map[models.Filter]string{
	models.FilterAll:       "Nothing to do. Press a to add a task.",
	models.FilterActive:    "No active tasks. Enjoy the free time.",
	models.FilterCompleted: "Everything is done.",
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	header := titleStyle.Render("✔ tasklist")
	header += "  " + lipgloss.NewStyle().Foreground(mutedColor).Render(a.store.Today())
	b.WriteString(header + "\n")

	if a.banner != "" {
		b.WriteString(bannerStyle.Render(a.banner) + "\n")
	}

	b.WriteString(a.renderFilterBar() + "\n")
	if a.width > 0 {
		b.WriteString(strings.Repeat("─", a.width) + "\n")
	}

	b.WriteString(a.renderRows())

	if a.seeding {
		b.WriteString(emptyStyle.Render("Loading sample tasks...") + "\n")
	} else if a.view.EmptyVisible() {
		b.WriteString(emptyStyle.Render(emptyMessages[a.view.Mode()]) + "\n")
	}

	if a.input.Focused() {
		b.WriteString("\n" + a.input.View() + "\n")
	}

	// Message bar
	if a.message != "" {
		style := messageStyle
		if a.isErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(a.message))
	}
	b.WriteString("\n")

	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderFilterBar() string {
	var parts []string
	for _, btn := range a.view.FilterButtons() {
		label := fmt.Sprintf("%s (%d)", btn.Label, btn.Count)
		if btn.Active {
			parts = append(parts, filterActiveStyle.Render(label))
		} else {
			parts = append(parts, filterStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderRows() string {
	rows := a.view.Rows()
	if len(rows) == 0 {
		return ""
	}

	height := a.height - 10
	start := 0
	if height > 0 && a.selectedIdx >= height {
		start = a.selectedIdx - height + 1
	}

	var lines []string
	for i := start; i < len(rows); i++ {
		if height > 0 && len(lines) >= height {
			break
		}
		lines = append(lines, a.renderRow(rows[i], i == a.selectedIdx))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderRow(row view.Row, selected bool) string {
	check := "[ ]"
	if row.Task.Completed {
		check = "[x]"
	}

	if selected {
		return selectedStyle.Render(fmt.Sprintf("▶ %s %s  %s", check, row.Task.Text, row.DisplayDate))
	}

	text := row.Task.Text
	status := statusActive.Render(check)
	if row.Task.Completed {
		text = doneTextStyle.Render(text)
		status = statusDone.Render(check)
	}
	return taskItemStyle.Render(fmt.Sprintf("  %s %s  %s", status, text, dateStyle.Render(row.DisplayDate)))
}
