// Package render rebuilds the whole task display from store state. It keeps
// no state of its own: the same State always yields the same Frame and text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"minitodo/internal/store"
	"minitodo/internal/task"
	"minitodo/internal/view"
)

type Row struct {
	ID       string
	Title    string
	Done     bool
	Selected bool
	Due      string
	Overdue  bool
	Priority task.Priority
}

type Frame struct {
	Rows   []Row
	Counts view.Counts
	Empty  bool
	Prefs  task.Prefs
	Undo   int
}

func Build(st store.State, today time.Time) Frame {
	f := Frame{
		Rows:   make([]Row, 0, len(st.Visible)),
		Counts: st.Counts,
		Empty:  len(st.Visible) == 0,
		Prefs:  st.Prefs,
		Undo:   st.Undo,
	}
	for _, t := range st.Visible {
		f.Rows = append(f.Rows, Row{
			ID:       t.ID,
			Title:    t.Title,
			Done:     t.Done(),
			Selected: t.Selected,
			Due:      t.Due,
			Overdue:  view.Overdue(t, today),
			Priority: t.Priority,
		})
	}
	return f
}

// IDAt returns the task id shown at row i.
func (f Frame) IDAt(i int) (string, bool) {
	if i < 0 || i >= len(f.Rows) {
		return "", false
	}
	return f.Rows[i].ID, true
}

type Styles struct {
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Done     lipgloss.Style
	Cursor   lipgloss.Style
	Overdue  lipgloss.Style
	Priority map[task.Priority]lipgloss.Style
	Notice   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Done:    lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Cursor:  lipgloss.NewStyle().Bold(true),
		Overdue: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Priority: map[task.Priority]lipgloss.Style{
			task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
			task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		},
		Notice: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// PlainStyles draws without any terminal attributes.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:  plain,
		Muted:   plain,
		Done:    plain,
		Cursor:  plain,
		Overdue: plain,
		Priority: map[task.Priority]lipgloss.Style{
			task.PriorityHigh:   plain,
			task.PriorityMedium: plain,
			task.PriorityLow:    plain,
		},
		Notice: plain,
	}
}

// Render draws the frame. cursor < 0 hides the cursor marker.
func (f Frame) Render(s Styles, cursor int) string {
	var b strings.Builder

	b.WriteString(s.Header.Render(fmt.Sprintf("Active %d · Done %d · Total %d",
		f.Counts.Active, f.Counts.Done, f.Counts.Total)))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render(f.prefsLine()))
	b.WriteString("\n\n")

	if f.Empty {
		b.WriteString(s.Muted.Render("No tasks to show."))
		b.WriteString("\n")
	}
	for i, r := range f.Rows {
		b.WriteString(r.render(s, i == cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.Muted.Render(fmt.Sprintf("%d tasks", len(f.Rows))))
	if f.Undo > 0 {
		b.WriteString("  ")
		b.WriteString(s.Notice.Render(fmt.Sprintf("%d removed, undo available", f.Undo)))
	}
	b.WriteString("\n")
	return b.String()
}

func (f Frame) prefsLine() string {
	line := fmt.Sprintf("filter:%s  sort:%s", f.Prefs.Filter, f.Prefs.Sort)
	if f.Prefs.Search != "" {
		line += fmt.Sprintf("  search:%q", f.Prefs.Search)
	}
	return line
}

func (r Row) render(s Styles, atCursor bool) string {
	cursor := " "
	if atCursor {
		cursor = s.Cursor.Render(">")
	}
	checkbox := "[ ]"
	if r.Done {
		checkbox = "[x]"
	}
	mark := " "
	if r.Selected {
		mark = "*"
	}

	title := r.Title
	if r.Done {
		title = s.Done.Render(title)
	}

	extras := make([]string, 0, 2)
	if r.Due != "" {
		if r.Overdue {
			extras = append(extras, s.Overdue.Render("due:"+r.Due+" overdue"))
		} else {
			extras = append(extras, s.Muted.Render("due:"+r.Due))
		}
	}
	extras = append(extras, s.Priority[r.Priority].Render(string(r.Priority)))

	return fmt.Sprintf("%s %s%s %s [%s]", cursor, mark, checkbox, title, strings.Join(extras, " | "))
}
