package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"minitodo/internal/task"
)

type addForm struct {
	title    string
	due      string
	priority string
	index    int
}

func newAddForm() *addForm {
	return &addForm{priority: string(task.PriorityMedium)}
}

func addFields() []string {
	return []string{"title", "due date (YYYY-MM-DD, optional)", "priority (low/medium/high)"}
}

func (f addForm) currentLabel() string {
	return addFields()[f.index]
}

func (f addForm) currentValue() string {
	switch f.index {
	case 0:
		return f.title
	case 1:
		return f.due
	case 2:
		return f.priority
	default:
		return ""
	}
}

func (f *addForm) setCurrentValue(v string) {
	switch f.index {
	case 0:
		f.title = v
	case 1:
		f.due = v
	case 2:
		f.priority = v
	}
}

func (f addForm) prompt() string {
	return fmt.Sprintf("Add task: %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		f.currentLabel(), f.index+1, len(addFields()))
}

func (f addForm) render() string {
	values := []string{f.title, f.due, f.priority}
	var b strings.Builder
	for i, name := range addFields() {
		prefix := " "
		if i == f.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-34s : %s\n", prefix, name, val))
	}
	return b.String()
}

func (m *Model) loadAddField() {
	m.input.SetValue(m.add.currentValue())
	m.input.Placeholder = m.add.currentLabel()
	m.input.CursorEnd()
}

func (m Model) updateAddMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		return m.leaveInput("Cancelled"), nil
	case "tab", "down":
		m.add.setCurrentValue(m.input.Value())
		m.add.index = wrapIndex(m.add.index+1, len(addFields()))
		m.loadAddField()
		m.status = m.add.prompt()
		return m, nil
	case "shift+tab", "up":
		m.add.setCurrentValue(m.input.Value())
		m.add.index = wrapIndex(m.add.index-1, len(addFields()))
		m.loadAddField()
		m.status = m.add.prompt()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.add.setCurrentValue(m.input.Value())
		if m.add.index >= len(addFields())-1 {
			return m.saveAdd()
		}
		m.add.index++
		m.loadAddField()
		m.status = m.add.prompt()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// saveAdd submits the form. A blank title is dropped silently; a malformed
// date keeps the form open so it can be fixed.
func (m Model) saveAdd() (tea.Model, tea.Cmd) {
	due := strings.TrimSpace(m.add.due)
	if due != "" && !task.ValidDue(due) {
		m.add.index = 1
		m.loadAddField()
		m.status = "Invalid format: expected YYYY-MM-DD"
		return m, nil
	}
	added, ok := m.store.Add(m.add.title, due, task.ParsePriority(m.add.priority))
	if !ok {
		return m.leaveInput(""), nil
	}
	m = m.leaveInput("Added task")
	for i, r := range m.frame().Rows {
		if r.ID == added.ID {
			m.cursor = i
			break
		}
	}
	return m, nil
}
