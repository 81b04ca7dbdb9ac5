package ui

import (
	"fmt"
	"strings"
	"time"

	"minitodo/internal/task"
)

const createdLayout = "2006-01-02 15:04"

func formatCreated(ms int64) string {
	return time.UnixMilli(ms).Format(createdLayout)
}

func dueOrNone(due string) string {
	if due == "" {
		return "(none)"
	}
	return due
}

func detailLine(t task.Task) string {
	return fmt.Sprintf("Task %s • %s • %s • created %s • due %s • %s",
		t.ID, t.Title, t.Status, formatCreated(t.CreatedAt), dueOrNone(t.Due), t.Priority)
}

func (m Model) renderDetailPanel() string {
	id, ok := m.currentID()
	if !ok {
		return "No task selected\n"
	}
	t, ok := m.store.Get(id)
	if !ok {
		return "No task selected\n"
	}
	var b strings.Builder
	b.WriteString("Details\n")
	b.WriteString(fmt.Sprintf("ID       : %s\n", t.ID))
	b.WriteString(fmt.Sprintf("Title    : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Status   : %s\n", t.Status))
	b.WriteString(fmt.Sprintf("Created  : %s\n", formatCreated(t.CreatedAt)))
	b.WriteString(fmt.Sprintf("Due      : %s\n", dueOrNone(t.Due)))
	b.WriteString(fmt.Sprintf("Priority : %s\n", t.Priority))
	return b.String()
}
