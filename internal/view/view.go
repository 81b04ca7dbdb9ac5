// Package view derives the visible task list from the canonical one.
package view

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"minitodo/internal/task"
)

// DefaultLanguage drives title collation when none is configured.
var DefaultLanguage = language.Spanish

// noDue sorts undated tasks after every dated one.
const noDue = "9999-12-31"

type Projector struct {
	lang language.Tag
}

func NewProjector(lang language.Tag) Projector {
	return Projector{lang: lang}
}

// ParseLanguage falls back to DefaultLanguage on an unknown tag.
func ParseLanguage(s string) language.Tag {
	if s == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLanguage
	}
	return tag
}

// Project filters by status, then by search text, then sorts. The input is
// never modified and the result is always a fresh slice.
func (p Projector) Project(tasks []task.Task, prefs task.Prefs) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	needle := strings.ToLower(prefs.Search)
	for _, t := range tasks {
		if prefs.Filter != task.FilterAll && prefs.Filter != "" && string(t.Status) != string(prefs.Filter) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, p.comparator(prefs.Sort))
	return out
}

func Project(tasks []task.Task, filter task.Filter, search string, sort task.SortKey) []task.Task {
	return NewProjector(DefaultLanguage).Project(tasks, task.Prefs{Filter: filter, Search: search, Sort: sort})
}

func (p Projector) comparator(key task.SortKey) func(a, b task.Task) int {
	switch key {
	case task.SortTitle:
		c := collate.New(p.lang, collate.Loose)
		return func(a, b task.Task) int {
			return c.CompareString(a.Title, b.Title)
		}
	case task.SortDue:
		return func(a, b task.Task) int {
			return strings.Compare(dueKey(a), dueKey(b))
		}
	case task.SortPriority:
		return func(a, b task.Task) int {
			return a.Priority.Weight() - b.Priority.Weight()
		}
	case task.SortStatus:
		return func(a, b task.Task) int {
			return statusRank(a.Status) - statusRank(b.Status)
		}
	default:
		return byCreated
	}
}

func byCreated(a, b task.Task) int {
	switch {
	case a.CreatedAt < b.CreatedAt:
		return -1
	case a.CreatedAt > b.CreatedAt:
		return 1
	}
	return 0
}

func dueKey(t task.Task) string {
	if t.Due == "" {
		return noDue
	}
	return t.Due
}

func statusRank(s task.Status) int {
	if s == task.StatusActive {
		return 0
	}
	return 1
}

type Counts struct {
	Active int
	Done   int
	Total  int
}

func Count(tasks []task.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == task.StatusDone {
			c.Done++
		} else {
			c.Active++
		}
	}
	return c
}

// Overdue reports an unfinished task whose due date is before today.
func Overdue(t task.Task, today time.Time) bool {
	if t.Due == "" || t.Status == task.StatusDone {
		return false
	}
	due, err := time.ParseInLocation(task.DateLayout, t.Due, today.Location())
	if err != nil {
		return false
	}
	y, m, d := today.Date()
	return due.Before(time.Date(y, m, d, 0, 0, 0, 0, today.Location()))
}
