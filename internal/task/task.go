package task

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusDone   Status = "done"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDone
}

func (s Status) Toggle() Status {
	if s == StatusDone {
		return StatusActive
	}
	return StatusDone
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next advances low -> medium -> high -> low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Weight orders high before medium before low.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

func ParsePriority(v string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(v)))
	if !p.Valid() {
		return PriorityMedium
	}
	return p
}

type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
	FilterDone   Filter = "done"
)

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterDone:
		return true
	}
	return false
}

func ParseFilter(v string) Filter {
	f := Filter(strings.ToLower(strings.TrimSpace(v)))
	if !f.Valid() {
		return FilterAll
	}
	return f
}

type SortKey string

const (
	SortCreated  SortKey = "created"
	SortTitle    SortKey = "title"
	SortDue      SortKey = "due"
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
)

func SortKeys() []SortKey {
	return []SortKey{SortCreated, SortTitle, SortDue, SortPriority, SortStatus}
}

type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    Status   `json:"status"`
	CreatedAt int64    `json:"createdAt"`
	Due       string   `json:"due,omitempty"`
	Priority  Priority `json:"priority"`
	Selected  bool     `json:"selected,omitempty"`
}

func (t Task) Done() bool {
	return t.Status == StatusDone
}

// Equivalent compares every field except the transient selection flag.
func Equivalent(a, b Task) bool {
	a.Selected = false
	b.Selected = false
	return a == b
}

const DateLayout = "2006-01-02"

var duePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDue is a format check only; 2024-13-40 passes.
func ValidDue(s string) bool {
	return duePattern.MatchString(s)
}

func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func CleanTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	return title, title != ""
}
