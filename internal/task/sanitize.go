package task

import (
	"encoding/json"
	"math"
)

// Sanitize coerces one untrusted entry into a valid Task. Entries whose id or
// title are not strings, or whose title is blank, are rejected. When fillID is
// non-nil a non-string id is replaced instead of rejecting the entry. An empty
// string id always gets a fresh one.
func Sanitize(raw any, now int64, fillID func() string) (Task, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Task{}, false
	}

	id, ok := obj["id"].(string)
	if !ok && fillID == nil {
		return Task{}, false
	}
	if !ok || id == "" {
		if fillID == nil {
			fillID = NewID
		}
		id = fillID()
	}
	rawTitle, ok := obj["title"].(string)
	if !ok {
		return Task{}, false
	}
	title, ok := CleanTitle(rawTitle)
	if !ok {
		return Task{}, false
	}

	t := Task{
		ID:        id,
		Title:     title,
		Status:    StatusActive,
		CreatedAt: now,
		Priority:  PriorityMedium,
	}

	if s, _ := obj["status"].(string); Status(s) == StatusDone {
		t.Status = StatusDone
	} else if _, has := obj["status"]; !has {
		if done, _ := obj["done"].(bool); done {
			t.Status = StatusDone
		}
	}
	if created, ok := number(obj["createdAt"]); ok {
		t.CreatedAt = created
	}
	if due, _ := obj["due"].(string); ValidDue(due) {
		t.Due = due
	}
	if p, _ := obj["priority"].(string); Priority(p).Valid() {
		t.Priority = Priority(p)
	}
	return t, true
}

// SanitizeAll decodes a JSON array and sanitizes every entry, dropping
// duplicates of an id already seen.
func SanitizeAll(data []byte, now int64, fillID func() string) ([]Task, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return SanitizeEntries(raw, now, fillID), nil
}

func SanitizeEntries(raw []any, now int64, fillID func() string) []Task {
	tasks := make([]Task, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		t, ok := Sanitize(entry, now, fillID)
		if !ok {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			if fillID == nil {
				continue
			}
			t.ID = fillID()
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks
}

func number(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}
