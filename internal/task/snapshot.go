package task

// Prefs are the persisted view preferences.
type Prefs struct {
	Filter Filter  `json:"filter"`
	Search string  `json:"search"`
	Sort   SortKey `json:"sort"`
}

func DefaultPrefs() Prefs {
	return Prefs{Filter: FilterAll, Sort: SortCreated}
}

// Snapshot is the full store state handed to persistence and export.
type Snapshot struct {
	Tasks []Task `json:"tasks"`
	Prefs
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Prefs: s.Prefs, Tasks: make([]Task, len(s.Tasks))}
	copy(out.Tasks, s.Tasks)
	return out
}
