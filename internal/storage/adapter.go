package storage

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"minitodo/internal/task"
)

const (
	KeyTasks  = "tasks"
	KeyFilter = "filter"
	KeySearch = "search"
	KeySort   = "sort"

	// LegacyKeyTasks is where the filter-only variant kept its list.
	LegacyKeyTasks = "todo-app-tasks"
)

type batchSetter interface {
	SetMany(pairs map[string]string) error
}

type deleter interface {
	Delete(key string) error
}

// Adapter persists store snapshots into a KV. It never reports failures to
// the caller: the in-memory state stays authoritative for the session.
type Adapter struct {
	kv          KV
	logger      *log.Logger
	now         func() time.Time
	preferences bool
	defaults    task.Prefs
	legacy      bool
}

type AdapterOption func(*Adapter)

// WithDefaultPrefs sets the preferences used when none are stored.
func WithDefaultPrefs(p task.Prefs) AdapterOption {
	return func(a *Adapter) { a.defaults = p }
}

func WithClock(now func() time.Time) AdapterOption {
	return func(a *Adapter) { a.now = now }
}

// WithPreferences controls whether filter/search/sort are persisted.
func WithPreferences(on bool) AdapterOption {
	return func(a *Adapter) { a.preferences = on }
}

func NewAdapter(kv KV, logger *log.Logger, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		kv:          kv,
		logger:      logger,
		now:         time.Now,
		preferences: true,
		defaults:    task.DefaultPrefs(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Save(s task.Snapshot) {
	tasks := s.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		a.logger.Warn("encode tasks", "err", err)
		return
	}
	pairs := map[string]string{KeyTasks: string(data)}
	if a.preferences {
		pairs[KeyFilter] = string(s.Filter)
		pairs[KeySearch] = s.Search
		pairs[KeySort] = string(s.Sort)
	}

	if !a.write(pairs) {
		return
	}
	// The list now lives under KeyTasks; drop the migrated copy.
	if a.legacy {
		if d, ok := a.kv.(deleter); ok {
			if err := d.Delete(LegacyKeyTasks); err != nil {
				a.logger.Warn("drop legacy key", "err", err)
				return
			}
		}
		a.legacy = false
	}
}

func (a *Adapter) write(pairs map[string]string) bool {
	if b, ok := a.kv.(batchSetter); ok {
		if err := b.SetMany(pairs); err != nil {
			a.logger.Warn("save snapshot", "err", err)
			return false
		}
		return true
	}
	for k, v := range pairs {
		if err := a.kv.Set(k, v); err != nil {
			a.logger.Warn("save snapshot", "key", k, "err", err)
			return false
		}
	}
	return true
}

func (a *Adapter) Load() task.Snapshot {
	snap := task.Snapshot{Tasks: []task.Task{}, Prefs: a.defaults}
	snap.Tasks = a.loadTasks()
	if !a.preferences {
		return snap
	}

	if v, ok := a.get(KeyFilter); ok {
		snap.Filter = task.ParseFilter(v)
	}
	if v, ok := a.get(KeySearch); ok {
		snap.Search = v
	}
	if v, ok := a.get(KeySort); ok && v != "" {
		snap.Sort = task.SortKey(v)
	}
	return snap
}

func (a *Adapter) loadTasks() []task.Task {
	raw, ok := a.get(KeyTasks)
	if !ok {
		raw, ok = a.get(LegacyKeyTasks)
		if ok {
			a.logger.Info("migrating legacy task list", "key", LegacyKeyTasks)
			a.legacy = true
		}
	}
	if !ok {
		return []task.Task{}
	}
	tasks, err := task.SanitizeAll([]byte(raw), a.now().UnixMilli(), nil)
	if err != nil {
		a.logger.Warn("stored tasks unreadable, starting empty", "err", err)
		return []task.Task{}
	}
	return tasks
}

func (a *Adapter) get(key string) (string, bool) {
	v, ok, err := a.kv.Get(key)
	if err != nil {
		a.logger.Warn("read key", "key", key, "err", err)
		return "", false
	}
	return v, ok
}
