// Package store owns the canonical task list and view preferences. Every
// operation ends by persisting the full snapshot and re-rendering, so the
// stored and displayed state never diverge.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"minitodo/internal/logging"
	"minitodo/internal/task"
	"minitodo/internal/view"
)

var (
	ErrEmptyTitle = errors.New("title cannot be empty")
	ErrInvalidDue = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrNotFound   = errors.New("task not found")
)

const ResetPrompt = "Remove ALL tasks?"

type Persister interface {
	Save(task.Snapshot)
}

type Confirmer interface {
	Confirm(message string) bool
}

type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// State is a read-only copy of the store handed to renderers.
type State struct {
	Tasks   []task.Task
	Prefs   task.Prefs
	Visible []task.Task
	Counts  view.Counts
	Undo    int
}

type Store struct {
	tasks     []task.Task
	prefs     task.Prefs
	undo      *UndoBuffer
	persist   Persister
	render    func(State)
	projector view.Projector
	now       func() time.Time
	newID     func() string
	logger    *log.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithUndo toggles the undo buffer. Without it deletions are final.
func WithUndo(on bool) Option {
	return func(s *Store) {
		if on {
			s.undo = &UndoBuffer{}
		} else {
			s.undo = nil
		}
	}
}

func WithRenderer(render func(State)) Option {
	return func(s *Store) { s.render = render }
}

func WithInitial(snap task.Snapshot) Option {
	return func(s *Store) {
		s.tasks = snap.Clone().Tasks
		s.prefs = snap.Prefs
	}
}

func WithProjector(p view.Projector) Option {
	return func(s *Store) { s.projector = p }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func New(persist Persister, opts ...Option) *Store {
	s := &Store{
		tasks:     []task.Task{},
		prefs:     task.DefaultPrefs(),
		undo:      &UndoBuffer{},
		persist:   persist,
		projector: view.NewProjector(view.DefaultLanguage),
		now:       time.Now,
		newID:     task.NewID,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tasks == nil {
		s.tasks = []task.Task{}
	}
	return s
}

// SetRenderer replaces the render hook, used when the display is built
// after the store.
func (s *Store) SetRenderer(render func(State)) {
	s.render = render
}

func (s *Store) Snapshot() task.Snapshot {
	return task.Snapshot{Tasks: s.tasks, Prefs: s.prefs}.Clone()
}

func (s *Store) State() State {
	snap := s.Snapshot()
	st := State{
		Tasks:   snap.Tasks,
		Prefs:   snap.Prefs,
		Visible: s.projector.Project(s.tasks, s.prefs),
		Counts:  view.Count(s.tasks),
	}
	if s.undo != nil {
		st.Undo = s.undo.Len()
	}
	return st
}

func (s *Store) Get(id string) (task.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Len() int {
	return len(s.tasks)
}

func (s *Store) UndoEnabled() bool {
	return s.undo != nil
}

// Refresh persists and re-renders without changing anything.
func (s *Store) Refresh() {
	s.commit()
}

func (s *Store) commit() {
	if s.persist != nil {
		s.persist.Save(s.Snapshot())
	}
	if s.render != nil {
		s.render(s.State())
	}
}

func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new active task. Blank titles are ignored.
func (s *Store) Add(title, due string, priority task.Priority) (task.Task, bool) {
	defer s.commit()
	title, ok := task.CleanTitle(title)
	if !ok {
		return task.Task{}, false
	}
	if !task.ValidDue(due) {
		due = ""
	}
	if !priority.Valid() {
		priority = task.PriorityMedium
	}
	t := task.Task{
		ID:        s.uniqueID(),
		Title:     title,
		Status:    task.StatusActive,
		CreatedAt: s.now().UnixMilli(),
		Due:       due,
		Priority:  priority,
	}
	s.tasks = append(s.tasks, t)
	s.logger.Debug("task added", "id", t.ID)
	return t, true
}

func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if s.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) ToggleStatus(id string) {
	defer s.commit()
	if i := s.index(id); i >= 0 {
		s.tasks[i].Status = s.tasks[i].Status.Toggle()
	}
}

// EditTitle keeps the original title when the new one is blank.
func (s *Store) EditTitle(id, title string) error {
	defer s.commit()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	title, ok := task.CleanTitle(title)
	if !ok {
		return ErrEmptyTitle
	}
	s.tasks[i].Title = title
	return nil
}

// SetDue clears the date on a blank value and rejects anything that is not
// YYYY-MM-DD, leaving the previous date in place.
func (s *Store) SetDue(id, due string) error {
	defer s.commit()
	due = strings.TrimSpace(due)
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	switch {
	case due == "":
		s.tasks[i].Due = ""
	case task.ValidDue(due):
		s.tasks[i].Due = due
	default:
		s.logger.Debug("due rejected", "id", id, "value", due)
		return ErrInvalidDue
	}
	return nil
}

func (s *Store) CyclePriority(id string) {
	defer s.commit()
	if i := s.index(id); i >= 0 {
		s.tasks[i].Priority = s.tasks[i].Priority.Next()
	}
}

func (s *Store) ToggleSelected(id string) {
	defer s.commit()
	if i := s.index(id); i >= 0 {
		s.tasks[i].Selected = !s.tasks[i].Selected
	}
}

func (s *Store) Delete(id string) {
	defer s.commit()
	s.remove(func(t task.Task) bool { return t.ID == id })
}

func (s *Store) BulkComplete() {
	defer s.commit()
	for i := range s.tasks {
		if s.tasks[i].Selected {
			s.tasks[i].Status = task.StatusDone
			s.tasks[i].Selected = false
		}
	}
}

func (s *Store) BulkDelete() {
	defer s.commit()
	s.remove(func(t task.Task) bool { return t.Selected })
}

func (s *Store) ClearDone() {
	defer s.commit()
	s.remove(task.Task.Done)
}

// ResetAll empties the list only after confirm agrees.
func (s *Store) ResetAll(confirm Confirmer) bool {
	if confirm == nil || !confirm.Confirm(ResetPrompt) {
		return false
	}
	defer s.commit()
	s.remove(func(task.Task) bool { return true })
	return true
}

// UndoLastDelete re-appends the last removed batch. Tasks whose id has since
// reappeared are skipped.
func (s *Store) UndoLastDelete() int {
	defer s.commit()
	if s.undo == nil || !s.undo.Pending() {
		return 0
	}
	restored := 0
	for _, t := range s.undo.Restore() {
		if s.index(t.ID) >= 0 {
			continue
		}
		s.tasks = append(s.tasks, t)
		restored++
	}
	s.logger.Debug("undo", "restored", restored)
	return restored
}

// remove drops every matching task, capturing them for undo when enabled.
// Nothing matched leaves the undo buffer as it was.
func (s *Store) remove(match func(task.Task) bool) int {
	kept := make([]task.Task, 0, len(s.tasks))
	var removed []task.Task
	for _, t := range s.tasks {
		if match(t) {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	if len(removed) == 0 {
		return 0
	}
	if s.undo != nil {
		s.undo.Capture(removed)
	}
	s.tasks = kept
	s.logger.Debug("tasks removed", "count", len(removed))
	return len(removed)
}

func (s *Store) SetFilter(f task.Filter) {
	defer s.commit()
	if !f.Valid() {
		f = task.FilterAll
	}
	s.prefs.Filter = f
}

func (s *Store) SetSearch(search string) {
	defer s.commit()
	s.prefs.Search = strings.TrimSpace(search)
}

func (s *Store) SetSort(key task.SortKey) {
	defer s.commit()
	s.prefs.Sort = key
}

// Replace swaps in an imported snapshot wholesale.
func (s *Store) Replace(snap task.Snapshot) {
	defer s.commit()
	snap = snap.Clone()
	s.tasks = snap.Tasks
	if s.tasks == nil {
		s.tasks = []task.Task{}
	}
	s.prefs = snap.Prefs
}
