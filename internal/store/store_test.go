package store_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitodo/internal/store"
	"minitodo/internal/task"
)

type recorder struct {
	saves []task.Snapshot
}

func (r *recorder) Save(s task.Snapshot) {
	r.saves = append(r.saves, s)
}

func (r *recorder) last() task.Snapshot {
	return r.saves[len(r.saves)-1]
}

type harness struct {
	store   *store.Store
	saved   *recorder
	renders []store.State
}

func newHarness(t *testing.T, opts ...store.Option) *harness {
	t.Helper()
	h := &harness{saved: &recorder{}}
	clock := int64(0)
	seq := 0
	base := []store.Option{
		store.WithClock(func() time.Time {
			clock++
			return time.UnixMilli(clock)
		}),
		store.WithIDs(func() string {
			seq++
			return fmt.Sprintf("t%d", seq)
		}),
		store.WithRenderer(func(s store.State) { h.renders = append(h.renders, s) }),
	}
	h.store = store.New(h.saved, append(base, opts...)...)
	return h
}

func (h *harness) add(t *testing.T, title string) task.Task {
	t.Helper()
	added, ok := h.store.Add(title, "", task.PriorityMedium)
	require.True(t, ok)
	return added
}

func yes(string) bool { return true }
func no(string) bool  { return false }

func TestAddAppendsActiveTask(t *testing.T) {
	h := newHarness(t)
	added, ok := h.store.Add("  buy milk ", "2024-01-01", task.PriorityHigh)
	require.True(t, ok)

	assert.Equal(t, 1, h.store.Len())
	assert.Equal(t, "buy milk", added.Title)
	assert.Equal(t, task.StatusActive, added.Status)
	assert.Equal(t, "2024-01-01", added.Due)
	assert.Equal(t, task.PriorityHigh, added.Priority)
	assert.False(t, added.Selected)
	assert.Len(t, h.saved.saves, 1)
	assert.Len(t, h.renders, 1)
	assert.Equal(t, h.store.Snapshot(), h.saved.last())
}

func TestAddDefaultsInvalidOptionalFields(t *testing.T) {
	h := newHarness(t)
	added, ok := h.store.Add("x", "someday", task.Priority("urgent"))
	require.True(t, ok)
	assert.Empty(t, added.Due)
	assert.Equal(t, task.PriorityMedium, added.Priority)
}

func TestAddBlankTitleIsNoop(t *testing.T) {
	h := newHarness(t)
	for _, title := range []string{"", "   ", "\t\n"} {
		_, ok := h.store.Add(title, "", task.PriorityMedium)
		assert.False(t, ok)
	}
	assert.Equal(t, 0, h.store.Len())
}

func TestAddSkipsCollidingIDs(t *testing.T) {
	ids := []string{"dup", "dup", "other"}
	h := newHarness(t, store.WithIDs(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	a := h.add(t, "a")
	b := h.add(t, "b")
	assert.Equal(t, "dup", a.ID)
	assert.Equal(t, "other", b.ID)
}

func TestToggleStatusTwiceRestores(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")

	h.store.ToggleStatus(a.ID)
	got, _ := h.store.Get(a.ID)
	assert.Equal(t, task.StatusDone, got.Status)

	h.store.ToggleStatus(a.ID)
	got, _ = h.store.Get(a.ID)
	assert.Equal(t, task.StatusActive, got.Status)

	h.store.ToggleStatus("missing")
	assert.Equal(t, 1, h.store.Len())
}

func TestEditTitle(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")

	require.NoError(t, h.store.EditTitle(a.ID, "  renamed "))
	got, _ := h.store.Get(a.ID)
	assert.Equal(t, "renamed", got.Title)

	assert.ErrorIs(t, h.store.EditTitle(a.ID, "   "), store.ErrEmptyTitle)
	got, _ = h.store.Get(a.ID)
	assert.Equal(t, "renamed", got.Title)

	assert.ErrorIs(t, h.store.EditTitle("missing", "x"), store.ErrNotFound)
}

func TestSetDue(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")

	require.NoError(t, h.store.SetDue(a.ID, "2024-05-06"))
	got, _ := h.store.Get(a.ID)
	assert.Equal(t, "2024-05-06", got.Due)

	require.NoError(t, h.store.SetDue(a.ID, "2024-13-40"))
	got, _ = h.store.Get(a.ID)
	assert.Equal(t, "2024-13-40", got.Due)

	assert.ErrorIs(t, h.store.SetDue(a.ID, "not-a-date"), store.ErrInvalidDue)
	got, _ = h.store.Get(a.ID)
	assert.Equal(t, "2024-13-40", got.Due)

	require.NoError(t, h.store.SetDue(a.ID, ""))
	got, _ = h.store.Get(a.ID)
	assert.Empty(t, got.Due)

	require.NoError(t, h.store.SetDue(a.ID, " 2024-01-01 "))
	got, _ = h.store.Get(a.ID)
	assert.Equal(t, "2024-01-01", got.Due)

	require.NoError(t, h.store.SetDue(a.ID, "   "))
	got, _ = h.store.Get(a.ID)
	assert.Empty(t, got.Due)

	assert.ErrorIs(t, h.store.SetDue("missing", ""), store.ErrNotFound)
}

func TestCyclePriority(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	want := []task.Priority{task.PriorityHigh, task.PriorityLow, task.PriorityMedium}
	for _, p := range want {
		h.store.CyclePriority(a.ID)
		got, _ := h.store.Get(a.ID)
		assert.Equal(t, p, got.Priority)
	}
}

func TestToggleSelectedIsSaved(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	h.store.ToggleSelected(a.ID)
	assert.True(t, h.saved.last().Tasks[0].Selected)
	h.store.ToggleSelected(a.ID)
	assert.False(t, h.saved.last().Tasks[0].Selected)
}

func TestDeleteCapturesUndo(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	b := h.add(t, "b")

	h.store.Delete(a.ID)
	assert.Equal(t, 1, h.store.Len())
	assert.Equal(t, 1, h.store.State().Undo)

	assert.Equal(t, 1, h.store.UndoLastDelete())
	st := h.store.State()
	assert.Equal(t, 0, st.Undo)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, idsOf(st.Tasks))
}

func TestDeleteMissingKeepsUndoBatch(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	h.store.Delete(a.ID)
	h.store.Delete("missing")
	assert.Equal(t, 1, h.store.State().Undo)
}

func TestBulkComplete(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	b := h.add(t, "b")
	h.store.ToggleSelected(a.ID)

	h.store.BulkComplete()
	got, _ := h.store.Get(a.ID)
	assert.Equal(t, task.StatusDone, got.Status)
	assert.False(t, got.Selected)
	got, _ = h.store.Get(b.ID)
	assert.Equal(t, task.StatusActive, got.Status)
}

func TestBulkDeleteAndUndo(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	b := h.add(t, "b")
	c := h.add(t, "c")
	h.store.ToggleSelected(a.ID)
	h.store.ToggleSelected(c.ID)

	h.store.BulkDelete()
	assert.Equal(t, []string{b.ID}, idsOf(h.store.State().Tasks))
	assert.Equal(t, 2, h.store.State().Undo)

	h.store.UndoLastDelete()
	st := h.store.State()
	assert.ElementsMatch(t, []string{a.ID, b.ID, c.ID}, idsOf(st.Tasks))
	for _, t2 := range st.Tasks {
		assert.False(t, t2.Selected)
	}
}

func TestClearDoneThenUndo(t *testing.T) {
	h := newHarness(t, store.WithInitial(task.Snapshot{
		Tasks: []task.Task{
			{ID: "A", Title: "A", Status: task.StatusActive, CreatedAt: 1, Priority: task.PriorityMedium},
			{ID: "B", Title: "B", Status: task.StatusDone, CreatedAt: 2, Priority: task.PriorityMedium},
		},
		Prefs: task.DefaultPrefs(),
	}))

	h.store.ClearDone()
	st := h.store.State()
	assert.Equal(t, []string{"A"}, idsOf(st.Tasks))
	assert.Equal(t, 1, st.Undo)

	h.store.UndoLastDelete()
	st = h.store.State()
	assert.ElementsMatch(t, []string{"A", "B"}, idsOf(st.Tasks))
	assert.Equal(t, 0, st.Undo)
}

func TestUndoBufferIsSingleSlot(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	b := h.add(t, "b")

	h.store.Delete(a.ID)
	h.store.Delete(b.ID)
	assert.Equal(t, 1, h.store.UndoLastDelete())
	assert.Equal(t, []string{b.ID}, idsOf(h.store.State().Tasks))
	assert.Equal(t, 0, h.store.UndoLastDelete())
}

func TestUndoEmptyIsNoop(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a")
	assert.Equal(t, 0, h.store.UndoLastDelete())
	assert.Equal(t, 1, h.store.Len())
}

func TestResetAllNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a")
	h.add(t, "b")
	saves := len(h.saved.saves)

	assert.False(t, h.store.ResetAll(store.ConfirmFunc(no)))
	assert.False(t, h.store.ResetAll(nil))
	assert.Equal(t, 2, h.store.Len())
	assert.Len(t, h.saved.saves, saves)

	var asked string
	assert.True(t, h.store.ResetAll(store.ConfirmFunc(func(msg string) bool {
		asked = msg
		return true
	})))
	assert.Equal(t, store.ResetPrompt, asked)
	assert.Equal(t, 0, h.store.Len())
	assert.Empty(t, h.saved.last().Tasks)

	h.store.UndoLastDelete()
	assert.Equal(t, 2, h.store.Len())
}

func TestWithoutUndoDeletesAreFinal(t *testing.T) {
	h := newHarness(t, store.WithUndo(false))
	a := h.add(t, "a")
	h.add(t, "b")
	assert.False(t, h.store.UndoEnabled())

	h.store.Delete(a.ID)
	assert.Equal(t, 0, h.store.UndoLastDelete())
	assert.Equal(t, 1, h.store.Len())

	h.store.ResetAll(store.ConfirmFunc(yes))
	assert.Equal(t, 0, h.store.UndoLastDelete())
	assert.Equal(t, 0, h.store.Len())
}

func TestUndoSkipsReappearedIDs(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	h.store.Delete(a.ID)
	h.store.Replace(task.Snapshot{Tasks: []task.Task{a}, Prefs: task.DefaultPrefs()})

	assert.Equal(t, 0, h.store.UndoLastDelete())
	assert.Equal(t, 1, h.store.Len())
}

func TestPreferencesPersistAndRender(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "apple")
	h.add(t, "banana")
	h.store.ToggleStatus(a.ID)

	h.store.SetFilter(task.FilterDone)
	h.store.SetSearch("  APP ")
	h.store.SetSort(task.SortTitle)

	want := task.Prefs{Filter: task.FilterDone, Search: "APP", Sort: task.SortTitle}
	assert.Equal(t, want, h.saved.last().Prefs)
	st := h.renders[len(h.renders)-1]
	assert.Equal(t, want, st.Prefs)
	assert.Equal(t, []string{a.ID}, idsOf(st.Visible))

	h.store.SetFilter(task.Filter("bogus"))
	assert.Equal(t, task.FilterAll, h.store.State().Prefs.Filter)
}

func TestEveryOperationPersistsAndRenders(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	ops := []func(){
		func() { h.store.ToggleStatus(a.ID) },
		func() { _ = h.store.EditTitle(a.ID, "") },
		func() { _ = h.store.SetDue(a.ID, "bad") },
		func() { h.store.CyclePriority(a.ID) },
		func() { h.store.ToggleSelected(a.ID) },
		func() { h.store.BulkComplete() },
		func() { h.store.ClearDone() },
		func() { h.store.UndoLastDelete() },
		func() { h.store.BulkDelete() },
		func() { h.store.Delete("missing") },
		func() { h.store.SetFilter(task.FilterAll) },
		func() { h.store.SetSearch("") },
		func() { h.store.SetSort(task.SortCreated) },
		func() { h.store.Refresh() },
	}
	for i, op := range ops {
		saves, renders := len(h.saved.saves), len(h.renders)
		op()
		assert.Equal(t, saves+1, len(h.saved.saves), "op %d", i)
		assert.Equal(t, renders+1, len(h.renders), "op %d", i)
		assert.Equal(t, h.store.Snapshot(), h.saved.last(), "op %d", i)
	}
}

func TestStateIsACopy(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a")
	st := h.store.State()
	st.Tasks[0].Title = "mutated"
	st.Visible[0].Title = "mutated"
	got, _ := h.store.Get(a.ID)
	assert.Equal(t, "a", got.Title)
}

func idsOf(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
