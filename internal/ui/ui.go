package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"minitodo/internal/config"
	"minitodo/internal/render"
	"minitodo/internal/store"
	"minitodo/internal/task"
	"minitodo/internal/transfer"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeDue
	modeSearch
	modeImport
	modeConfirmReset
	modeConfirmDelete
)

// screen is shared by every copy of the model; the store's render hook
// rebuilds it after each operation.
type screen struct {
	frame render.Frame
	now   func() time.Time
}

type Model struct {
	store     *store.Store
	cfg       config.Config
	logger    *log.Logger
	screen    *screen
	styles    render.Styles
	cursor    int
	mode      mode
	input     textinput.Model
	status    string
	targetID  string
	add       *addForm
	firstLoad bool
	detail    bool
}

type Option func(*Model)

func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.screen.now = now }
}

func WithStyles(s render.Styles) Option {
	return func(m *Model) { m.styles = s }
}

func WithFirstLaunch(first bool) Option {
	return func(m *Model) { m.firstLoad = first }
}

func New(st *store.Store, cfg config.Config, logger *log.Logger, opts ...Option) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store:  st,
		cfg:    cfg,
		logger: logger,
		screen: &screen{now: time.Now},
		styles: render.DefaultStyles(),
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add, '%s' to toggle, '%s' to delete.", cfg.Keys.Add, keyLabel(cfg.Keys.Toggle), cfg.Keys.Delete),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.firstLoad {
		m.status = "Welcome! A default config was written. " + m.status
	}

	sc := m.screen
	st.SetRenderer(func(s store.State) {
		sc.frame = render.Build(s, sc.now())
	})
	st.Refresh()
	return m
}

func Run(st *store.Store, cfg config.Config, logger *log.Logger, firstLaunch bool) error {
	program := tea.NewProgram(New(st, cfg, logger, WithFirstLaunch(firstLaunch)))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeAdd:
		return m.updateAddMode(key, msg)
	case modeEdit, modeDue, modeImport:
		return m.updatePromptMode(key, msg)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	case modeConfirmReset, modeConfirmDelete:
		return m.updateConfirm(key)
	}
	return m.updateListMode(key)
}

func (m Model) frame() render.Frame {
	return m.screen.frame
}

func (m Model) currentID() (string, bool) {
	return m.frame().IDAt(clampCursor(m.cursor, len(m.frame().Rows)))
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	rows := len(m.frame().Rows)
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if rows == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, rows)
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, rows)
		}
	case k.Add:
		m.add = newAddForm()
		m.mode = modeAdd
		m.loadAddField()
		m.status = m.add.prompt()
		cmd := m.input.Focus()
		return m, cmd
	case k.Detail:
		id, ok := m.currentID()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		t, _ := m.store.Get(id)
		m.detail = !m.detail
		m.status = detailLine(t)
	case k.Toggle:
		if id, ok := m.currentID(); ok {
			m.store.ToggleStatus(id)
			m.status = "Toggled task"
		}
	case k.Edit:
		id, ok := m.currentID()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		t, _ := m.store.Get(id)
		return m.startPrompt(modeEdit, id, "Title", t.Title, "Edit title: Enter to save, Esc to cancel")
	case k.Due:
		id, ok := m.currentID()
		if !ok {
			return m, nil
		}
		t, _ := m.store.Get(id)
		return m.startPrompt(modeDue, id, "YYYY-MM-DD", t.Due, "Due date (YYYY-MM-DD), empty to clear")
	case k.Priority:
		if id, ok := m.currentID(); ok {
			m.store.CyclePriority(id)
			t, _ := m.store.Get(id)
			m.status = "Priority: " + string(t.Priority)
		}
	case k.Select:
		if id, ok := m.currentID(); ok {
			m.store.ToggleSelected(id)
		}
	case k.Delete:
		id, ok := m.currentID()
		if !ok {
			return m, nil
		}
		if m.store.UndoEnabled() {
			m.store.Delete(id)
			m.status = fmt.Sprintf("Deleted task, '%s' to undo", m.cfg.Keys.Undo)
		} else {
			t, _ := m.store.Get(id)
			m.targetID = id
			m.mode = modeConfirmDelete
			m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
		}
	case k.BulkComplete:
		m.store.BulkComplete()
		m.status = "Completed selected tasks"
	case k.BulkDelete:
		m.store.BulkDelete()
		m.status = "Deleted selected tasks"
	case k.ClearDone:
		m.store.ClearDone()
		m.status = "Cleared completed tasks"
	case k.Reset:
		m.mode = modeConfirmReset
		m.status = store.ResetPrompt + " y/n"
		return m, nil
	case k.Undo:
		if n := m.store.UndoLastDelete(); n > 0 {
			m.status = fmt.Sprintf("Restored %d task(s)", n)
		} else {
			m.status = "Nothing to undo"
		}
	case k.Search, "ctrl+f":
		m.mode = modeSearch
		m.input.Placeholder = "Search"
		m.input.SetValue(m.store.State().Prefs.Search)
		m.input.CursorEnd()
		m.status = "Search: type to filter, Enter/Esc to leave"
		cmd := m.input.Focus()
		return m, cmd
	case k.Filter:
		f := nextFilter(m.store.State().Prefs.Filter)
		m.store.SetFilter(f)
		m.status = "Filter: " + string(f)
	case k.Sort:
		s := nextSort(m.store.State().Prefs.Sort)
		m.store.SetSort(s)
		m.status = "Sort: " + string(s)
	case k.Export:
		m.status = m.export()
	case k.Import:
		return m.startPrompt(modeImport, "", "File", m.cfg.ExportPath, "Import from file: Enter to load, Esc to cancel")
	}
	m.cursor = clampCursor(m.cursor, len(m.frame().Rows))
	return m, nil
}

func (m Model) startPrompt(md mode, id, placeholder, value, status string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.targetID = id
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.status = status
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) leaveInput(status string) Model {
	m.mode = modeList
	m.targetID = ""
	m.add = nil
	m.input.SetValue("")
	m.input.Blur()
	m.status = status
	m.cursor = clampCursor(m.cursor, len(m.frame().Rows))
	return m
}

func (m Model) updatePromptMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		return m.leaveInput("Cancelled"), nil
	case m.cfg.Keys.Confirm, "enter":
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeEdit:
			if err := m.store.EditTitle(m.targetID, value); err != nil {
				return m.leaveInput("Title kept: " + err.Error()), nil
			}
			return m.leaveInput("Title updated"), nil
		case modeDue:
			err := m.store.SetDue(m.targetID, value)
			if errors.Is(err, store.ErrInvalidDue) {
				return m.leaveInput("Invalid format: " + err.Error()), nil
			}
			if err != nil {
				return m.leaveInput(err.Error()), nil
			}
			return m.leaveInput("Due date saved"), nil
		case modeImport:
			return m.leaveInput(m.importFrom(value)), nil
		}
		return m.leaveInput(""), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc", m.cfg.Keys.Confirm, "enter":
		search := m.store.State().Prefs.Search
		if search == "" {
			return m.leaveInput("Search cleared"), nil
		}
		return m.leaveInput(fmt.Sprintf("Searching %q", search)), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.store.SetSearch(m.input.Value())
		m.cursor = clampCursor(m.cursor, len(m.frame().Rows))
		return m, cmd
	}
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.mode == modeConfirmReset {
			m.store.ResetAll(store.ConfirmFunc(func(string) bool { return true }))
			m.status = "List reset"
			if m.store.UndoEnabled() {
				m.status += fmt.Sprintf(", '%s' to undo", m.cfg.Keys.Undo)
			}
		} else {
			m.store.Delete(m.targetID)
			m.status = "Deleted task"
		}
	case "n", "N", "esc":
		m.status = "Cancelled"
	default:
		return m, nil
	}
	m.mode = modeList
	m.targetID = ""
	m.cursor = clampCursor(m.cursor, len(m.frame().Rows))
	return m, nil
}

func (m Model) export() string {
	path := m.cfg.ExportPath
	if path == "" {
		path = transfer.DefaultFileName
	}
	if err := transfer.ExportFile(path, m.store.Snapshot()); err != nil {
		m.logger.Error("export failed", "path", path, "err", err)
		return "Export failed: " + err.Error()
	}
	return "Exported to " + path
}

func (m Model) importFrom(path string) string {
	snap, err := transfer.ImportFile(path, m.screen.now())
	if err != nil {
		m.logger.Warn("import failed", "path", path, "err", err)
		return "Could not import: " + err.Error()
	}
	m.store.Replace(snap)
	return fmt.Sprintf("Imported %d task(s)", len(snap.Tasks))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("Todo"))
	b.WriteString("\n\n")
	cursor := -1
	if m.mode == modeList || m.mode == modeConfirmDelete {
		cursor = m.cursor
	}
	b.WriteString(m.frame().Render(m.styles, cursor))

	switch m.mode {
	case modeAdd:
		b.WriteString("\n")
		b.WriteString(m.add.render())
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeEdit, modeDue, modeImport, modeSearch:
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeList:
		if m.detail {
			b.WriteString("\n")
			b.WriteString(m.renderDetailPanel())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s details • %s toggle • %s edit • %s due • %s priority • %s select • %s/%s bulk done/delete • %s clear done • %s delete • %s undo • %s search • %s filter • %s sort • %s export • %s import • %s reset • %s quit",
		k.Up, k.Down, k.Add, k.Detail, keyLabel(k.Toggle), k.Edit, k.Due, k.Priority, k.Select, k.BulkComplete, k.BulkDelete,
		k.ClearDone, k.Delete, k.Undo, k.Search, k.Filter, k.Sort, k.Export, k.Import, k.Reset, k.Quit)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func nextFilter(f task.Filter) task.Filter {
	switch f {
	case task.FilterAll:
		return task.FilterActive
	case task.FilterActive:
		return task.FilterDone
	default:
		return task.FilterAll
	}
}

func nextSort(s task.SortKey) task.SortKey {
	keys := task.SortKeys()
	for i, k := range keys {
		if k == s {
			return keys[wrapIndex(i+1, len(keys))]
		}
	}
	return keys[0]
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
