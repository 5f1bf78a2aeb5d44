// Package tui implements the interactive note browser: a Bubble Tea table
// with enter-to-show and in-place delete against the store.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halvard/notedown/internal/db"
	"github.com/halvard/notedown/pkg/api"
)

// Browse opens the table over notes and blocks until the user quits. A
// non-nil return is the note selected with enter, loaded fresh from the
// store so the body is complete.
func Browse(ctx context.Context, store db.Store, notes []api.Note, headers bool) (*api.Note, error) {
	m := model{
		ctx:     ctx,
		store:   store,
		notes:   notes,
		showIdx: -1,
		headers: headers,
	}
	m.initTable()

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(model)
	if !ok || fm.showIdx < 0 || fm.showIdx >= len(fm.notes) {
		return nil, nil
	}
	sel, err := store.Get(ctx, fm.notes[fm.showIdx].ID)
	if err != nil {
		// List rows omit the body; fall back to the stale row on error.
		sel = fm.notes[fm.showIdx]
	}
	return &sel, nil
}

type model struct {
	ctx     context.Context
	store   db.Store
	table   table.Model
	notes   []api.Note
	showIdx int
	headers bool
	width   int
	height  int
	status  string
}

func (m *model) initTable() {
	m.table = table.New(
		table.WithColumns(m.columnsFor(6, 40, 20, 16)),
		table.WithFocused(true),
	)
	m.updateRows()
	m.applyStyles()
}

func (m *model) columnsFor(idW, titleW, tagsW, updatedW int) []table.Column {
	return []table.Column{
		{Title: "ID", Width: idW},
		{Title: "Title", Width: titleW},
		{Title: "Tags", Width: tagsW},
		{Title: "Updated", Width: updatedW},
	}
}

func (m *model) updateRows() {
	rows := make([]table.Row, 0, len(m.notes))
	for _, n := range m.notes {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", n.ID),
			n.Title,
			joinTags(n.Tags),
			n.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	m.table.SetRows(rows)
}

func (m *model) applyStyles() {
	s := table.DefaultStyles()
	if m.headers {
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
	} else {
		s.Header = s.Header.Height(0)
	}
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	m.table.SetStyles(s)
}

func (m *model) applyLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.table.SetHeight(max(6, m.height-2))
	m.table.SetWidth(m.width)

	avail := m.width - 4
	if avail < 40 {
		return
	}
	idW, updatedW := 6, 16
	rem := avail - idW - updatedW
	tagsW := rem / 3
	titleW := rem - tagsW
	m.table.SetColumns(m.columnsFor(idW, max(titleW, 8), max(tagsW, 8), updatedW))
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case deleteResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("delete failed: %v", msg.err)
			return m, nil
		}
		if msg.idx >= 0 && msg.idx < len(m.notes) {
			m.notes = append(m.notes[:msg.idx], m.notes[msg.idx+1:]...)
		}
		m.updateRows()
		cur := msg.idx
		if cur >= len(m.notes) {
			cur = len(m.notes) - 1
		}
		if cur < 0 {
			cur = 0
		}
		m.table.SetCursor(cur)
		m.status = fmt.Sprintf("deleted note %d (%s)", msg.id, msg.dur.Round(time.Millisecond))
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.notes) {
				m.showIdx = idx
			}
			return m, tea.Quit
		case "d":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.notes) {
				sel := m.notes[idx]
				m.status = fmt.Sprintf("deleting note %d…", sel.ID)
				return m, deleteCmd(m.ctx, m.store, sel.ID, idx)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if len(m.notes) == 0 {
		return "(no notes)\n"
	}
	return m.table.View() + "\n" + m.renderFooter() + "\n"
}

func (m model) renderFooter() string {
	left := "↑/↓ navigate • enter=show • d=delete • q=quit"
	right := fmt.Sprintf("%d notes ", len(m.notes))
	if m.status != "" {
		right = m.status + " • " + right
	}
	space := m.table.Width() - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		space = 1
	}
	return left + strings.Repeat(" ", space) + right
}

// deleteResultMsg conveys the outcome of a delete back to Update.
type deleteResultMsg struct {
	idx int
	id  int64
	err error
	dur time.Duration
}

func deleteCmd(ctx context.Context, store db.Store, id int64, idx int) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := store.Delete(ctx, id)
		return deleteResultMsg{idx: idx, id: id, err: err, dur: time.Since(start)}
	}
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
