// Package browser renders a grid controller in the terminal. It is the
// grid-view collaborator: a windowed, column-based view over the row
// store's visible rows. All structural mutation goes through the
// controller; the model only tracks cursor, scroll, and selection state.
package browser

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"filegrid/pkg/grid"
	"filegrid/pkg/tree"
	"filegrid/pkg/upload"
)

// Model is the bubbletea model for the file grid.
type Model struct {
	ctrl *grid.Controller

	keys   KeyMap
	help   help.Model
	width  int
	height int

	cursor       int
	scrollOffset int

	selected map[int64]struct{} // item ids toggled with space
	grabbed  []int64            // ids cut and awaiting a drop target
	grabSet  map[int64]struct{} // for rendering cut rows dimmed

	statusMessage string
	lastKey       string // for detecting the 'gg' sequence
}

// New creates a grid view over ctrl.
func New(ctrl *grid.Controller) Model {
	m := Model{
		ctrl:     ctrl,
		keys:     keys,
		help:     help.New(),
		selected: make(map[int64]struct{}),
		grabSet:  make(map[int64]struct{}),
	}
	if url := ctrl.UploadURL(nil); url != "" {
		m.statusMessage = fmt.Sprintf("Accepting uploads at %s", url)
	}
	return m
}

// Init starts the upload event pump when uploads are enabled.
func (m Model) Init() tea.Cmd {
	if up := m.ctrl.Uploader(); up != nil {
		return waitForUploadCmd(up)
	}
	return nil
}

// uploadEventMsg carries one upload lifecycle event into the update loop,
// so controller re-entry happens on the goroutine that owns the grid.
type uploadEventMsg struct {
	ev upload.Event
}

func waitForUploadCmd(srv *upload.Server) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-srv.Events()
		if !ok {
			return nil
		}
		return uploadEventMsg{ev: ev}
	}
}

// itemAt returns the item on the given visible row, or nil.
func (m Model) itemAt(row int) *tree.Item {
	r := m.ctrl.Store().VisibleAt(row)
	if r == nil {
		return nil
	}
	return r.(*tree.Item)
}

func (m Model) rowCount() int {
	return m.ctrl.Store().VisibleLen()
}

func (m Model) viewportHeight() int {
	// header, column titles, status line, help footer
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+m.viewportHeight() {
		m.scrollOffset = m.cursor - m.viewportHeight() + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}
