package browser

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"filegrid/pkg/tree"
	"filegrid/pkg/upload"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case uploadEventMsg:
		m.ctrl.HandleUpload(msg.ev)
		switch msg.ev.Stage {
		case upload.StageAdded:
			m.statusMessage = fmt.Sprintf("Uploading %s...", msg.ev.Name)
		case upload.StageComplete:
			m.statusMessage = fmt.Sprintf("Uploaded %s", msg.ev.Name)
		case upload.StageError:
			m.statusMessage = fmt.Sprintf("Upload failed: %v", msg.ev.Err)
		}
		m.clampCursor()
		return m, waitForUploadCmd(m.ctrl.Uploader())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// 'gg' to jump to the top, vim style
	if msg.String() == "g" && m.lastKey != "g" {
		m.lastKey = "g"
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.lastKey = ""
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.viewportHeight()
		m.clampCursor()

	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.viewportHeight()
		m.clampCursor()

	case key.Matches(msg, m.keys.GoToTop):
		if m.lastKey == "g" {
			m.cursor = 0
			m.clampCursor()
			m.lastKey = ""
			return m, nil
		}

	case key.Matches(msg, m.keys.GoToBottom):
		m.cursor = m.rowCount() - 1
		m.clampCursor()

	case key.Matches(msg, m.keys.Toggle):
		if it := m.itemAt(m.cursor); it != nil {
			if it.IsFolder() {
				if err := m.ctrl.ToggleCollapse(it.ID); err != nil {
					m.statusMessage = err.Error()
				}
			}
			m.ctrl.Click(it)
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.Select):
		if it := m.itemAt(m.cursor); it != nil {
			if _, ok := m.selected[it.ID]; ok {
				delete(m.selected, it.ID)
			} else {
				m.selected[it.ID] = struct{}{}
			}
		}

	case key.Matches(msg, m.keys.Grab):
		m.grabSelection()

	case key.Matches(msg, m.keys.Drop):
		m.dropGrabbed()

	case key.Matches(msg, m.keys.Delete):
		m.deleteSelection()
	}

	m.lastKey = msg.String()
	return m, nil
}

// grabSelection cuts the selected items (or the cursor row) so the next
// drop re-parents them.
func (m *Model) grabSelection() {
	ids := m.selectionOrCursor()
	if len(ids) == 0 {
		return
	}
	m.grabbed = ids
	m.grabSet = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m.grabSet[id] = struct{}{}
	}
	m.statusMessage = fmt.Sprintf("Grabbed %d item(s); move to a folder and press p", len(ids))
}

// dropGrabbed moves the grabbed items into the folder under the cursor.
func (m *Model) dropGrabbed() {
	if len(m.grabbed) == 0 {
		m.statusMessage = "Nothing grabbed"
		return
	}
	target := m.itemAt(m.cursor)
	if target == nil || !target.IsFolder() {
		m.statusMessage = "Drop target must be a folder"
		return
	}
	if err := m.ctrl.MoveItems(m.grabbed, target.ID); err != nil {
		m.statusMessage = err.Error()
		return
	}
	m.statusMessage = fmt.Sprintf("Moved %d item(s) into %s", len(m.grabbed), target.Name)
	m.grabbed = nil
	m.grabSet = make(map[int64]struct{})
	m.selected = make(map[int64]struct{})
	m.clampCursor()
}

func (m *Model) deleteSelection() {
	ids := m.selectionOrCursor()
	if len(ids) == 0 {
		return
	}
	removed := 0
	for _, id := range ids {
		if err := m.ctrl.RemoveItem(id); err == nil {
			removed++
		}
	}
	m.selected = make(map[int64]struct{})
	m.statusMessage = fmt.Sprintf("Removed %d item(s)", removed)
	m.clampCursor()
}

// selectionOrCursor returns the selected ids in visible-row order, falling
// back to the cursor row when nothing is selected.
func (m *Model) selectionOrCursor() []int64 {
	var ids []int64
	for _, row := range m.ctrl.Store().VisibleRows() {
		it := row.(*tree.Item)
		if _, ok := m.selected[it.ID]; ok {
			ids = append(ids, it.ID)
		}
	}
	if len(ids) == 0 {
		if it := m.itemAt(m.cursor); it != nil {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
