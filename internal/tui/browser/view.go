package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"filegrid/pkg/tree"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	titleRowStyle = lipgloss.NewStyle().Faint(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	grabbedStyle  = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	scrollStyle   = lipgloss.NewStyle().Faint(true)
)

func (m Model) View() string {
	if m.help.ShowAll {
		return "\n" + m.help.View(m.keys)
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("File Grid"))
	b.WriteString("\n\n")
	b.WriteString(m.renderColumnTitles())
	b.WriteString("\n")

	rows := m.ctrl.Store().VisibleRows()
	start := m.scrollOffset
	end := start + m.viewportHeight()
	if end > len(rows) {
		end = len(rows)
	}

	for i := start; i < end; i++ {
		it := rows[i].(*tree.Item)
		b.WriteString(m.renderRow(it, i == m.cursor))
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(scrollStyle.Render("  (empty)"))
		b.WriteString("\n")
	}

	if len(rows) > m.viewportHeight() {
		b.WriteString(scrollStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(rows))))
		b.WriteString("\n")
	}

	if m.statusMessage != "" {
		b.WriteString(statusStyle.Render(m.statusMessage))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return "\n" + b.String()
}

func (m Model) renderColumnTitles() string {
	var cells []string
	for _, col := range m.ctrl.Columns() {
		title := col.Title
		if col.Width > 0 {
			title = runewidth.FillRight(runewidth.Truncate(title, col.Width, "…"), col.Width)
		}
		cells = append(cells, title)
	}
	return "   " + titleRowStyle.Render(strings.Join(cells, "  "))
}

func (m Model) renderRow(it *tree.Item, underCursor bool) string {
	rc := m.ctrl.RenderContext()

	var cells []string
	for _, col := range m.ctrl.Columns() {
		render := col.FileRender
		if it.IsFolder() {
			render = col.FolderRender
		}
		var cell string
		if render != nil {
			cell = render(it, rc)
		}
		if col.Width > 0 {
			cell = runewidth.FillRight(runewidth.Truncate(cell, col.Width, "…"), col.Width)
		}
		cells = append(cells, cell)
	}
	line := strings.Join(cells, "  ")

	cursor := "  "
	if underCursor {
		cursor = cursorStyle.Render("▶ ")
	}

	marker := " "
	if _, ok := m.selected[it.ID]; ok {
		marker = selectedStyle.Render("•")
	}

	style := lipgloss.NewStyle()
	if _, ok := m.grabSet[it.ID]; ok {
		style = grabbedStyle
	} else if underCursor {
		style = cursorStyle
	}

	return cursor + marker + style.Render(line)
}
