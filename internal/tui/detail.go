package tui

import (
	"fmt"
	"strings"

	"kanban-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ed == nil {
		m.mode = modeBoard
		return m, nil
	}
	_, total := m.ed.Progress()
	switch msg.String() {
	case "esc", "q":
		m.closeDetail()
	case "D":
		m.discardDetail()
	case "up", "k":
		m.itemIdx = clamp(m.itemIdx-1, 0, max(total-1, 0))
	case "down", "j":
		m.itemIdx = clamp(m.itemIdx+1, 0, max(total-1, 0))
	case " ", "space":
		if err := m.ed.ToggleItem(m.itemIdx); err != nil {
			m.flash = err.Error()
		}
	case "x":
		if err := m.ed.RemoveItem(m.itemIdx); err != nil {
			m.flash = err.Error()
		} else {
			m.itemIdx = clamp(m.itemIdx, 0, max(total-2, 0))
		}
	case "c":
		return m.openPrompt(promptChecklistItem)
	case "p":
		m.cyclePriority()
	}
	return m, nil
}

func (m *appModel) cyclePriority() {
	cur := m.ed.Card().Priority
	next := model.Priorities[0]
	for i, p := range model.Priorities {
		if p == cur {
			next = model.Priorities[(i+1)%len(model.Priorities)]
		}
	}
	if err := m.ed.SetPriority(string(next)); err != nil {
		m.flash = err.Error()
	}
}

// closeDetail commits a dirty session through the store; clean sessions are cancelled.
func (m *appModel) closeDetail() {
	ed := m.ed
	m.ed = nil
	m.mode = modeBoard
	if !ed.Dirty() {
		ed.Cancel()
		return
	}
	c, err := ed.Commit()
	if err != nil {
		m.flash = err.Error()
		return
	}
	m.apply(m.store.ReplaceCard(m.ctx, c))
}

// discardDetail drops the staged edits and closes the pane without touching the board.
func (m *appModel) discardDetail() {
	dirty := m.ed.Dirty()
	m.ed.Cancel()
	m.ed = nil
	m.mode = modeBoard
	if dirty {
		m.flash = "changes discarded"
	}
}

func (m appModel) viewDetail() string {
	if m.ed == nil {
		return ""
	}
	c := m.ed.Card()
	width := min(max(m.width-4, 20), 100)

	title := lipgloss.NewStyle().Bold(true).Render(xansi.Truncate(c.Title, width, "…"))
	meta := styleMuted().Render(cardMeta(c) + " · " + string(c.Role))
	if len(c.Members) > 0 {
		meta += styleMuted().Render(" · " + strings.Join(c.Members, ", "))
	}

	parts := []string{title, meta, ""}
	if desc := renderMarkdown(c.Description, width); desc != "" {
		parts = append(parts, desc, "")
	}

	done, total := checklistProgress(c)
	parts = append(parts, lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Checklist %d/%d", done, total)))
	if total == 0 {
		parts = append(parts, styleMuted().Render("  (no items; press c to add)"))
	}
	for i, it := range c.Checklist {
		mark := "[ ]"
		if it.Completed {
			mark = "[x]"
		}
		cursor := "  "
		if i == m.itemIdx {
			cursor = "> "
		}
		parts = append(parts, xansi.Truncate(cursor+mark+" "+it.Text, width, "…"))
	}
	if m.ed.Dirty() {
		parts = append(parts, "", styleMuted().Render("(unsaved changes)"))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
