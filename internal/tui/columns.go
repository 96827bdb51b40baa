package tui

import (
	"fmt"
	"strings"

	"kanban-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

const (
	minColumnWidth = 18
	maxColumnWidth = 40
	columnGap      = 1
)

// columnWidth splits the terminal width evenly between n lists.
func columnWidth(total, n int) int {
	if n <= 0 {
		return maxColumnWidth
	}
	w := (total - columnGap*(n-1)) / n
	if w < minColumnWidth {
		return minColumnWidth
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}

func checklistProgress(c model.Card) (done, total int) {
	for _, it := range c.Checklist {
		if it.Completed {
			done++
		}
	}
	return done, len(c.Checklist)
}

// cardMeta is the one-line summary under a card title.
func cardMeta(c model.Card) string {
	parts := []string{priorityGlyph(c.Priority) + " " + string(c.Priority)}
	if c.Label != nil {
		parts = append(parts, styleLabel(*c.Label).Render("● "+string(*c.Label)))
	}
	if n := len(c.Members); n > 0 {
		parts = append(parts, fmt.Sprintf("@%d", n))
	}
	if done, total := checklistProgress(c); total > 0 {
		parts = append(parts, fmt.Sprintf("☑ %d/%d", done, total))
	}
	return strings.Join(parts, " ")
}

func renderCardBox(c model.Card, width int, selected bool) string {
	inner := width - 4 // border + padding
	if inner < 4 {
		inner = 4
	}
	title := xansi.Truncate(c.Title, inner, "…")
	meta := xansi.Truncate(cardMeta(c), inner, "…")
	if selected {
		title = lipgloss.NewStyle().Bold(true).Render(title)
	}
	body := title + "\n" + lipgloss.NewStyle().Foreground(colorCardMetaFg).Render(meta)
	return styleCard(selected).Width(width - 2).Render(body)
}

// renderColumns draws one column per list. selCol/selRow mark the cursor; selRow is
// ignored for empty lists.
func renderColumns(b model.Board, width int, selCol, selRow int) string {
	if len(b.Lists) == 0 {
		return styleMuted().Render("No lists yet. Press A to add one.")
	}
	w := columnWidth(width, len(b.Lists))

	cols := make([]string, 0, len(b.Lists)*2)
	for i, l := range b.Lists {
		header := xansi.Truncate(fmt.Sprintf("%s (%d)", l.Title, len(l.Cards)), w-2, "…")
		hs := styleColumnHeader()
		if i == selCol {
			hs = hs.Foreground(colorAccent)
		}
		rows := []string{hs.Render(header)}
		if len(l.Cards) == 0 {
			rows = append(rows, styleMuted().Padding(0, 1).Render("(empty)"))
		}
		for j, c := range l.Cards {
			rows = append(rows, renderCardBox(c, w, i == selCol && j == selRow))
		}
		col := lipgloss.NewStyle().Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
		if i > 0 {
			cols = append(cols, strings.Repeat(" ", columnGap))
		}
		cols = append(cols, col)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}
