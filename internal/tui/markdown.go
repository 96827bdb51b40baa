package tui

import (
	"fmt"
	"strings"
	"sync"

	"kanban-cli/internal/model"

	"github.com/charmbracelet/glamour"
)

var (
	mdRendererMu sync.Mutex
	// Renderers are cached per style and wrap width. WithAutoStyle is avoided because its
	// terminal queries can block.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	style := markdownStyle()
	key := fmt.Sprintf("%s:%d", style, width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// cardMarkdown describes a card as a markdown document.
func cardMarkdown(c model.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Title)

	label := "none"
	if c.Label != nil {
		label = string(*c.Label)
	}
	members := "none"
	if len(c.Members) > 0 {
		members = strings.Join(c.Members, ", ")
	}
	fmt.Fprintf(&b, "**Priority:** %s · **Label:** %s · **Role:** %s\n\n", c.Priority, label, c.Role)
	fmt.Fprintf(&b, "**Members:** %s\n\n", members)

	if d := strings.TrimSpace(c.Description); d != "" {
		b.WriteString(d)
		b.WriteString("\n\n")
	}
	if len(c.Checklist) > 0 {
		done := 0
		for _, it := range c.Checklist {
			if it.Completed {
				done++
			}
		}
		fmt.Fprintf(&b, "## Checklist (%d/%d)\n\n", done, len(c.Checklist))
		for _, it := range c.Checklist {
			mark := " "
			if it.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, it.Text)
		}
	}
	return b.String()
}

// RenderCard renders a card for terminal output (`cards show --render`).
func RenderCard(c model.Card, width int) string {
	out := renderMarkdown(cardMarkdown(c), width)
	if out == "" {
		return ""
	}
	return out + "\n"
}
