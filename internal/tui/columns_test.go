package tui

import (
	"strings"
	"testing"

	"kanban-cli/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestColumnWidth(t *testing.T) {
	if got := columnWidth(100, 2); got != maxColumnWidth {
		t.Fatalf("columnWidth(100,2) = %d", got)
	}
	if got := columnWidth(40, 5); got != minColumnWidth {
		t.Fatalf("columnWidth(40,5) = %d", got)
	}
	if got := columnWidth(62, 3); got != 20 {
		t.Fatalf("columnWidth(62,3) = %d", got)
	}
}

func TestRenderCardBoxTruncatesTitle(t *testing.T) {
	c := model.NewCard("c1", strings.Repeat("long title ", 10), "")
	out := renderCardBox(c, 20, false)
	for _, line := range strings.Split(out, "\n") {
		if w := xansi.StringWidth(line); w > 20 {
			t.Fatalf("line wider than column (%d): %q", w, line)
		}
	}
	if !strings.Contains(out, "…") {
		t.Fatalf("expected ellipsis in truncated title:\n%s", out)
	}
}

func TestCardMeta(t *testing.T) {
	green := model.LabelGreen
	c := model.NewCard("c1", "t", "")
	c.Priority = model.PriorityHigh
	c.Label = &green
	c.Members = []string{"a", "b"}
	c.Checklist = []model.ChecklistItem{{Text: "x", Completed: true}, {Text: "y"}}

	got := xansi.Strip(cardMeta(c))
	for _, want := range []string{"High", "Green", "@2", "1/2"} {
		if !strings.Contains(got, want) {
			t.Fatalf("meta %q missing %q", got, want)
		}
	}
}

func TestRenderColumnsEmptyBoard(t *testing.T) {
	out := renderColumns(model.Board{}, 80, 0, 0)
	if !strings.Contains(out, "No lists yet") {
		t.Fatalf("unexpected empty render: %q", out)
	}
}
