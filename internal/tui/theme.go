package tui

import (
	"os"
	"strconv"
	"strings"

	"kanban-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The board must stay readable on light and dark terminals, so colors are adaptive and
// faint styling is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted          lipgloss.TerminalColor = ac("240", "243")
	colorSurfaceFg      lipgloss.TerminalColor = ac("235", "252")
	colorAccent         lipgloss.TerminalColor = ac("27", "62")
	colorSelectedBorder lipgloss.TerminalColor = ac("232", "255")
	colorCardBorder     lipgloss.TerminalColor = ac("250", "243")
	colorCardMetaFg     lipgloss.TerminalColor = ac("238", "250")
	colorFlashErrorFg   lipgloss.TerminalColor = ac("160", "203")
)

var labelColors = map[model.Label]lipgloss.TerminalColor{
	model.LabelRed:    ac("160", "203"),
	model.LabelGreen:  ac("28", "78"),
	model.LabelYellow: ac("136", "221"),
	model.LabelBlue:   ac("25", "75"),
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleColumnHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Padding(0, 1)
}

func styleCard(selected bool) lipgloss.Style {
	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func styleFlash() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorFlashErrorFg)
}

func styleLabel(l model.Label) lipgloss.Style {
	c, ok := labelColors[l]
	if !ok {
		return styleMuted()
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func priorityGlyph(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "▲"
	case model.PriorityLow:
		return "▽"
	default:
		return "◆"
	}
}

// applyColorProfilePreference sets Lip Gloss's color profile for the board.
//
// termenv.EnvColorProfile honors CLICOLOR, which can disable colors in a TUI; only
// NO_COLOR is respected here.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color") && profile == termenv.ANSI:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference picks light or dark colors from KANBAN_TUI_THEME, then the
// COLORFGBG heuristic ("fg;bg"), leaving Lip Gloss's own detection as the fallback.
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KANBAN_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}

func markdownStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
