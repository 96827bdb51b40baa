package tui

import (
	"context"
	"errors"
	"io"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/editor"
	"kanban-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

type Options struct {
	// Changes, when set, signals that storage changed outside this process.
	Changes <-chan struct{}
	Logger  *log.Logger
}

// Run starts the interactive board on top of s.
func Run(ctx context.Context, s *board.Store, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(ctx, s, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type viewMode int

const (
	modeBoard viewMode = iota
	modePrompt
	modeDetail
)

type promptKind int

const (
	promptAddCard promptKind = iota
	promptAddList
	promptMember
	promptChecklistItem
)

func (k promptKind) label() string {
	switch k {
	case promptAddList:
		return "New list: "
	case promptMember:
		return "Add member to every card: "
	case promptChecklistItem:
		return "New checklist item: "
	default:
		return "New card: "
	}
}

type boardChangedMsg struct{}

type appModel struct {
	ctx     context.Context
	store   *board.Store
	logger  *log.Logger
	changes <-chan struct{}

	board  model.Board
	col    int
	row    int
	width  int
	height int

	mode     viewMode
	prompt   promptKind
	returnTo viewMode
	input    textinput.Model

	// ed is the open detail session; nil outside modeDetail.
	ed      *editor.Editor
	itemIdx int

	flash string
}

func newAppModel(ctx context.Context, s *board.Store, opts Options) appModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	in := textinput.New()
	in.CharLimit = 200
	return appModel{
		ctx:     ctx,
		store:   s,
		logger:  logger,
		changes: opts.Changes,
		board:   s.Snapshot(),
		width:   100,
		height:  30,
		input:   in,
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return boardChangedMsg{}
	}
}

func (m appModel) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case boardChangedMsg:
		m.reload()
		return m, waitForChange(m.changes)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

func (m *appModel) reload() {
	b, err := m.store.Reload(m.ctx)
	if err != nil {
		m.logger.Warn("reload failed", "err", err)
		m.flash = "reload failed: " + err.Error()
		return
	}
	m.board = b
	m.clampCursor()
}

// apply records the outcome of a store operation.
func (m *appModel) apply(res board.Result, err error) {
	m.board = res.Board
	m.flash = ""
	switch {
	case err != nil:
		m.flash = err.Error()
	case res.Rejected != nil:
		m.flash = res.Rejected.Error()
	case res.Changed:
		if perr := m.store.PersistErr(); perr != nil {
			m.flash = "not saved: " + perr.Error()
		}
	}
	m.clampCursor()
}

func (m *appModel) clampCursor() {
	if len(m.board.Lists) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = clamp(m.col, 0, len(m.board.Lists)-1)
	m.row = clamp(m.row, 0, max(len(m.board.Lists[m.col].Cards)-1, 0))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// selected returns the card under the cursor.
func (m appModel) selected() (model.List, model.Card, bool) {
	if m.col >= len(m.board.Lists) {
		return model.List{}, model.Card{}, false
	}
	l := m.board.Lists[m.col]
	if m.row >= len(l.Cards) {
		return l, model.Card{}, false
	}
	return l, l.Cards[m.row], true
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.col--
		m.clampCursor()
	case "right", "l":
		m.col++
		m.clampCursor()
	case "up", "k":
		m.row--
		m.clampCursor()
	case "down", "j":
		m.row++
		m.clampCursor()
	case "H", "L":
		m.moveAcross(msg.String() == "L")
	case "K", "J":
		m.moveWithin(msg.String() == "J")
	case "a":
		if len(m.board.Lists) == 0 {
			m.flash = "add a list first (A)"
			return m, nil
		}
		return m.openPrompt(promptAddCard)
	case "A":
		return m.openPrompt(promptAddList)
	case "m":
		return m.openPrompt(promptMember)
	case "enter":
		if _, c, ok := m.selected(); ok {
			m.ed = editor.Begin(c)
			m.itemIdx = 0
			m.mode = modeDetail
		}
	case "d":
		if _, c, ok := m.selected(); ok {
			m.apply(m.store.RemoveCard(m.ctx, c.ID))
		}
	case "r":
		m.reload()
	}
	return m, nil
}

// moveAcross moves the selected card to the neighbouring list, keeping its row when
// the destination is long enough.
func (m *appModel) moveAcross(right bool) {
	l, _, ok := m.selected()
	if !ok {
		return
	}
	dst := m.col - 1
	if right {
		dst = m.col + 1
	}
	if dst < 0 || dst >= len(m.board.Lists) {
		return
	}
	dstList := m.board.Lists[dst]
	pos := min(m.row, len(dstList.Cards))
	res, err := m.store.Drop(m.ctx, board.Locator{ListID: l.ID, Index: m.row}, &board.Locator{ListID: dstList.ID, Index: pos})
	m.apply(res, err)
	if err == nil && res.Changed {
		m.col, m.row = dst, pos
	}
}

func (m *appModel) moveWithin(down bool) {
	l, _, ok := m.selected()
	if !ok {
		return
	}
	pos := m.row - 1
	if down {
		pos = m.row + 1
	}
	if pos < 0 || pos >= len(l.Cards) {
		return
	}
	res, err := m.store.MoveCard(m.ctx, l.ID, m.row, l.ID, pos)
	m.apply(res, err)
	if err == nil && res.Changed {
		m.row = pos
	}
}

func (m appModel) openPrompt(k promptKind) (tea.Model, tea.Cmd) {
	m.returnTo = m.mode
	m.mode = modePrompt
	m.prompt = k
	m.input.Prompt = k.label()
	m.input.SetValue("")
	return m, m.input.Focus()
}

func (m appModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = m.returnTo
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		m.input.Blur()
		m.mode = m.returnTo
		m.submitPrompt(value)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) submitPrompt(value string) {
	switch m.prompt {
	case promptAddCard:
		l, _, _ := m.selected()
		res, err := m.store.AddCard(m.ctx, l.ID, value, "")
		m.apply(res, err)
		if err == nil && res.Changed {
			if nl, ok := res.Board.FindList(l.ID); ok {
				m.row = len(nl.Cards) - 1
			}
		}
	case promptAddList:
		res, err := m.store.AddList(m.ctx, value)
		m.apply(res, err)
		if err == nil && res.Changed {
			m.col, m.row = len(res.Board.Lists)-1, 0
		}
	case promptMember:
		m.apply(m.store.AddMemberToAll(m.ctx, value))
	case promptChecklistItem:
		if m.ed == nil {
			return
		}
		if m.ed.AddItem(value) {
			_, total := m.ed.Progress()
			m.itemIdx = total - 1
			m.flash = ""
		} else {
			m.flash = "checklist item must not be blank"
		}
	}
}

func (m appModel) View() string {
	var body string
	switch {
	case m.mode == modeDetail || (m.mode == modePrompt && m.returnTo == modeDetail):
		body = m.viewDetail()
	default:
		body = renderColumns(m.board, m.width, m.col, m.row)
	}

	footer := styleMuted().Render("h/l j/k move · H/L J/K move card · a card · A list · m member · enter open · d delete · r reload · q quit")
	if m.mode == modeDetail {
		footer = styleMuted().Render("j/k select · space toggle · x remove · c add item · p priority · esc save & close · D discard · ctrl+c quit")
	}
	if m.mode == modePrompt {
		footer = lipgloss.NewStyle().Foreground(colorAccent).Render(m.input.View())
	}
	lines := []string{body, "", footer}
	if strings.TrimSpace(m.flash) != "" {
		lines = append(lines, styleFlash().Render(m.flash))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
