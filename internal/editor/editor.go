// Package editor stages edits to a single card. Nothing reaches the board until the
// caller commits the session and hands the result to board.Store.ReplaceCard.
package editor

import (
	"errors"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"
)

var ErrClosed = errors.New("edit session already closed")

type Editor struct {
	orig   model.Card
	staged model.Card
	closed bool
}

// Begin opens an edit session on a private copy of c.
func Begin(c model.Card) *Editor {
	return &Editor{orig: c.Clone(), staged: c.Clone()}
}

// Card returns a copy of the staged card.
func (e *Editor) Card() model.Card { return e.staged.Clone() }

func (e *Editor) CardID() string { return e.orig.ID }

// SetTitle and SetDescription do nothing once the session is closed.
func (e *Editor) SetTitle(s string) {
	if !e.closed {
		e.staged.Title = s
	}
}

func (e *Editor) SetDescription(s string) {
	if !e.closed {
		e.staged.Description = s
	}
}

func (e *Editor) SetPriority(s string) error {
	if e.closed {
		return ErrClosed
	}
	p, err := model.ParsePriority(s)
	if err != nil {
		return board.ValidationError{Field: "priority", Reason: err.Error()}
	}
	e.staged.Priority = p
	return nil
}

func (e *Editor) SetRole(s string) error {
	if e.closed {
		return ErrClosed
	}
	r, err := model.ParseRole(s)
	if err != nil {
		return board.ValidationError{Field: "role", Reason: err.Error()}
	}
	e.staged.Role = r
	return nil
}

// SetLabel sets the label; an empty string clears it.
func (e *Editor) SetLabel(s string) error {
	if e.closed {
		return ErrClosed
	}
	if strings.TrimSpace(s) == "" {
		e.staged.Label = nil
		return nil
	}
	l, err := model.ParseLabel(s)
	if err != nil {
		return board.ValidationError{Field: "label", Reason: err.Error()}
	}
	e.staged.Label = &l
	return nil
}

// AddItem appends an unchecked item. Blank text, or a closed session, is ignored and
// reported as false.
func (e *Editor) AddItem(text string) bool {
	if e.closed || strings.TrimSpace(text) == "" {
		return false
	}
	e.staged.Checklist = append(e.staged.Checklist, model.ChecklistItem{Text: text})
	return true
}

func (e *Editor) ToggleItem(i int) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	e.staged.Checklist[i].Completed = !e.staged.Checklist[i].Completed
	return nil
}

func (e *Editor) RemoveItem(i int) error {
	if err := e.checkIndex(i); err != nil {
		return err
	}
	items := e.staged.Checklist
	out := make([]model.ChecklistItem, 0, len(items)-1)
	out = append(out, items[:i]...)
	e.staged.Checklist = append(out, items[i+1:]...)
	return nil
}

func (e *Editor) checkIndex(i int) error {
	if e.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(e.staged.Checklist) {
		return board.IndexOutOfRangeError{What: "checklist", Index: i, Len: len(e.staged.Checklist)}
	}
	return nil
}

// Progress returns completed and total checklist items of the staged card.
func (e *Editor) Progress() (done, total int) {
	for _, it := range e.staged.Checklist {
		if it.Completed {
			done++
		}
	}
	return done, len(e.staged.Checklist)
}

// Dirty reports whether any editor-owned field differs from the card the session began with.
func (e *Editor) Dirty() bool {
	a, b := e.orig, e.staged
	if a.Title != b.Title || a.Description != b.Description || a.Priority != b.Priority || a.Role != b.Role {
		return true
	}
	if (a.Label == nil) != (b.Label == nil) || (a.Label != nil && *a.Label != *b.Label) {
		return true
	}
	if len(a.Checklist) != len(b.Checklist) {
		return true
	}
	for i := range a.Checklist {
		if a.Checklist[i] != b.Checklist[i] {
			return true
		}
	}
	return false
}

// Patch describes the staged editor-owned fields as a board.CardPatch.
func (e *Editor) Patch() board.CardPatch {
	return board.PatchFromCard(e.staged)
}

// Commit closes the session and returns the finalized card.
func (e *Editor) Commit() (model.Card, error) {
	if e.closed {
		return model.Card{}, ErrClosed
	}
	e.closed = true
	return e.staged.Clone(), nil
}

// Cancel closes the session and drops every staged edit.
func (e *Editor) Cancel() {
	e.closed = true
	e.staged = e.orig.Clone()
}

func (e *Editor) Closed() bool { return e.closed }
