package board

import (
	"strings"

	"kanban-cli/internal/model"
)

// Locator identifies a card position: the list it sits in and its index there.
type Locator struct {
	ListID string `json:"listId"`
	Index  int    `json:"index"`
}

func (l Locator) same(o Locator) bool {
	return strings.TrimSpace(l.ListID) == strings.TrimSpace(o.ListID) && l.Index == o.Index
}

// Reorder moves the card at src to dst and returns the resulting board.
//
// A nil dst is a cancelled drag and returns b unchanged, as does dropping a card where it
// already is. dst.Index is interpreted against the destination list after the card has
// been removed from src, so for a same-list move it ranges over [0, len-1].
//
// The returned board has a fresh Lists slice; only the affected lists get new Cards
// slices, every other list still shares its cards with b. b itself is never written.
func Reorder(b model.Board, src Locator, dst *Locator) (model.Board, error) {
	if dst == nil || src.same(*dst) {
		return b, nil
	}

	si := b.ListIndex(src.ListID)
	if si < 0 {
		return b, NotFoundError{Kind: "list", ID: src.ListID}
	}
	di := b.ListIndex(dst.ListID)
	if di < 0 {
		return b, NotFoundError{Kind: "list", ID: dst.ListID}
	}

	srcCards := b.Lists[si].Cards
	if src.Index < 0 || src.Index >= len(srcCards) {
		return b, IndexOutOfRangeError{What: "source", Index: src.Index, Len: len(srcCards)}
	}
	// Insertion slots in the destination once the moved card is gone.
	slots := len(b.Lists[di].Cards) + 1
	if si == di {
		slots--
	}
	if dst.Index < 0 || dst.Index >= slots {
		return b, IndexOutOfRangeError{What: "destination", Index: dst.Index, Len: slots}
	}

	moved := srcCards[src.Index]
	rest := removeCardAt(srcCards, src.Index)

	lists := append([]model.List(nil), b.Lists...)
	if si == di {
		lists[si].Cards = insertCardAt(rest, dst.Index, moved)
	} else {
		lists[si].Cards = rest
		lists[di].Cards = insertCardAt(b.Lists[di].Cards, dst.Index, moved)
	}
	return model.Board{Lists: lists}, nil
}

// removeCardAt returns a new slice without cards[i].
func removeCardAt(cards []model.Card, i int) []model.Card {
	out := make([]model.Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}

// insertCardAt returns a new slice with c placed at index i.
func insertCardAt(cards []model.Card, i int, c model.Card) []model.Card {
	out := make([]model.Card, 0, len(cards)+1)
	out = append(out, cards[:i]...)
	out = append(out, c)
	return append(out, cards[i:]...)
}
