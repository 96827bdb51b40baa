package model

import "strings"

type Board struct {
	Lists []List `json:"lists"`
}

type List struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

type Card struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Priority Priority `json:"priority"`
	// Label is nil when the card has no label; it serializes as null.
	Label *Label `json:"label"`

	// Members is a set; insertion order is kept for display.
	Members   []string        `json:"members"`
	Checklist []ChecklistItem `json:"checklist"`
	Role      Role            `json:"role"`
}

type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// CardCount returns the total number of cards across all lists.
func (b Board) CardCount() int {
	n := 0
	for _, l := range b.Lists {
		n += len(l.Cards)
	}
	return n
}

// ListIndex returns the index of the list with the given id, or -1.
func (b Board) ListIndex(id string) int {
	id = strings.TrimSpace(id)
	for i := range b.Lists {
		if b.Lists[i].ID == id {
			return i
		}
	}
	return -1
}

// FindList returns the list with the given id.
func (b Board) FindList(id string) (List, bool) {
	i := b.ListIndex(id)
	if i < 0 {
		return List{}, false
	}
	return b.Lists[i], true
}

// FindCard locates a card anywhere on the board.
func (b Board) FindCard(id string) (listIdx, cardIdx int, ok bool) {
	id = strings.TrimSpace(id)
	for li := range b.Lists {
		for ci := range b.Lists[li].Cards {
			if b.Lists[li].Cards[ci].ID == id {
				return li, ci, true
			}
		}
	}
	return -1, -1, false
}

// HasID reports whether any list or card on the board uses id.
func (b Board) HasID(id string) bool {
	for _, l := range b.Lists {
		if l.ID == id {
			return true
		}
		for _, c := range l.Cards {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

// HasMember reports whether name is already a member of the card.
func (c Card) HasMember(name string) bool {
	for _, m := range c.Members {
		if m == name {
			return true
		}
	}
	return false
}

// Clone returns a copy of c that shares no slices with it.
func (c Card) Clone() Card {
	out := c
	out.Members = append([]string{}, c.Members...)
	out.Checklist = append([]ChecklistItem{}, c.Checklist...)
	if c.Label != nil {
		l := *c.Label
		out.Label = &l
	}
	return out
}

// Normalize fills defaults for fields older snapshots may omit: empty slices instead of
// nil, Medium priority, viewer role. It rewrites b in place, so only call it on a board
// that no other snapshot shares (freshly decoded data).
func (b *Board) Normalize() {
	if b.Lists == nil {
		b.Lists = []List{}
	}
	for li := range b.Lists {
		l := &b.Lists[li]
		if l.Cards == nil {
			l.Cards = []Card{}
		}
		for ci := range l.Cards {
			c := &l.Cards[ci]
			if c.Priority == "" {
				c.Priority = PriorityMedium
			}
			if c.Role == "" {
				c.Role = RoleViewer
			}
			if c.Members == nil {
				c.Members = []string{}
			}
			if c.Checklist == nil {
				c.Checklist = []ChecklistItem{}
			}
		}
	}
}

// NewCard returns a card with the defaults every freshly added card gets.
func NewCard(id, title, description string) Card {
	return Card{
		ID:          id,
		Title:       title,
		Description: description,
		Priority:    PriorityMedium,
		Members:     []string{},
		Checklist:   []ChecklistItem{},
		Role:        RoleViewer,
	}
}

// SeedBoard is the board used when nothing usable is stored yet.
func SeedBoard() Board {
	return Board{Lists: []List{
		{ID: "1", Title: "To Do", Cards: []Card{NewCard("1", "Task 1", "")}},
		{ID: "2", Title: "In Progress", Cards: []Card{NewCard("2", "Task 2", "")}},
	}}
}
