package board

import (
	"strings"

	"kanban-cli/internal/model"
)

// CardPatch is a field-level update. Nil fields are left untouched.
type CardPatch struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Priority    *model.Priority        `json:"priority,omitempty"`
	Checklist   *[]model.ChecklistItem `json:"checklist,omitempty"`
	Role        *model.Role            `json:"role,omitempty"`
	Label       *model.Label           `json:"label,omitempty"`
	// ClearLabel removes the label; it wins over Label.
	ClearLabel bool      `json:"clearLabel,omitempty"`
	Members    *[]string `json:"members,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p CardPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Checklist == nil &&
		p.Role == nil && p.Label == nil && !p.ClearLabel && p.Members == nil
}

// validate checks the patch before anything is applied.
func (p CardPatch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ValidationError{Field: "priority", Reason: "unknown value " + string(*p.Priority)}
	}
	if p.Role != nil && !p.Role.Valid() {
		return ValidationError{Field: "role", Reason: "unknown value " + string(*p.Role)}
	}
	if p.Label != nil && !p.ClearLabel && !p.Label.Valid() {
		return ValidationError{Field: "label", Reason: "unknown value " + string(*p.Label)}
	}
	if p.Members != nil {
		for _, m := range *p.Members {
			if strings.TrimSpace(m) == "" {
				return ValidationError{Field: "members", Reason: "member names must not be blank"}
			}
		}
	}
	return nil
}

// apply returns a patched copy of c; c is not modified.
func (p CardPatch) apply(c model.Card) model.Card {
	out := c
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Checklist != nil {
		out.Checklist = append([]model.ChecklistItem{}, (*p.Checklist)...)
	}
	if p.Role != nil {
		out.Role = *p.Role
	}
	if p.ClearLabel {
		out.Label = nil
	} else if p.Label != nil {
		l := *p.Label
		out.Label = &l
	}
	if p.Members != nil {
		out.Members = dedupeMembers(*p.Members)
	}
	return out
}

// PatchFromCard builds the patch that overwrites the fields a card edit session owns:
// title, description, priority, checklist, role and label.
func PatchFromCard(c model.Card) CardPatch {
	title := c.Title
	desc := c.Description
	prio := c.Priority
	role := c.Role
	checklist := append([]model.ChecklistItem{}, c.Checklist...)
	p := CardPatch{
		Title:       &title,
		Description: &desc,
		Priority:    &prio,
		Checklist:   &checklist,
		Role:        &role,
	}
	if c.Label == nil {
		p.ClearLabel = true
	} else {
		l := *c.Label
		p.Label = &l
	}
	return p
}

func dedupeMembers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, m := range in {
		m = strings.TrimSpace(m)
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
