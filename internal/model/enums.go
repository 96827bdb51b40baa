package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidEnum = errors.New("invalid value")

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority accepts any casing ("high", "HIGH", "High").
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("priority %q: %w (want Low|Medium|High)", s, ErrInvalidEnum)
}

type Label string

const (
	LabelRed    Label = "Red"
	LabelGreen  Label = "Green"
	LabelYellow Label = "Yellow"
	LabelBlue   Label = "Blue"
)

var Labels = []Label{LabelRed, LabelGreen, LabelYellow, LabelBlue}

func (l Label) Valid() bool {
	for _, x := range Labels {
		if l == x {
			return true
		}
	}
	return false
}

func ParseLabel(s string) (Label, error) {
	for _, l := range Labels {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("label %q: %w (want Red|Green|Yellow|Blue)", s, ErrInvalidEnum)
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

var Roles = []Role{RoleAdmin, RoleMember, RoleViewer}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("role %q: %w (want admin|member|viewer)", s, ErrInvalidEnum)
}
