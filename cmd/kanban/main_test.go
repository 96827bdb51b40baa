package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectCardLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"kanban"},
			want: []string{"kanban"},
		},
		{
			name: "card id first token",
			in:   []string{"kanban", "card-ab12cd34"},
			want: []string{"kanban", "cards", "show", "card-ab12cd34"},
		},
		{
			name: "card id after value flag",
			in:   []string{"kanban", "--dir", "./board", "card-ab12cd34"},
			want: []string{"kanban", "--dir", "./board", "cards", "show", "card-ab12cd34"},
		},
		{
			name: "card id after equals flag",
			in:   []string{"kanban", "--backend=sqlite", "card-ab12cd34"},
			want: []string{"kanban", "--backend=sqlite", "cards", "show", "card-ab12cd34"},
		},
		{
			name: "card id after bool flag",
			in:   []string{"kanban", "--pretty", "card-ab12cd34"},
			want: []string{"kanban", "--pretty", "cards", "show", "card-ab12cd34"},
		},
		{
			name: "card id after double dash",
			in:   []string{"kanban", "--", "card-ab12cd34"},
			want: []string{"kanban", "--", "cards", "show", "card-ab12cd34"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"kanban", "cards", "rm", "card-ab12cd34"},
			want: []string{"kanban", "cards", "rm", "card-ab12cd34"},
		},
		{
			name: "bare prefix not rewritten",
			in:   []string{"kanban", "card-"},
			want: []string{"kanban", "card-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectCardLookupArgs(append([]string(nil), tt.in...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
