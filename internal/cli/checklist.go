package cli

import (
	"context"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/editor"

	"github.com/spf13/cobra"
)

func newChecklistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Card checklist commands",
	}
	cmd.AddCommand(newChecklistAddCmd(app))
	cmd.AddCommand(newChecklistToggleCmd(app))
	cmd.AddCommand(newChecklistRmCmd(app))
	return cmd
}

// editChecklist opens an edit session on the card, applies fn and commits right away.
func editChecklist(cmd *cobra.Command, app *App, cardID string, fn func(ed *editor.Editor) error) error {
	return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
		c, err := findCard(s.Snapshot(), cardID)
		if err != nil {
			return err
		}
		ed := editor.Begin(c)
		if err := fn(ed); err != nil {
			ed.Cancel()
			return err
		}
		out, err := commitEdit(ctx, s, ed)
		if err != nil {
			return err
		}
		return writeOut(cmd, app, map[string]any{"data": out})
	})
}

func newChecklistAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <card-id> <text>",
		Short: "Append a checklist item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return editChecklist(cmd, app, args[0], func(ed *editor.Editor) error {
				if !ed.AddItem(text) {
					return rejectedError{err: board.ValidationError{Field: "checklist item", Reason: "must not be blank"}}
				}
				return nil
			})
		},
	}
}

func newChecklistToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <card-id> <index>",
		Short: "Flip a checklist item's completion (index is zero-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex("index", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return editChecklist(cmd, app, args[0], func(ed *editor.Editor) error {
				return ed.ToggleItem(i)
			})
		},
	}
}

func newChecklistRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <card-id> <index>",
		Short: "Remove a checklist item (index is zero-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseIndex("index", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return editChecklist(cmd, app, args[0], func(ed *editor.Editor) error {
				return ed.RemoveItem(i)
			})
		},
	}
}
