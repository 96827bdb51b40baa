package cli

import (
	"context"
	"fmt"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"
	"kanban-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Card commands",
	}
	cmd.AddCommand(newCardsAddCmd(app))
	cmd.AddCommand(newCardsShowCmd(app))
	cmd.AddCommand(newCardsMoveCmd(app))
	cmd.AddCommand(newCardsMoveToCmd(app))
	cmd.AddCommand(newCardsUpdateCmd(app))
	cmd.AddCommand(newCardsRmCmd(app))
	cmd.AddCommand(newCardsEditCmd(app))
	cmd.AddCommand(newChecklistCmd(app))
	return cmd
}

func findCard(b model.Board, id string) (model.Card, error) {
	li, ci, ok := b.FindCard(strings.TrimSpace(id))
	if !ok {
		return model.Card{}, board.NotFoundError{Kind: "card", ID: id}
	}
	return b.Lists[li].Cards[ci], nil
}

func newCardsAddCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <list-id> <title>",
		Short: "Append a card to a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID := args[0]
			title := strings.Join(args[1:], " ")
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.AddCard(ctx, listID, title, description)
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				l, _ := res.Board.FindList(listID)
				return writeOut(cmd, app, map[string]any{"data": l.Cards[len(l.Cards)-1]})
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Card description (markdown)")
	return cmd
}

func newCardsShowCmd(app *App) *cobra.Command {
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				c, err := findCard(s.Snapshot(), args[0])
				if err != nil {
					return err
				}
				if render {
					_, err := fmt.Fprint(cmd.OutOrStdout(), tui.RenderCard(c, width))
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": c})
			})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render the card as styled markdown instead of structured output")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}

func newCardsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <src-list> <src-index> <dst-list> <dst-index>",
		Short: "Move a card by position (indexes are zero-based)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcIdx, err := parseIndex("src-index", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			dstIdx, err := parseIndex("dst-index", args[3])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.MoveCard(ctx, args[0], srcIdx, args[2], dstIdx)
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": res.Board})
			})
		},
	}
}

func newCardsMoveToCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move-to <card-id> <dst-list> <position>",
		Short: "Move a card by id to a position in a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseIndex("position", args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.MoveCardTo(ctx, args[0], args[1], pos)
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": res.Board})
			})
		},
	}
}

func newCardsUpdateCmd(app *App) *cobra.Command {
	var (
		title, description, priority, role, label string
		clearLabel                                bool
		members                                   []string
	)

	cmd := &cobra.Command{
		Use:   "update <card-id>",
		Short: "Update card fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p board.CardPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("description") {
				p.Description = &description
			}
			if flags.Changed("priority") {
				pr := model.Priority(priority)
				if parsed, err := model.ParsePriority(priority); err == nil {
					pr = parsed
				}
				p.Priority = &pr
			}
			if flags.Changed("role") {
				r := model.Role(role)
				if parsed, err := model.ParseRole(role); err == nil {
					r = parsed
				}
				p.Role = &r
			}
			if flags.Changed("label") {
				l := model.Label(label)
				if parsed, err := model.ParseLabel(label); err == nil {
					l = parsed
				}
				p.Label = &l
			}
			p.ClearLabel = clearLabel
			if flags.Changed("member") {
				p.Members = &members
			}
			if p.Empty() {
				return writeErr(cmd, usageError{arg: "flags", reason: "nothing to update"})
			}

			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.UpdateCard(ctx, args[0], p)
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				c, err := findCard(res.Board, args[0])
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": c})
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description (markdown)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (Low|Medium|High)")
	cmd.Flags().StringVar(&role, "role", "", "Role (admin|member|viewer)")
	cmd.Flags().StringVar(&label, "label", "", "Label (Red|Green|Yellow|Blue)")
	cmd.Flags().BoolVar(&clearLabel, "clear-label", false, "Remove the label")
	cmd.Flags().StringArrayVar(&members, "member", nil, "Set members (repeatable; replaces the member set)")
	return cmd
}

func newCardsRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <card-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a card",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.RemoveCard(ctx, args[0])
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
			})
		},
	}
}
