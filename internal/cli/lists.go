package cli

import (
	"context"
	"strings"

	"kanban-cli/internal/board"

	"github.com/spf13/cobra"
)

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "List commands",
	}
	cmd.AddCommand(newListsAddCmd(app))
	cmd.AddCommand(newListsLsCmd(app))
	return cmd
}

func newListsAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Append a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.AddList(ctx, title)
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				lists := res.Board.Lists
				return writeOut(cmd, app, map[string]any{"data": lists[len(lists)-1]})
			})
		},
	}
}

type listSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards int    `json:"cards"`
}

func newListsLsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show lists with card counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				b := s.Snapshot()
				out := make([]listSummary, 0, len(b.Lists))
				for _, l := range b.Lists {
					out = append(out, listSummary{ID: l.ID, Title: l.Title, Cards: len(l.Cards)})
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
}
