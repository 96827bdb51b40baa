package cli

import (
	"context"
	"strings"

	"kanban-cli/internal/board"

	"github.com/spf13/cobra"
)

func newMembersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Member commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a member to every card on the board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.AddMemberToAll(ctx, name)
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": res.Board})
			})
		},
	})
	return cmd
}
