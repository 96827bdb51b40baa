package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"kanban-cli/internal/board"
	"kanban-cli/internal/format"
	"kanban-cli/internal/model"
	"kanban-cli/internal/store"

	"github.com/spf13/cobra"
)

func newBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Whole-board commands",
	}
	cmd.AddCommand(newBoardShowCmd(app))
	cmd.AddCommand(newBoardResetCmd(app))
	cmd.AddCommand(newBoardExportCmd(app))
	cmd.AddCommand(newBoardImportCmd(app))
	cmd.AddCommand(newBoardStatsCmd(app))
	return cmd
}

// withStore runs fn against an initialized store and closes the backend afterwards.
func withStore(cmd *cobra.Command, app *App, fn func(ctx context.Context, s *board.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, closeFn, err := openStore(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = closeFn() }()
	if err := fn(ctx, s); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func newBoardShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				return writeOut(cmd, app, map[string]any{"data": s.Snapshot()})
			})
		},
	}
}

func newBoardResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the board with the default board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				res, err := s.Replace(ctx, model.SeedBoard())
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": res.Board})
			})
		},
	}
}

func newBoardExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the board as JSON to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				path := filepath.Clean(args[0])
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				b := s.Snapshot()
				if err := format.WriteJSON(f, b, true); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{
					"path":  path,
					"lists": len(b.Lists),
					"cards": b.CardCount(),
				}})
			})
		},
	}
}

func newBoardImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with one exported earlier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				src := &store.FileAdapter{Path: filepath.Clean(args[0])}
				b, err := src.Load(ctx)
				if err != nil {
					return fmt.Errorf("import %s: %w", src.Path, err)
				}
				res, err := s.Replace(ctx, b)
				if err := outcomeErr(s, res, err); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": res.Board})
			})
		},
	}
}

type boardStats struct {
	Lists           int            `json:"lists"`
	Cards           int            `json:"cards"`
	PerList         []listSummary  `json:"perList"`
	ByPriority      map[string]int `json:"byPriority"`
	ChecklistDone   int            `json:"checklistDone"`
	ChecklistTotal  int            `json:"checklistTotal"`
	UnassignedCards int            `json:"unassignedCards"`
	DistinctMembers []string       `json:"distinctMembers"`
}

func computeStats(b model.Board) boardStats {
	st := boardStats{
		Lists:           len(b.Lists),
		Cards:           b.CardCount(),
		PerList:         make([]listSummary, 0, len(b.Lists)),
		ByPriority:      map[string]int{},
		DistinctMembers: []string{},
	}
	seen := map[string]bool{}
	for _, l := range b.Lists {
		st.PerList = append(st.PerList, listSummary{ID: l.ID, Title: l.Title, Cards: len(l.Cards)})
		for _, c := range l.Cards {
			st.ByPriority[string(c.Priority)]++
			if len(c.Members) == 0 {
				st.UnassignedCards++
			}
			for _, m := range c.Members {
				if !seen[m] {
					seen[m] = true
					st.DistinctMembers = append(st.DistinctMembers, m)
				}
			}
			for _, it := range c.Checklist {
				st.ChecklistTotal++
				if it.Completed {
					st.ChecklistDone++
				}
			}
		}
	}
	return st
}

func newBoardStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize cards per list, priority and checklist progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				return writeOut(cmd, app, map[string]any{"data": computeStats(s.Snapshot())})
			})
		},
	}
}
