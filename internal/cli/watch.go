package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"kanban-cli/internal/board"
	"kanban-cli/internal/store"

	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the board every time the board file changes (file backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			adapter, closeFn, err := store.Open(ctx, app.cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = closeFn() }()
			fa, ok := adapter.(*store.FileAdapter)
			if !ok {
				return writeErr(cmd, errors.New("watch needs the file backend"))
			}

			changes, err := fa.Watch(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := initStore(ctx, app, fa)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := writeOut(cmd, app, map[string]any{"data": s.Snapshot()}); err != nil {
				return err
			}
			if once {
				return nil
			}
			return watchLoop(ctx, cmd, app, s, changes)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Print the current board and exit")
	return cmd
}

func watchLoop(ctx context.Context, cmd *cobra.Command, app *App, s *board.Store, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			b, err := s.Reload(ctx)
			if err != nil {
				// Half-written or removed file: keep waiting for the next change.
				app.logger.Warn("reload failed", "err", err)
				continue
			}
			if err := writeOut(cmd, app, map[string]any{"data": b}); err != nil {
				return err
			}
		}
	}
}
