package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/config"
	"kanban-cli/internal/format"
	"kanban-cli/internal/logging"
	"kanban-cli/internal/store"
	"kanban-cli/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	Dir        string
	Backend    string
	Format     string
	PrettyJSON bool
	LogLevel   string

	cfg       config.Config
	logger    *log.Logger
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kanban",
		Short:        "Kanban board CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  kanban

  # Scriptable commands
  kanban board show --pretty
  kanban cards add 1 "Write release notes"
  kanban cards move 1 0 2 0

  # Direct card lookup (shortcut for: kanban cards show <card-id>)
  kanban card-3kq7m2xa
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logCloser != nil {
			return app.logCloser.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("KANBAN_CONFIG", ""), "Path to config.toml (default: $KANBAN_CONFIG_DIR/config.toml)")
	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Board data dir (overrides config and KANBAN_DIR)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (file|sqlite|redis)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|edn|yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newMembersCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// setup resolves config (file, env, then flags) and builds the logger.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	if app.Dir != "" {
		cfg.Dir = app.Dir
	}
	if app.Backend != "" {
		cfg.Backend = app.Backend
	}
	if app.Format != "" {
		cfg.Format = app.Format
	}
	if app.PrettyJSON {
		cfg.Pretty = true
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg

	app.logger, app.logCloser = logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	return nil
}

// openStore opens the configured backend and initializes a board store on top of it.
// The returned func closes the backend.
func openStore(ctx context.Context, app *App) (*board.Store, func() error, error) {
	adapter, closeFn, err := store.Open(ctx, app.cfg)
	if err != nil {
		return nil, closeFn, err
	}
	s, err := initStore(ctx, app, adapter)
	if err != nil {
		return nil, closeFn, err
	}
	return s, closeFn, nil
}

// initStore loads the board. A store whose backend could not be read is refused, so
// later writes never replace a board that is still stored.
func initStore(ctx context.Context, app *App, adapter board.Adapter) (*board.Store, error) {
	s := board.NewStore(adapter, board.WithLogger(app.logger))
	s.Initialize(ctx)
	if err := s.PersistErr(); err != nil {
		return nil, fmt.Errorf("board unavailable: %w", err)
	}
	return s, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	adapter, closeFn, err := store.Open(ctx, app.cfg)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = closeFn() }()

	s, err := initStore(ctx, app, adapter)
	if err != nil {
		return writeErr(cmd, err)
	}

	var changes <-chan struct{}
	if fa, ok := adapter.(*store.FileAdapter); ok {
		if ch, err := fa.Watch(ctx); err == nil {
			changes = ch
		} else {
			app.logger.Warn("file watch unavailable", "err", err)
		}
	}
	return tui.Run(ctx, s, tui.Options{Changes: changes, Logger: app.logger})
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive board (default with no subcommand)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.cfg.Format, app.cfg.Pretty)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
