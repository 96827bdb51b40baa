package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"kanban-cli/internal/board"
	"kanban-cli/internal/editor"
	"kanban-cli/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type editFormValues struct {
	Title       string
	Description string
	Priority    string
	Role        string
	Label       string
}

func formValuesFromCard(c model.Card) editFormValues {
	v := editFormValues{
		Title:       c.Title,
		Description: c.Description,
		Priority:    string(c.Priority),
		Role:        string(c.Role),
	}
	if c.Label != nil {
		v.Label = string(*c.Label)
	}
	return v
}

func cardEditForm(v *editFormValues) *huh.Form {
	labelOpts := []huh.Option[string]{huh.NewOption("none", "")}
	for _, l := range model.Labels {
		labelOpts = append(labelOpts, huh.NewOption(string(l), string(l)))
	}
	priorityOpts := make([]string, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		priorityOpts = append(priorityOpts, string(p))
	}
	roleOpts := make([]string, 0, len(model.Roles))
	for _, r := range model.Roles {
		roleOpts = append(roleOpts, string(r))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&v.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title must not be blank")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Description("Markdown").
				Value(&v.Description),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Priority").
				Options(huh.NewOptions(priorityOpts...)...).
				Value(&v.Priority),
			huh.NewSelect[string]().
				Title("Label").
				Options(labelOpts...).
				Value(&v.Label),
			huh.NewSelect[string]().
				Title("Role").
				Options(huh.NewOptions(roleOpts...)...).
				Value(&v.Role),
		),
	)
}

// applyEditValues stages form values into an edit session.
func applyEditValues(ed *editor.Editor, v editFormValues) error {
	ed.SetTitle(v.Title)
	ed.SetDescription(v.Description)
	if err := ed.SetPriority(v.Priority); err != nil {
		return err
	}
	if err := ed.SetRole(v.Role); err != nil {
		return err
	}
	return ed.SetLabel(v.Label)
}

// commitEdit writes a finished session back through the store. Clean sessions are
// cancelled without touching storage.
func commitEdit(ctx context.Context, s *board.Store, ed *editor.Editor) (model.Card, error) {
	if !ed.Dirty() {
		c := ed.Card()
		ed.Cancel()
		return c, nil
	}
	c, err := ed.Commit()
	if err != nil {
		return model.Card{}, err
	}
	res, err := s.ReplaceCard(ctx, c)
	if err := outcomeErr(s, res, err); err != nil {
		return model.Card{}, err
	}
	return findCard(res.Board, c.ID)
}

func newCardsEditCmd(app *App) *cobra.Command {
	var accessible bool

	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Edit a card interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, app, func(ctx context.Context, s *board.Store) error {
				c, err := findCard(s.Snapshot(), args[0])
				if err != nil {
					return err
				}
				ed := editor.Begin(c)
				v := formValuesFromCard(c)

				form := cardEditForm(&v).
					WithInput(cmd.InOrStdin()).
					WithOutput(cmd.ErrOrStderr()).
					WithAccessible(accessible)
				if err := form.RunWithContext(ctx); err != nil {
					ed.Cancel()
					if errors.Is(err, huh.ErrUserAborted) {
						return writeOut(cmd, app, map[string]any{"data": c})
					}
					return err
				}
				if err := applyEditValues(ed, v); err != nil {
					ed.Cancel()
					return err
				}
				out, err := commitEdit(ctx, s, ed)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}

	cmd.Flags().BoolVar(&accessible, "accessible", os.Getenv("ACCESSIBLE") != "", "Plain prompts instead of the full-screen form")
	return cmd
}
