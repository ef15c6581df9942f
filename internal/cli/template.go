package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"orderexport/internal/app"
	"orderexport/internal/domain"
)

func newTemplateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage export templates (named column sets)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a template with the default columns",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := rt.open()
				if err != nil {
					return err
				}
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				t, err := a.Templates.Create(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created template %q (%s)\n", t.Name, t.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List templates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := rt.open()
				if err != nil {
					return err
				}
				templates, err := a.Templates.List()
				if err != nil {
					return err
				}
				rows := make([][]string, len(templates))
				for i, t := range templates {
					rows[i] = []string{t.Name, t.ID, fmt.Sprint(len(t.Columns)), humanize.Time(t.UpdatedAt)}
				}
				renderTable(cmd.OutOrStdout(), []string{"NAME", "ID", "COLUMNS", "UPDATED"}, rows)
				return nil
			},
		},
		templateMutation(rt, "show [template]", "Show a template's columns", cobra.MaximumNArgs(1),
			func(cmd *cobra.Command, a *app.App, ref string, _ []string) (*domain.Template, error) {
				return a.Templates.Resolve(ref)
			}),
		templateMutation(rt, "add <template> <path>...", "Append columns for field paths", cobra.MinimumNArgs(2),
			func(cmd *cobra.Command, a *app.App, ref string, paths []string) (*domain.Template, error) {
				var t *domain.Template
				var err error
				for _, p := range paths {
					if t, err = a.Templates.AddField(cmd.Context(), ref, p); err != nil {
						return nil, err
					}
				}
				return t, nil
			}),
		templateMutation(rt, "remove <template> <path>...", "Remove the columns bound to field paths", cobra.MinimumNArgs(2),
			func(cmd *cobra.Command, a *app.App, ref string, paths []string) (*domain.Template, error) {
				var t *domain.Template
				var err error
				for _, p := range paths {
					if t, err = a.Templates.RemoveField(cmd.Context(), ref, p); err != nil {
						return nil, err
					}
				}
				return t, nil
			}),
		templateMutation(rt, "select <template> [path]...", "Replace the columns with catalogue paths, in order (none clears them)", cobra.MinimumNArgs(1),
			func(cmd *cobra.Command, a *app.App, ref string, paths []string) (*domain.Template, error) {
				return a.Templates.ReplaceSelection(cmd.Context(), ref, paths)
			}),
		templateMutation(rt, "reorder <template> <from-id> <to-id>", "Move a column to the position of another", cobra.ExactArgs(3),
			func(cmd *cobra.Command, a *app.App, ref string, ids []string) (*domain.Template, error) {
				return a.Templates.Reorder(cmd.Context(), ref, ids[0], ids[1])
			}),
		templateMutation(rt, "rename <template> <new-name>", "Rename a template", cobra.ExactArgs(2),
			func(cmd *cobra.Command, a *app.App, ref string, args []string) (*domain.Template, error) {
				return a.Templates.Rename(cmd.Context(), ref, args[0])
			}),
		&cobra.Command{
			Use:   "delete <template>",
			Short: "Delete a template no export job uses",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := rt.open()
				if err != nil {
					return err
				}
				if err := a.Templates.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

// templateMutation builds a command whose first argument names a template
// (the configured default when omitted) and which prints the resulting
// columns.
func templateMutation(rt *runtime, use, short string, args cobra.PositionalArgs,
	fn func(cmd *cobra.Command, a *app.App, ref string, rest []string) (*domain.Template, error)) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.open()
			if err != nil {
				return err
			}
			ref := a.TemplateRef("")
			if len(args) > 0 {
				ref, args = args[0], args[1:]
			}
			t, err := fn(cmd, a, ref, args)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), t)
			}
			printTemplate(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printTemplate(w io.Writer, t *domain.Template) {
	fmt.Fprintf(w, "%s (%s)\n", t.Name, t.ID)
	rows := make([][]string, len(t.Columns))
	for i, c := range t.Columns {
		rows[i] = []string{fmt.Sprint(i + 1), c.ID, c.Label, c.Path}
	}
	renderTable(w, []string{"#", "ID", "LABEL", "PATH"}, rows)
}
