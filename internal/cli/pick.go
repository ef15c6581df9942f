package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"orderexport/internal/columns"
	"orderexport/internal/tui"
)

func newPickCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "pick [template]",
		Short: "Choose a template's fields interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.open()
			if err != nil {
				return err
			}
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			ref, err = a.EnsureTemplate(cmd.Context(), ref)
			if err != nil {
				return err
			}
			t, err := a.Templates.Resolve(ref)
			if err != nil {
				return err
			}

			live := columns.FromColumns(a.Catalogue, t.Columns)
			confirmed, err := tui.Run(a.Catalogue, live)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes")
				return nil
			}
			t, err = a.Templates.ReplaceSelection(cmd.Context(), t.ID, live.Paths())
			if err != nil {
				return err
			}
			printTemplate(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
