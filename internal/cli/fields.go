package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newFieldsCmd(rt *runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fields [query]",
		Short: "Search the field catalogue by label",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := rt.cfg.LoadCatalogue()
			if err != nil {
				return err
			}
			fields := cat.Search(strings.Join(args, " "))
			if asJSON {
				return printJSON(cmd.OutOrStdout(), fields)
			}
			rows := make([][]string, len(fields))
			for i, f := range fields {
				rows[i] = []string{f.Label, f.Path, f.Group}
			}
			renderTable(cmd.OutOrStdout(), []string{"LABEL", "PATH", "GROUP"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
