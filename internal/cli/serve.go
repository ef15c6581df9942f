package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"orderexport/internal/etl"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled and file-watch export jobs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.open()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.Exports.RestartWatchers(ctx)
			rt.log.Info("serve: waiting for triggers")
			<-ctx.Done()
			rt.log.Info("serve: shutting down")
			return nil
		},
	}
}

func newMCPCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the Model Context Protocol on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.open()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.ServeMCP(ctx)
		},
	}
}

func newSourceCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Inspect record sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List source types and their configuration keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows [][]string
			for _, spec := range etl.ListSources() {
				for _, f := range spec.ConfigFields {
					req := ""
					if f.Required {
						req = "required"
					}
					rows = append(rows, []string{spec.Type, f.Key, f.Type, req, f.Help})
				}
			}
			renderTable(cmd.OutOrStdout(), []string{"SOURCE", "KEY", "TYPE", "", "HELP"}, rows)
			return nil
		},
	}

	var (
		src    sourceFlags
		sample int
	)
	discover := &cobra.Command{
		Use:   "discover",
		Short: "Sample a source and list the field paths its records carry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sourceType, cfg, err := src.resolve(rt.cfg.Sources)
			if err != nil {
				return err
			}
			schema, err := etl.Discover(cmd.Context(), sourceType, cfg, sample)
			if err != nil {
				return err
			}
			cat, err := rt.cfg.LoadCatalogue()
			if err != nil {
				return err
			}
			rows := make([][]string, len(schema.Fields))
			for i, f := range schema.Fields {
				label := ""
				if cat.Has(f.Path) {
					label = cat.LabelFor(f.Path)
				}
				rows[i] = []string{f.Path, f.Kind, label}
			}
			renderTable(cmd.OutOrStdout(), []string{"PATH", "KIND", "CATALOGUE LABEL"}, rows)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d field(s) from up to %d record(s)\n", len(schema.Fields), sample)
			return nil
		},
	}
	src.register(discover)
	discover.Flags().IntVar(&sample, "sample", 20, "records to sample")

	cmd.AddCommand(list, discover)
	return cmd
}
