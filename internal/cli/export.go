package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"orderexport/internal/service"
)

func newPreviewCmd(rt *runtime) *cobra.Command {
	var (
		src      sourceFlags
		template string
		limit    int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a template over source records as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.open()
			if err != nil {
				return err
			}
			sourceType, cfg, err := src.resolve(rt.cfg.Sources)
			if err != nil {
				return err
			}
			ref, err := a.EnsureTemplate(cmd.Context(), template)
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = rt.cfg.Export.PreviewLimit
			}
			res, err := a.Exports.Preview(cmd.Context(), ref, sourceType, cfg, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			renderTable(cmd.OutOrStdout(), res.Headers, res.Rows)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d record(s) · template %s\n", len(res.Rows), res.Template.Name)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&template, "template", "t", "", "template id or name (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum records to show (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExportCmd(rt *runtime) *cobra.Command {
	var (
		src      sourceFlags
		template string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a CSV export of a template over source records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.open()
			if err != nil {
				return err
			}
			sourceType, cfg, err := src.resolve(rt.cfg.Sources)
			if err != nil {
				return err
			}
			ref, err := a.EnsureTemplate(cmd.Context(), template)
			if err != nil {
				return err
			}
			res, err := a.Exports.Export(cmd.Context(), service.ExportRequest{
				TemplateRef:  ref,
				SourceType:   sourceType,
				SourceConfig: cfg,
				Limit:        limit,
			})
			if err != nil {
				return err
			}
			printExportResult(cmd, res)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&template, "template", "t", "", "template id or name (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum records to export (0 = all)")
	return cmd
}

func printExportResult(cmd *cobra.Command, res *service.ExportResult) {
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d row(s) to %s (%s, %s)\n",
		res.Rows, res.Path, humanize.Bytes(uint64(res.Bytes)), res.Duration.Round(time.Millisecond))
}
