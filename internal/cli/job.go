package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"orderexport/internal/domain"
	"orderexport/internal/service"
)

func newJobCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage saved export jobs and their triggers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newJobCreateCmd(rt),
		&cobra.Command{
			Use:   "list",
			Short: "List export jobs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := rt.open()
				if err != nil {
					return err
				}
				jobs, err := a.Exports.ListJobs()
				if err != nil {
					return err
				}
				rows := make([][]string, len(jobs))
				for i, j := range jobs {
					trigger := string(j.TriggerType)
					if j.TriggerConfig != "" {
						trigger += " " + j.TriggerConfig
					}
					rows[i] = []string{j.ID, j.Name, j.SourceType, trigger, enabledLabel(j.Enabled), lastRun(j)}
				}
				renderTable(cmd.OutOrStdout(), []string{"ID", "NAME", "SOURCE", "TRIGGER", "ENABLED", "LAST RUN"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "run <job-id>",
			Short: "Run an export job now",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := rt.open()
				if err != nil {
					return err
				}
				res, err := a.Exports.RunJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printExportResult(cmd, res)
				return nil
			},
		},
		&cobra.Command{
			Use:   "logs <job-id>",
			Short: "Show recent runs of a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := rt.open()
				if err != nil {
					return err
				}
				logs, err := a.Exports.ListRunLogs(args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, len(logs))
				for i, l := range logs {
					detail := l.Path
					if l.Error != "" {
						detail = l.Error
					}
					rows[i] = []string{
						l.StartedAt.Local().Format(time.DateTime),
						l.Status,
						fmt.Sprint(l.Rows),
						humanize.Bytes(uint64(l.Bytes)),
						l.FinishedAt.Sub(l.StartedAt).Round(time.Millisecond).String(),
						detail,
					}
				}
				renderTable(cmd.OutOrStdout(), []string{"STARTED", "STATUS", "ROWS", "SIZE", "TOOK", "OUTPUT"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <job-id>",
			Short: "Delete an export job and its run history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := rt.open()
				if err != nil {
					return err
				}
				if err := a.Exports.DeleteJob(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newJobCreateCmd(rt *runtime) *cobra.Command {
	var (
		src           sourceFlags
		name          string
		template      string
		outputDir     string
		limit         int
		triggerType   string
		triggerConfig string
		disabled      bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save an export as a job (manual, cron schedule or file watch)",
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
			job, err := a.Exports.CreateJob(cmd.Context(), service.CreateExportJobInput{
				Name:          name,
				TemplateRef:   a.TemplateRef(template),
				SourceType:    sourceType,
				SourceConfig:  cfg,
				OutputDir:     outputDir,
				Limit:         limit,
				TriggerType:   domain.TriggerType(triggerType),
				TriggerConfig: triggerConfig,
				Enabled:       !disabled,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created job %q (%s)\n", job.Name, job.ID)
			return nil
		},
	}
	src.register(cmd)
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "job name")
	f.StringVarP(&template, "template", "t", "", "template id or name (default from config)")
	f.StringVar(&outputDir, "out", "", "directory to write into (default from config)")
	f.IntVarP(&limit, "limit", "n", 0, "maximum records to export (0 = all)")
	f.StringVar(&triggerType, "trigger", string(domain.TriggerManual), "manual|schedule|file_watch")
	f.StringVar(&triggerConfig, "trigger-config", "", "cron expression for schedule, file path for file_watch")
	f.BoolVar(&disabled, "disabled", false, "create the job without arming its trigger")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func enabledLabel(on bool) string {
	if on {
		return "yes"
	}
	return "no"
}

func lastRun(j domain.ExportJob) string {
	if j.LastRunAt.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s)", j.LastStatus, humanize.Time(j.LastRunAt))
}
