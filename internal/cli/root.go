// Package cli is the orderexport command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"orderexport/internal/app"
	"orderexport/internal/config"
	"orderexport/internal/logging"
)

// runtime carries state shared by every command of one invocation.
type runtime struct {
	configPath string
	logLevel   string
	dataDir    string
	outputDir  string

	cfg      *config.Config
	log      *slog.Logger
	closeLog func()
	app      *app.App
}

// Execute runs the CLI with ctx.
func Execute(ctx context.Context) error {
	rt := &runtime{}
	defer rt.teardown(ctx)
	return newRootCmd(rt).ExecuteContext(ctx)
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "orderexport",
		Short:         "Pick order fields, preview them as a table and export CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "path to config.yaml (default: user config dir)")
	flags.StringVar(&rt.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	flags.StringVar(&rt.dataDir, "data-dir", "", "directory holding the database (overrides config)")
	flags.StringVar(&rt.outputDir, "output-dir", "", "directory exports are written to (overrides config)")

	root.AddCommand(
		newFieldsCmd(rt),
		newTemplateCmd(rt),
		newPreviewCmd(rt),
		newExportCmd(rt),
		newJobCmd(rt),
		newSourceCmd(rt),
		newServeCmd(rt),
		newMCPCmd(rt),
		newPickCmd(rt),
	)
	return root
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	if rt.logLevel != "" {
		cfg.Log.Level = rt.logLevel
	}
	if rt.dataDir != "" {
		cfg.DataDir = rt.dataDir
	}
	if rt.outputDir != "" {
		cfg.Export.OutputDir = rt.outputDir
	}
	rt.cfg = cfg

	rt.log, rt.closeLog = logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		SeqURL: cfg.Log.SeqURL,
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(rt.log)
	return nil
}

// open builds the services on first use so that commands like "fields"
// never touch the database.
func (rt *runtime) open() (*app.App, error) {
	if rt.app != nil {
		return rt.app, nil
	}
	a, err := app.Open(rt.cfg, app.Options{Logger: rt.log})
	if err != nil {
		return nil, fmt.Errorf("open orderexport: %w", err)
	}
	rt.app = a
	return a, nil
}

func (rt *runtime) teardown(ctx context.Context) {
	if rt.app != nil {
		rt.app.Shutdown(ctx)
		rt.app = nil
	}
	if rt.closeLog != nil {
		rt.closeLog()
		rt.closeLog = nil
	}
}
