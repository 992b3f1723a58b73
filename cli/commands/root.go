// Package commands implements the drizzle-go CLI.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/katungi/drizzle-orm/cli/internal/config"
	"github.com/katungi/drizzle-orm/cli/internal/ui"
	"github.com/katungi/drizzle-orm/cli/internal/version"
	"github.com/katungi/drizzle-orm/internal/debug"
)

// app is the state shared by every command of one invocation
type app struct {
	fs         afero.Fs
	loader     *config.Loader
	configFile string

	cfg    *config.Config
	logger *slog.Logger
	out    *ui.Printer
}

// Execute runs the CLI until it finishes or is interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := NewRootCommand(afero.NewOsFs()).ExecuteContext(ctx)
	if err != nil {
		ui.New(os.Stderr).Error("%v", err)
	}
	return err
}

// NewRootCommand builds the command tree over fs
func NewRootCommand(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, loader: config.NewLoader(fs)}

	root := &cobra.Command{
		Use:           "drizzle-go",
		Short:         "Typed SQL query builder toolkit",
		Long:          "drizzle-go inspects table definitions and runs queries built from them",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./"+config.FileName+")")
	flags.StringP("schema", "s", "", "path to the schema file")
	flags.String("provider", "", "database provider: postgresql, mysql or sqlite")
	flags.String("url", "", "database connection string")
	flags.Bool("debug", false, "log executed queries")
	flags.String("log-format", "", "debug log format: text or json")

	v := a.loader.Viper()
	for key, flag := range map[string]string{
		"schema":     "schema",
		"provider":   "provider",
		"url":        "url",
		"debug":      "debug",
		"log_format": "log-format",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newVersionCommand(),
		newInitCommand(a),
		newDescribeCommand(a),
		newSelectCommand(a),
		newSQLCommand(a),
		newPingCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loader.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = debug.New(cfg.Debug, cmd.ErrOrStderr(), debug.ParseFormat(cfg.LogFormat))
	a.out = ui.New(cmd.OutOrStdout())
	a.logger.Debug("configuration loaded", "schema", cfg.SchemaPath, "provider", cfg.Provider)
	return nil
}
