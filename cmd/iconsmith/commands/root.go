// Package commands implements the CLI commands for iconsmith.
package commands

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/spf13/cobra"
	"go.trai.ch/iconsmith/internal/adapters/diskcache"
	"go.trai.ch/iconsmith/internal/app"
	"go.trai.ch/iconsmith/internal/build"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/iconsmith/internal/core/ports"
	"go.trai.ch/iconsmith/internal/engine/export"
)

// Application opens render sessions.
type Application interface {
	Open(ctx context.Context, opts app.OpenOptions) (Session, error)
}

// Session is the part of *app.Session the commands drive.
type Session interface {
	Sources(root string) iter.Seq[string]
	Preview(ctx context.Context, reqs []app.PreviewRequest, cb domain.Callback) error
	Resolve(ctx context.Context, source string) (*domain.MasterLayout, error)
	Export(
		ctx context.Context,
		req app.ExportRequest,
		sink ports.ProgressSink,
		progress *export.Progress,
	) (domain.ExportOutcome, error)
	Watch(ctx context.Context, opts app.WatchOptions, sink ports.ProgressSink) error
	Invalidate(path string) error
	Prune() (diskcache.PruneResult, error)
	Stats() app.Stats
	Close() error
}

// FromApp adapts *app.App to Application.
func FromApp(a *app.App) Application {
	return appOpener{a}
}

type appOpener struct {
	app *app.App
}

func (o appOpener) Open(ctx context.Context, opts app.OpenOptions) (Session, error) {
	s, err := o.app.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// levelSetter is implemented by loggers whose verbosity can change at runtime.
type levelSetter interface {
	SetLevel(w io.Writer, level slog.Level)
}

// CLI represents the command line interface for iconsmith.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a Application, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "iconsmith",
		Short:         "Render, cache and export icon theme sources",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (JSON, JSONC or YAML)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages")
	rootCmd.PersistentFlags().Bool("no-disk-cache", false, "Do not read or write the persistent render cache")

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if ls, ok := c.logger.(levelSetter); ok && verbose {
			ls.SetLevel(cmd.ErrOrStderr(), slog.LevelDebug)
		}
	}

	rootCmd.AddCommand(c.newRenderCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newExportCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// withSession opens a session from the persistent flags, runs fn and closes the session.
func (c *CLI) withSession(cmd *cobra.Command, opts app.OpenOptions, fn func(Session) error) (err error) {
	opts.ConfigPath, _ = cmd.Flags().GetString("config")
	opts.NoDiskCache, _ = cmd.Flags().GetBool("no-disk-cache")

	s, err := c.app.Open(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(s)
}
