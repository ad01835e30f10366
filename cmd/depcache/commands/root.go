// Package commands implements the CLI commands for depcache.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/depcache/internal/adapters/detector"
	"go.trai.ch/depcache/internal/adapters/report"
	"go.trai.ch/depcache/internal/app"
	"go.trai.ch/depcache/internal/build"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
)

// CLI represents the command line interface for depcache.
type CLI struct {
	app      Application
	logger   ports.Logger
	rootCmd  *cobra.Command
	shutdown func(context.Context) error
}

// Application represents the application logic interface.
type Application interface {
	Pass(ctx context.Context, opts app.PassOptions) (*domain.PassResult, error)
	Dependents(ctx context.Context, class string) ([]string, error)
	Show(ctx context.Context, class string) (domain.ClassView, error)
	Supertype(ctx context.Context, first, second string) (string, error)
	Watch(ctx context.Context, opts app.WatchOptions, reporter ports.Reporter) error
	Clean(ctx context.Context) error
	StartTelemetry(ctx context.Context) (func(context.Context) error, error)
}

// jsonLogger is implemented by loggers that can switch to JSON output.
type jsonLogger interface {
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "depcache",
		Short:         "Incremental compilation dependency cache for JVM class files",
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

	rootCmd.PersistentFlags().String("format", "auto", "Output format: auto, text or json")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	c := &CLI{
		app:     a,
		logger:  log,
		rootCmd: rootCmd,
	}
	rootCmd.PersistentPreRunE = c.setup

	rootCmd.AddCommand(c.newPassCmd())
	rootCmd.AddCommand(c.newDependentsCmd())
	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newSupertypeCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()
	if c.shutdown != nil {
		// The command context may already be canceled by a signal.
		err = errors.Join(err, c.shutdown(context.WithoutCancel(ctx)))
	}
	return err
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

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	if l, ok := c.logger.(jsonLogger); ok {
		l.SetJSON(jsonLogs)
	}

	shutdown, err := c.app.StartTelemetry(cmd.Context())
	if err != nil {
		return err
	}
	c.shutdown = shutdown
	return nil
}

// reporter resolves the --format flag against the detected environment.
func (c *CLI) reporter(cmd *cobra.Command) (ports.Reporter, error) {
	flag, _ := cmd.Flags().GetString("format")
	format, err := detector.ResolveFormat(detector.DetectEnvironment(), flag)
	if err != nil {
		return nil, err
	}
	return report.New(cmd.OutOrStdout(), format), nil
}
