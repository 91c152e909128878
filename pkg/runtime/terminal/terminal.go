package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/patient-qc/pkg/runtime/terminal/commands"
	"github.com/de-tools/patient-qc/pkg/services/quality"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry quality.Registry
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry quality.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Registry == nil {
		opts.Registry = quality.NewDefaultRegistry()
	}

	cli := &CLI{registry: opts.Registry}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

// Execute runs the CLI. The logger attached to ctx is used by every command.
func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides the command line arguments, for tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "qc",
		Short:         "Patient data quality control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	console := func(w io.Writer, useColor bool) commands.Reporter {
		return NewReporter(w, useColor)
	}
	cmd.AddCommand(commands.NewAnalyzeCmd(cli.registry, console))
	cmd.AddCommand(commands.NewAnalyzersCmd(cli.registry))
	cmd.AddCommand(commands.NewProfilesCmd())

	return cmd
}
