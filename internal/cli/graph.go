package cli

import (
	"github.com/spf13/cobra"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	DOT bool
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph <scenario>",
		Short: "Print the computation graph a scenario records",
		Long: `Trace a scenario and print the recorded graph, roots first.

Text output lists one node per line. --dot writes Graphviz DOT instead,
and --format json prints the graph snapshot.

Examples:
  autotrace graph ./scenarios/square.yaml
  autotrace graph ./scenarios/square.yaml --dot | dot -Tsvg > square.svg`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DOT, "dot", false, "write Graphviz DOT")

	return cmd
}

func runGraph(opts *GraphOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, _, err := loadAndRun(opts.RootOptions, path, cmd.ErrOrStderr())
	if err != nil {
		return reportCommandError(formatter, err)
	}

	switch {
	case opts.DOT:
		err = result.Graph.WriteDOT(formatter.Writer)
	case formatter.JSON():
		err = formatter.Success(result.Graph)
	default:
		err = result.Graph.WriteText(formatter.Writer)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write graph", err)
	}
	return nil
}
