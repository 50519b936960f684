package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/autotrace/internal/harness"
	"github.com/roach88/autotrace/internal/snapshot"
	"github.com/roach88/autotrace/internal/tree"
)

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Name        string             `json:"name"`
	Values      any                `json:"values"`
	Grads       map[string]float64 `json:"grads,omitempty"`
	Nodes       int                `json:"nodes"`
	Independent int                `json:"independent"`
	Pass        bool               `json:"pass"`
	Errors      []string           `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Trace a scenario and print its values and gradients",
		Long: `Trace the program in a scenario file, run the backward pass if the
scenario names a grad value, and check the scenario's expectations.

Exit codes:
  0 - Scenario ran and every expectation held
  1 - An expectation failed
  2 - Command error (file not found, invalid scenario, etc.)

Examples:
  autotrace run ./scenarios/square.yaml
  autotrace run ./scenarios/square.cue --format json
  autotrace run ./scenarios/square.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioCommand(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runScenarioCommand(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, scenario, err := loadAndRun(opts, path, cmd.ErrOrStderr())
	if err != nil {
		return reportCommandError(formatter, err)
	}

	out := RunOutput{
		Name:        scenario.Name,
		Values:      result.Values,
		Grads:       result.Grads,
		Nodes:       len(result.Graph.Nodes),
		Independent: result.Independent,
		Pass:        result.Pass,
		Errors:      result.Errors,
	}

	if formatter.JSON() {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		writeRunText(formatter.Writer, out)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

// loadAndRun loads a scenario file and runs it, logging to logw.
func loadAndRun(opts *RootOptions, path string, logw io.Writer) (*harness.Result, *harness.Scenario, error) {
	scenario, err := LoadScenarioFile(path)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(logw, opts.Verbose)
	logger.Debug("running scenario", "name", scenario.Name, "path", path)

	result, err := harness.Run(scenario, harness.WithLogger(logger))
	if err != nil {
		return nil, scenario, &LoadError{Code: ErrCodeRunFailed, Message: err.Error(), Path: path}
	}
	return result, scenario, nil
}

// reportCommandError prints a load or run error and returns it as a
// command error.
func reportCommandError(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var le *LoadError
	if errors.As(err, &le) {
		code = le.Code
	}
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "command failed", err)
}

func writeRunText(w io.Writer, out RunOutput) {
	fmt.Fprintf(w, "Scenario: %s\n", out.Name)
	fmt.Fprintf(w, "Values: %v\n", formatNested(out.Values))

	if out.Grads != nil {
		names := make([]string, 0, len(out.Grads))
		for name := range out.Grads {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "Gradients:")
		for _, name := range names {
			fmt.Fprintf(w, "  d/d%s = %s\n", name, snapshot.FormatValue(out.Grads[name]))
		}
	}

	fmt.Fprintf(w, "Nodes: %d (independent outputs: %d)\n", out.Nodes, out.Independent)

	if out.Pass {
		fmt.Fprintln(w, "✓ All expectations met")
		return
	}
	fmt.Fprintln(w, "✗ Expectations failed")
	for _, e := range out.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// formatNested renders nested values with FormatValue leaves, e.g. (6, 5).
func formatNested(v any) string {
	return tree.Map(func(leaves ...any) any {
		return snapshot.FormatValue(leaves[0])
	}, tree.FromNested(v)).String()
}
