package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/etrace/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	File   string         `json:"file"`
	Params *config.Params `json:"params,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <params.cue>",
		Short: "Validate a CUE parameter file",
		Long: `Validate a CUE parameter file against the parameter schema.

The file is unified with the embedded schema, so unknown fields, values
outside their bounds and wrong types are reported with their position.
Omitted fields take their defaults; with --verbose the resolved
parameters are printed.

Examples:
  etrace validate ./params/chain.cue
  etrace validate ./params/chain.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	params, err := config.Load(path)
	if err != nil {
		var loadErr *config.LoadError
		if !errors.As(err, &loadErr) {
			return WrapExitError(ExitCommandError, "failed to read parameter file", err)
		}
		details := map[string]any{"file": path}
		if loadErr.Pos.IsValid() {
			details["line"] = loadErr.Pos.Line()
			details["column"] = loadErr.Pos.Column()
		}
		_ = formatter.Error(loadErr.Code, loadErr.Message, details)

		// A missing file is a command error, a bad file a validation failure.
		if loadErr.Code == config.ErrCodeNotFound {
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		return NewExitError(ExitFailure, loadErr.Error())
	}

	formatter.VerboseLog("validated %s", path)
	result := ValidationResult{Valid: true, File: path}
	if opts.Verbose {
		result.Params = &params
	}
	return formatter.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid\n", path)
		if opts.Verbose {
			writeParams(w, params)
		}
	})
}
