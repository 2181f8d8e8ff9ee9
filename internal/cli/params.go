package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/etrace/internal/config"
)

// ParamsOptions holds flags for the params command.
type ParamsOptions struct {
	*RootOptions
	Schema bool
}

// NewParamsCommand creates the params command.
func NewParamsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParamsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the default parameters or their CUE schema",
		Long: `Print the default parameter set, or with --schema the CUE schema that
parameter files are validated against.

Examples:
  etrace params
  etrace params --format json
  etrace params --schema > schema.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParams(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Schema, "schema", false, "print the CUE schema")

	return cmd
}

func runParams(opts *ParamsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Schema {
		return formatter.Success(map[string]string{"schema": config.Schema()}, func(w io.Writer) {
			fmt.Fprint(w, config.Schema())
		})
	}

	params := config.Defaults()
	return formatter.Success(params, func(w io.Writer) {
		writeParams(w, params)
	})
}

// writeParams prints params one field per line, sorted by CUE field name.
func writeParams(w io.Writer, p config.Params) {
	data, err := json.Marshal(p)
	if err != nil {
		fmt.Fprintf(w, "%+v\n", p)
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		fmt.Fprintf(w, "%+v\n", p)
		return
	}
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(w, "%s: %s\n", name, fields[name])
	}
}
