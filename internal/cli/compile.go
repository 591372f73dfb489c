package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"resengine/internal/app"
)

type compileOptions struct {
	Output string
}

func newCompileCommand() *cobra.Command {
	opts := compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile <table.yaml>",
		Short: "Compile a YAML table description into a binary resource table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newAppService().Compile(cmd.Context(), app.CompileRequest{
				SpecPath:   args[0],
				OutputPath: opts.Output,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "compiled: %s (%d bytes)\n", result.OutputPath, result.Bytes)
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output .arsc path (defaults next to the input)")
	return cmd
}
