package cli

import (
	"github.com/spf13/cobra"

	"resengine/internal/app"
)

func newBagCommand(cfg *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "bag <id|name>",
		Short: "Print the fully inherited entries of a style or array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			report, err := engine.Bag(cmd.Context(), app.BagRequest{Ref: args[0]})
			if err != nil {
				return err
			}
			if err := newAppService().WriteBagReport(reportDir(cmd, cfg), report); err != nil {
				return err
			}
			return printYAML(cmd, report)
		},
	}
}
