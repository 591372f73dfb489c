package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNameCommand(cfg *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "name <id>",
		Short: "Print the package:type/entry name of a resource id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			name, err := engine.Name(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), name.String())
			return err
		},
	}
}

func newIDCommand(cfg *RootConfig) *cobra.Command {
	var fallbackType string
	cmd := &cobra.Command{
		Use:   "id <[package:][type/]entry>",
		Short: "Print the resource id of a named resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			id, err := engine.ID(cmd.Context(), args[0], fallbackType)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			return err
		},
	}
	cmd.Flags().StringVar(&fallbackType, "type", "", "Type used when the name has none")
	return cmd
}
