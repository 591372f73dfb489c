package cli

import (
	"github.com/spf13/cobra"
)

type listOptions struct {
	ExcludeSystem bool
	ExcludeMipmap bool
	Merge         bool
}

func newConfigsCommand(cfg *RootConfig) *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List the configurations declared by the loaded sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			return printYAML(cmd, engine.Configurations(opts.ExcludeSystem, opts.ExcludeMipmap))
		},
	}
	cmd.Flags().BoolVar(&opts.ExcludeSystem, "exclude-system", false, "Skip system sources")
	cmd.Flags().BoolVar(&opts.ExcludeMipmap, "exclude-mipmap", false, "Skip mipmap configurations")
	return cmd
}

func newLocalesCommand(cfg *RootConfig) *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "locales",
		Short: "List the locales declared by the loaded sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			return printYAML(cmd, engine.Locales(opts.ExcludeSystem, opts.Merge))
		},
	}
	cmd.Flags().BoolVar(&opts.ExcludeSystem, "exclude-system", false, "Skip system sources")
	cmd.Flags().BoolVar(&opts.Merge, "merge", true, "Merge equivalent language codes")
	return cmd
}

func newSourcesCommand(cfg *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the loaded sources and their packages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			reports := engine.Sources()
			if err := newAppService().WriteSourcesReport(reportDir(cmd, cfg), reports); err != nil {
				return err
			}
			return printYAML(cmd, reports)
		},
	}
}
