package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resengine/internal/app"
)

type resolveOptions struct {
	Density  string
	MayBeBag bool
	Follow   bool
}

func newResolveCommand(cfg *RootConfig) *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <id|name>",
		Short: "Resolve a resource value for the active configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, cfg, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.Density, "density", "", "Density override, e.g. hdpi or 420dpi")
	cmd.Flags().BoolVar(&opts.MayBeBag, "allow-bag", false, "Return a reference for bag resources instead of failing")
	cmd.Flags().BoolVar(&opts.Follow, "follow", true, "Follow references to the final value")
	_ = viper.BindPFlag("density", cmd.Flags().Lookup("density"))
	return cmd
}

func runResolve(cmd *cobra.Command, cfg *RootConfig, opts resolveOptions, ref string) error {
	engine, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	report, err := engine.Resolve(cmd.Context(), app.ResolveRequest{
		Ref:      ref,
		Density:  resolveString(cmd, opts.Density, "density", "density"),
		MayBeBag: opts.MayBeBag,
		Follow:   opts.Follow,
	})
	if err != nil {
		return err
	}
	if err := newAppService().WriteValueReport(reportDir(cmd, cfg), report); err != nil {
		return err
	}
	return printYAML(cmd, report)
}
