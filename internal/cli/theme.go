package cli

import (
	"github.com/spf13/cobra"

	"resengine/internal/app"
)

type themeOptions struct {
	Styles      []string
	ForceStyles []string
	Attributes  []string
	Follow      bool
}

func newThemeCommand(cfg *RootConfig) *cobra.Command {
	opts := themeOptions{}
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Apply styles to a theme and read attributes back",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTheme(cmd, cfg, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Styles, "style", nil, "Style to apply without overriding existing attributes")
	cmd.Flags().StringSliceVar(&opts.ForceStyles, "force-style", nil, "Style to apply overriding existing attributes, after --style")
	cmd.Flags().StringSliceVar(&opts.Attributes, "attr", nil, "Attribute to read")
	cmd.Flags().BoolVar(&opts.Follow, "follow", true, "Follow references to the final value")
	return cmd
}

func runTheme(cmd *cobra.Command, cfg *RootConfig, opts themeOptions) error {
	engine, err := openEngine(cmd, cfg)
	if err != nil {
		return err
	}
	req := app.ThemeRequest{Attributes: opts.Attributes, Follow: opts.Follow}
	for _, style := range opts.Styles {
		req.Styles = append(req.Styles, app.ThemeStyle{Ref: style})
	}
	for _, style := range opts.ForceStyles {
		req.Styles = append(req.Styles, app.ThemeStyle{Ref: style, Force: true})
	}
	report, err := engine.Theme(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := newAppService().WriteThemeReport(reportDir(cmd, cfg), report); err != nil {
		return err
	}
	return printYAML(cmd, report)
}
