package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resengine/internal/app"
	"resengine/internal/core"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "RESENGINE"

type RootConfig struct {
	ConfigFile    string
	LogLevel      string
	Sources       []string
	SystemSources []string
	Configuration string
	Package       string
	Report        string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		log.Error().Msg(errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := &RootConfig{}
	cmd := &cobra.Command{
		Use:           "resengine",
		Short:         "Resolve resources, bags and themes from compiled resource tables",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringSliceVar(&cfg.Sources, "source", nil, "Resource source (.arsc, .apk, .zip or .yaml), loaded in order")
	flags.StringSliceVar(&cfg.SystemSources, "system-source", nil, "System resource source, loaded before --source")
	flags.StringVar(&cfg.Configuration, "configuration", "", "Device configuration qualifiers, e.g. en-rUS-port-xhdpi-v30")
	flags.StringVar(&cfg.Package, "package", "", "Default package for resource names")
	flags.StringVar(&cfg.Report, "report", "", "Write YAML reports into this directory")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("sources", flags.Lookup("source"))
	_ = viper.BindPFlag("system_sources", flags.Lookup("system-source"))
	_ = viper.BindPFlag("configuration", flags.Lookup("configuration"))
	_ = viper.BindPFlag("package", flags.Lookup("package"))
	_ = viper.BindPFlag("output", flags.Lookup("report"))

	cmd.AddCommand(newResolveCommand(cfg))
	cmd.AddCommand(newBagCommand(cfg))
	cmd.AddCommand(newThemeCommand(cfg))
	cmd.AddCommand(newNameCommand(cfg))
	cmd.AddCommand(newIDCommand(cfg))
	cmd.AddCommand(newConfigsCommand(cfg))
	cmd.AddCommand(newLocalesCommand(cfg))
	cmd.AddCommand(newSourcesCommand(cfg))
	cmd.AddCommand(newCompileCommand())
	cmd.AddCommand(newServeCommand(cfg))
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("resengine")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/resengine")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// openEngine loads the sources named by flags or configuration.
func openEngine(cmd *cobra.Command, cfg *RootConfig) (*app.Engine, error) {
	return newAppService().Open(cmd.Context(), app.OpenRequest{
		SystemSources: resolveStrings(cmd, cfg.SystemSources, "system_sources", "system-source"),
		Sources:       resolveStrings(cmd, cfg.Sources, "sources", "source"),
		Configuration: resolveString(cmd, cfg.Configuration, "configuration", "configuration"),
		Package:       resolveString(cmd, cfg.Package, "package", "package"),
	})
}

func newAppService() app.Service {
	return app.NewService()
}

func exitCodeForError(err error) int {
	code := errbuilder.CodeOf(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition:
		return 3
	case errbuilder.CodeNotFound:
		if core.IsChainExhausted(err) {
			return 4
		}
		return 5
	case errbuilder.CodeInternal:
		return 6
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
