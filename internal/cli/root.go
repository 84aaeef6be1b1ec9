// Package cli defines the coopcontrol command tree.
package cli

import (
	"fmt"

	"coopcontrol/internal/app"
	"coopcontrol/internal/clock"
	"coopcontrol/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options carries global flags and injectable dependencies
type Options struct {
	ConfigPath string
	Env        string

	// Logger and Clock override the configured ones when set
	Logger *zap.Logger
	Clock  clock.Clock
}

// RootCommand creates the coopcontrol root command
func RootCommand(opts *Options) *cobra.Command {
	if opts == nil {
		opts = &Options{}
	}

	rootCmd := &cobra.Command{
		Use:           "coopcontrol",
		Short:         "Chicken coop controller",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.Env, "env", "", "Config environment (overrides "+config.EnvVar+")")

	rootCmd.AddCommand(
		serveCommand(opts),
		astronomicalCommand(opts),
		applicationCommand(opts),
		hardwareCommand(opts),
	)

	return rootCmd
}

// setup loads configuration and builds the app for one command run
func (o *Options) setup() (*app.App, error) {
	bootstrap := o.Logger
	if bootstrap == nil {
		var err error
		bootstrap, err = zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	config.LoadDotEnv(bootstrap)

	cfg, err := config.NewLoader(o.ConfigPath, bootstrap).Load(o.Env)
	if err != nil {
		return nil, err
	}

	logger := o.Logger
	if logger == nil {
		logger, err = cfg.Logging.Build()
		if err != nil {
			return nil, err
		}
	}

	return app.New(cfg, logger, o.Clock)
}

// withApp runs fn with a freshly built app and closes it afterwards
func (o *Options) withApp(fn func(a *app.App) error) error {
	a, err := o.setup()
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.Logger.Sync()
	return fn(a)
}
