// Package app provides a small builder for Fleetrics command-line
// applications: cobra command setup, pflag binding, optional viper
// config-file merging and signal-aware context construction.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Options abstracts the per-binary option struct.
type Options interface {
	// AddFlags binds all option fields to the command's FlagSet.
	AddFlags(fs *pflag.FlagSet)

	// Complete fills in derived or defaulted values after flag parsing.
	Complete() error

	// Validate checks the final option values.
	Validate() error
}

// RunFunc is the application entry point. The context is cancelled on
// SIGINT/SIGTERM.
type RunFunc func(ctx context.Context) error

// App is a configured command-line application.
type App struct {
	name        string
	short       string
	description string
	options     Options
	run         RunFunc
	noConfig    bool

	cmd *cobra.Command
}

// Option configures an App during construction.
type Option func(*App)

// WithDescription sets the long description shown in help output.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithOptions attaches the option struct whose flags are registered on the
// command and which is re-populated from the config file, if given.
func WithOptions(opts Options) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the application entry point.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.run = run }
}

// WithoutConfigFlag disables the --config flag for commands that take no
// configuration file.
func WithoutConfigFlag() Option {
	return func(a *App) { a.noConfig = true }
}

// NewApp builds a runnable application.
func NewApp(name, short string, opts ...Option) *App {
	a := &App{
		name:  name,
		short: short,
	}
	for _, o := range opts {
		o(a)
	}
	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	var configFile string

	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.short,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.options != nil {
				if configFile != "" {
					if err := mergeConfigFile(configFile, cmd.Flags(), a.options); err != nil {
						return err
					}
				}
				if err := a.options.Complete(); err != nil {
					return err
				}
				if err := a.options.Validate(); err != nil {
					return err
				}
			}

			if a.run == nil {
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.run(ctx)
		},
	}

	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}

	if !a.noConfig {
		cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML configuration file. Flags set on the command line win.")
	}

	a.cmd = cmd
}

// Command exposes the underlying cobra command, mainly for tests.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the application and exits the process on error.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.name, err)
		os.Exit(1)
	}
}

// mergeConfigFile loads a YAML config file and unmarshals it into opts.
// Values from the file apply only where the corresponding flag was not set
// explicitly on the command line.
func mergeConfigFile(path string, fs *pflag.FlagSet, opts Options) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Bind every flag: viper only consults a bound flag's value when it was
	// explicitly set, so command-line input wins over file values while
	// unset flags fall through to the file.
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(flagToKey(f.Name), f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to apply config file %s: %w", path, err)
	}
	return nil
}

// flagToKey maps a flag name like "http.addr" to the matching viper key.
// Flag names already use dotted paths, so this is the identity today; it
// exists to keep the mapping in one place.
func flagToKey(name string) string {
	return name
}
