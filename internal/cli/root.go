// Package cli is the command-line front end. Commands only parse input,
// forward it to the stores built by internal/app and print the outcome.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/dogmatch/internal/app"
	"github.com/patric-chuzhbe/dogmatch/internal/config"
)

var errNotLoggedIn = errors.New("not logged in: run `dogmatch login` first")

type runner struct {
	app        *app.App
	configOpts []config.InitOption
	appOpts    []app.InitOption
}

// Option configures NewRootCommand.
type Option func(*runner)

// WithConfigOptions passes extra options to config.New.
func WithConfigOptions(opts ...config.InitOption) Option {
	return func(r *runner) {
		r.configOpts = append(r.configOpts, opts...)
	}
}

// WithAppOptions passes extra options to app.New.
func WithAppOptions(opts ...app.InitOption) Option {
	return func(r *runner) {
		r.appOpts = append(r.appOpts, opts...)
	}
}

// NewRootCommand builds the dogmatch command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}

	root := &cobra.Command{
		Use:   "dogmatch",
		Short: "Search adoptable dogs, keep favorites and get matched",
		Long: `dogmatch talks to the dog adoption service: sign in, browse and filter
the catalogue, keep a list of favorite dogs and let the service pick a match
among them. The session and the favorites persist between runs.`,
		SilenceUsage:       true,
		PersistentPreRunE:  r.open,
		PersistentPostRunE: r.close,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		r.newLoginCommand(),
		r.newLogoutCommand(),
		r.newWhoamiCommand(),
		r.newBreedsCommand(),
		r.newSearchCommand(),
		r.newFavoritesCommand(),
		r.newMatchCommand(),
		r.newLocationsCommand(),
	)

	return root
}

func (r *runner) open(cmd *cobra.Command, _ []string) error {
	configOpts := append([]config.InitOption{config.WithFlagSet(cmd.Root().PersistentFlags())}, r.configOpts...)
	cfg, err := config.New(configOpts...)
	if err != nil {
		return err
	}

	r.app, err = app.New(cmd.Context(), cfg, r.appOpts...)
	return err
}

func (r *runner) close(_ *cobra.Command, _ []string) error {
	if r.app == nil {
		return nil
	}

	err := r.app.Close()
	r.app = nil
	return err
}

func (r *runner) requireSession() error {
	if !r.app.Session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}
