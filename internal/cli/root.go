// Package cli implements the billingctl commands. Every screen command is
// routed through the guard before it talks to the backend.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-billing-console/internal/app"
	"github.com/jrsteele09/go-billing-console/internal/config"
	"github.com/jrsteele09/go-billing-console/internal/logging"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the application shared by all
// commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	// NewApp builds the application. Defaults to app.New.
	NewApp func(cfg config.Config) (*app.App, error)

	// ReadPassword prompts for a password. Defaults to a no-echo terminal
	// read.
	ReadPassword PasswordReader

	app *app.App
}

// NewRootCommand creates the billingctl command tree.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "billingctl",
		Short:         "Back-office console for the subscription billing service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			banner := figure.NewFigure(opts.app.Config.GetAppName(), "cybermedium", true)
			fmt.Fprintln(cmd.OutOrStdout(), banner.String())
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file (default $CONFIG_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewOpenCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))
	cmd.AddCommand(NewAgentCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))
	cmd.AddCommand(NewBillingCommand(opts))

	return cmd
}

// Execute runs the command line args and releases the application
// afterwards.
func Execute(ctx context.Context, opts *RootOptions, args []string, in io.Reader, out, errOut io.Writer) error {
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	defer opts.Close()

	return commandError(cmd.ExecuteContext(ctx))
}

func (o *RootOptions) open(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "invalid configuration", Err: err}
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.GetEnv(), cfg.GetLogLevel(), o.Verbose)

	newApp := o.NewApp
	if newApp == nil {
		newApp = func(cfg config.Config) (*app.App, error) { return app.New(cfg) }
	}
	a, err := newApp(cfg)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "failed to start", Err: err}
	}
	o.app = a
	return nil
}

func (o *RootOptions) passwordReader(cmd *cobra.Command) PasswordReader {
	if o.ReadPassword != nil {
		return o.ReadPassword
	}
	return terminalPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
}

// Close releases the application, if one was built.
func (o *RootOptions) Close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}
