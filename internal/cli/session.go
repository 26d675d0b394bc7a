package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-billing-console/auth"
	"github.com/jrsteele09/go-billing-console/authmodel"
	"github.com/jrsteele09/go-billing-console/guard"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/jrsteele09/go-billing-console/sessions"
	"github.com/jrsteele09/go-billing-console/users"
	"github.com/spf13/cobra"
)

func NewLoginCommand(opts *RootOptions) *cobra.Command {
	var (
		mobile   bool
		password string
	)

	cmd := &cobra.Command{
		Use:   "login <username|mobile-number>",
		Short: "Log in and open your dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := auth.LoginModeUsername
			if mobile {
				mode = auth.LoginModeMobile
			}
			if password == "" {
				var err error
				if password, err = opts.passwordReader(cmd)("Password: "); err != nil {
					return &ExitError{Code: ExitCommandError, Message: "could not read password", Err: err}
				}
			}

			a := opts.app
			user, err := a.Manager.Login(cmd.Context(), args[0], password, mode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s (%s)\n", user.Username, strings.Join(user.Roles, ", "))
			d, err := a.Guard.Navigate(guard.RouteHome)
			if err != nil {
				fmt.Fprintln(out, "No dashboard is available for your roles")
				return nil
			}
			fmt.Fprintf(out, "Dashboard: %s\n", d.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&mobile, "mobile", false, "identify by mobile number instead of username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	var req authmodel.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Username = strings.TrimSpace(args[0])
			if req.Password == "" {
				var err error
				if req.Password, err = opts.passwordReader(cmd)("Password: "); err != nil {
					return &ExitError{Code: ExitCommandError, Message: "could not read password", Err: err}
				}
			}

			resp, err := opts.app.Auth.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s, run billingctl login %s\n", resp.Username, resp.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.MobileNumber, "mobile", "", "mobile number, enables mobile login")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.Manager.Logout(cmd.Context()); err != nil {
				return err
			}
			if _, err := a.Guard.Navigate(guard.RouteLogin); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func NewRefreshCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.Manager.Refresh(cmd.Context()); err != nil {
				a.Guard.SessionExpired()
				return err
			}
			out := cmd.OutOrStdout()
			if expiry, ok := sessions.AccessTokenExpiry(a.Manager.Session().AccessToken); ok {
				fmt.Fprintf(out, "Session refreshed, access token valid until %s\n", expiry.Local().Format(time.RFC3339))
				return nil
			}
			fmt.Fprintln(out, "Session refreshed")
			return nil
		},
	}
}

func NewWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile the backend holds for the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.app.Manager.Me(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), user)
		},
	}
}

// status is the output of the status command.
type status struct {
	Authenticated bool        `json:"authenticated"`
	User          *users.User `json:"user,omitempty"`
	Dashboard     string      `json:"dashboard,omitempty"`
	ExpiresAt     *time.Time  `json:"expiresAt,omitempty"`
	Refreshable   bool        `json:"refreshable"`
}

func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the locally held session without contacting the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := opts.app.Manager
			session := m.Session()
			st := status{
				Authenticated: m.IsAuthenticated(),
				User:          m.User(),
				Refreshable:   session.RefreshToken != "",
			}
			if st.Authenticated {
				st.Dashboard = guard.DashboardFor(m)
			}
			if expiry, ok := sessions.AccessTokenExpiry(session.AccessToken); ok {
				st.ExpiresAt = &expiry
			}
			return writeJSON(cmd.OutOrStdout(), st)
		},
	}
}

// decision is the output of the open command.
type decision struct {
	Outcome string `json:"outcome"`
	Path    string `json:"path"`
	Reason  string `json:"reason,omitempty"`
}

func NewOpenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <route>",
		Short: "Navigate to a console route and report where you land",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.app.Guard.Navigate(args[0])
			if werr := writeJSON(cmd.OutOrStdout(), decision{Outcome: d.Outcome.String(), Path: d.Path, Reason: d.Reason}); werr != nil {
				return werr
			}
			if err != nil {
				return &ExitError{Code: ExitNotPermitted, Message: errs.Message(err), Err: err}
			}
			return nil
		},
	}
}
