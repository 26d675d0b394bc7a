package cli

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-billing-console/backoffice"
	"github.com/jrsteele09/go-billing-console/guard"
	"github.com/spf13/cobra"
)

func NewUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Subscriber screens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteUserProfile, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			return api.User.Profile(ctx)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update-profile <json|@file>",
		Short: "Update your profile",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteUserProfile, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			body, err := parseBody(args[0])
			if err != nil {
				return nil, err
			}
			return api.User.UpdateProfile(ctx, body)
		}),
	})

	var active bool
	subscriptions := &cobra.Command{
		Use:   "subscriptions",
		Short: "List your subscriptions",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteUserSubscriptions, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			if active {
				return api.User.ActiveSubscriptions(ctx)
			}
			return api.User.Subscriptions(ctx)
		}),
	}
	subscriptions.Flags().BoolVar(&active, "active", false, "only active subscriptions")
	cmd.AddCommand(subscriptions)

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <subscription-id>",
		Short: "Cancel one of your subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteUserSubscriptions, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return api.User.CancelSubscription(ctx, id)
		}),
	})

	return cmd
}
