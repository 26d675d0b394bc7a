package cli

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-billing-console/backoffice"
	"github.com/jrsteele09/go-billing-console/guard"
	"github.com/spf13/cobra"
)

func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator screens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "deleted <users|devices|subscriptions>",
		Short: "List soft-deleted entries",
		Args:  cobra.ExactArgs(1),
		RunE: resourceScreen(opts, func(ctx context.Context, api *backoffice.API, res backoffice.Resource, _ []string) (json.RawMessage, error) {
			return api.Admin.Deleted(ctx, res)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "soft-delete <users|devices|subscriptions> <id>",
		Short: "Soft-delete an entry",
		Args:  cobra.ExactArgs(2),
		RunE: resourceScreen(opts, func(ctx context.Context, api *backoffice.API, res backoffice.Resource, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return api.Admin.SoftDelete(ctx, res, id)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <users|devices|subscriptions> <id>",
		Short: "Restore a soft-deleted entry",
		Args:  cobra.ExactArgs(2),
		RunE: resourceScreen(opts, func(ctx context.Context, api *backoffice.API, res backoffice.Resource, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return api.Admin.Restore(ctx, res, id)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create-subscription <json|@file>",
		Short: "Create a subscription plan",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAdminSubscriptions, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			body, err := parseBody(args[0])
			if err != nil {
				return nil, err
			}
			return api.Admin.CreateSubscription(ctx, body)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assign-subscription <json|@file>",
		Short: "Assign a subscription to a user",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAdminSubscriptions, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			body, err := parseBody(args[0])
			if err != nil {
				return nil, err
			}
			return api.Admin.AssignSubscription(ctx, body)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "features",
		Short: "List features",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAdminFeatures, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			return api.Admin.Features(ctx)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create-feature <json|@file>",
		Short: "Create a feature",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAdminFeatures, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			body, err := parseBody(args[0])
			if err != nil {
				return nil, err
			}
			return api.Admin.CreateFeature(ctx, body)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add-features <subscription-id> <feature-id>...",
		Short: "Attach features to a subscription plan",
		Args:  cobra.MinimumNArgs(2),
		RunE: screen(opts, guard.RouteAdminFeatures, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			subscriptionID, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			featureIDs := make([]int64, 0, len(args)-1)
			for _, a := range args[1:] {
				id, err := parseID(a)
				if err != nil {
					return nil, err
				}
				featureIDs = append(featureIDs, id)
			}
			return api.Admin.AddFeaturesToSubscription(ctx, subscriptionID, featureIDs)
		}),
	})

	return cmd
}
