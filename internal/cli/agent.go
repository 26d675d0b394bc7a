package cli

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jrsteele09/go-billing-console/backoffice"
	"github.com/jrsteele09/go-billing-console/guard"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/spf13/cobra"
)

func NewAgentCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Sales agent screens",
	}

	var deviceID int64
	subscriptions := &cobra.Command{
		Use:   "subscriptions",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAgentSubscriptions, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			if deviceID > 0 {
				return api.Agent.SubscriptionsByDevice(ctx, deviceID)
			}
			return api.Agent.Subscriptions(ctx)
		}),
	}
	subscriptions.Flags().Int64Var(&deviceID, "device", 0, "only plans available for this device")
	cmd.AddCommand(subscriptions)

	var subscriber int64
	userSubscriptions := &cobra.Command{
		Use:   "user-subscriptions",
		Short: "List subscriptions held by users",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAgentUserSubscriptions, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			if subscriber > 0 {
				return api.Agent.UserSubscriptionsByUser(ctx, subscriber)
			}
			return api.Agent.UserSubscriptions(ctx)
		}),
	}
	userSubscriptions.Flags().Int64Var(&subscriber, "user", 0, "only subscriptions of this user")
	cmd.AddCommand(userSubscriptions)

	cmd.AddCommand(&cobra.Command{
		Use:   "assign-subscription <json|@file>",
		Short: "Assign a subscription plan to a user",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAgentUserSubscriptions, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			body, err := parseBody(args[0])
			if err != nil {
				return nil, err
			}
			return api.Agent.AssignSubscription(ctx, body)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "negotiated-price <user-subscription-id> <price>",
		Short: "Set the negotiated price of a user subscription",
		Args:  cobra.ExactArgs(2),
		RunE: screen(opts, guard.RouteAgentUserSubscriptions, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil || price < 0 {
				return nil, errs.Wrapf(errs.ErrInvalidRequest, "invalid price %q", args[1])
			}
			return api.Agent.UpdateNegotiatedPrice(ctx, id, price)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <user-subscription-id>",
		Short: "Cancel a user subscription",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAgentUserSubscriptions, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return api.Agent.CancelUserSubscription(ctx, id)
		}),
	})

	var owner int64
	devices := &cobra.Command{
		Use:   "devices",
		Short: "List devices",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAgentDevices, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			if owner > 0 {
				return api.Agent.DevicesByUser(ctx, owner)
			}
			return api.Agent.Devices(ctx)
		}),
	}
	devices.Flags().Int64Var(&owner, "user", 0, "only devices assigned to this user")
	cmd.AddCommand(devices)

	cmd.AddCommand(&cobra.Command{
		Use:   "create-device <json|@file>",
		Short: "Register a device",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAgentDevices, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			body, err := parseBody(args[0])
			if err != nil {
				return nil, err
			}
			return api.Agent.CreateDevice(ctx, body)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assign-device <json|@file>",
		Short: "Assign a device to a user",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAgentDevices, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			body, err := parseBody(args[0])
			if err != nil {
				return nil, err
			}
			return api.Agent.AssignDevice(ctx, body)
		}),
	})

	return cmd
}
