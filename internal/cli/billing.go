package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-billing-console/backoffice"
	"github.com/jrsteele09/go-billing-console/guard"
	"github.com/spf13/cobra"
)

func NewBillingCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing screens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate this month's bills",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAdminBilling, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			return api.Billing.GenerateMonthly(ctx)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List unpaid bills",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAdminBilling, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			return api.Billing.Pending(ctx)
		}),
	})

	// payment adds a command settling a bill with an optional method.
	payment := func(use, short string, settle func(ctx context.Context, api *backoffice.API, billID int64, method backoffice.PaymentMethod) (json.RawMessage, error)) {
		var method string
		sub := &cobra.Command{
			Use:   use + " <bill-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: screen(opts, guard.RouteAdminBilling, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
				id, err := parseID(args[0])
				if err != nil {
					return nil, err
				}
				var pm backoffice.PaymentMethod
				if method != "" {
					if pm, err = backoffice.ParsePaymentMethod(method); err != nil {
						return nil, err
					}
				}
				return settle(ctx, api, id, pm)
			}),
		}
		sub.Flags().StringVar(&method, "method", "", fmt.Sprintf("payment method: %q, %q or %q",
			backoffice.PaymentCreditCard, backoffice.PaymentDebitCard, backoffice.PaymentUPI))
		cmd.AddCommand(sub)
	}

	payment("mark-paid", "Record payment of a bill", func(ctx context.Context, api *backoffice.API, billID int64, method backoffice.PaymentMethod) (json.RawMessage, error) {
		return api.Billing.MarkPaid(ctx, billID, method)
	})
	payment("pay", "Pay a bill", func(ctx context.Context, api *backoffice.API, billID int64, method backoffice.PaymentMethod) (json.RawMessage, error) {
		return api.Billing.Pay(ctx, billID, method)
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "by-user-subscription <user-subscription-id>",
		Short: "List bills of a user subscription",
		Args:  cobra.ExactArgs(1),
		RunE: screen(opts, guard.RouteAdminBilling, func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			id, err := parseID(args[0])
			if err != nil {
				return nil, err
			}
			return api.Billing.ByUserSubscription(ctx, id)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "mark-overdue",
		Short: "Flag bills past their due date",
		Args:  cobra.NoArgs,
		RunE: screen(opts, guard.RouteAdminBilling, func(ctx context.Context, api *backoffice.API, _ []string) (json.RawMessage, error) {
			return api.Billing.MarkOverdue(ctx)
		}),
	})

	return cmd
}
