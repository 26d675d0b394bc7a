package backoffice

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-billing-console/internal/utils"
)

// BillingAPI is the /billing family.
type BillingAPI struct {
	r Requester
}

type paymentBody struct {
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
}

func paymentFor(method PaymentMethod) paymentBody {
	if method == "" {
		return paymentBody{}
	}
	return paymentBody{PaymentMethod: utils.Ptr(method)}
}

func (b *BillingAPI) GenerateMonthly(ctx context.Context) (json.RawMessage, error) {
	return post(ctx, b.r, "/billing/generate-monthly", nil)
}

func (b *BillingAPI) Pending(ctx context.Context) (json.RawMessage, error) {
	return get(ctx, b.r, "/billing/pending", nil)
}

// MarkPaid records payment of a bill. An empty method leaves the choice to
// the backend.
func (b *BillingAPI) MarkPaid(ctx context.Context, billID int64, method PaymentMethod) (json.RawMessage, error) {
	return put(ctx, b.r, pathf("billing", billID, "mark-paid"), paymentFor(method))
}

func (b *BillingAPI) Pay(ctx context.Context, billID int64, method PaymentMethod) (json.RawMessage, error) {
	return put(ctx, b.r, pathf("billing", billID, "pay"), paymentFor(method))
}

func (b *BillingAPI) ByUserSubscription(ctx context.Context, userSubscriptionID int64) (json.RawMessage, error) {
	return get(ctx, b.r, pathf("billing", "user-subscription", userSubscriptionID), nil)
}

func (b *BillingAPI) MarkOverdue(ctx context.Context) (json.RawMessage, error) {
	return post(ctx, b.r, "/billing/mark-overdue", nil)
}
