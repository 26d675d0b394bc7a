// Package backoffice is the catalogue of role-scoped back-office endpoints
// used by the console screens. Responses are returned undecoded; their
// shape is owned by the backend.
package backoffice

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	errs "github.com/jrsteele09/go-billing-console/internal/errors"
)

// Requester sends authorised JSON requests. *apiclient.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, query url.Values, in, out any) error
	Put(ctx context.Context, path string, query url.Values, in, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
}

// API groups the endpoint families.
type API struct {
	Admin   *AdminAPI
	Agent   *AgentAPI
	User    *UserAPI
	Audit   *AuditAPI
	Billing *BillingAPI
}

func New(r Requester) *API {
	return &API{
		Admin:   &AdminAPI{r: r},
		Agent:   &AgentAPI{r: r},
		User:    &UserAPI{r: r},
		Audit:   &AuditAPI{r: r},
		Billing: &BillingAPI{r: r},
	}
}

// PaymentMethod is a payment method accepted by the billing endpoints.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentUPI        PaymentMethod = "UPI"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentDebitCard, PaymentUPI}

// ParsePaymentMethod matches s case-insensitively against the accepted
// payment methods. "credit-card" and "credit_card" are accepted as well.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	normalized := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, pm := range PaymentMethods {
		if strings.EqualFold(normalized, string(pm)) {
			return pm, nil
		}
	}
	return "", errs.Wrapf(errs.ErrInvalidRequest, "unknown payment method %q (want one of %q, %q, %q)",
		s, PaymentCreditCard, PaymentDebitCard, PaymentUPI)
}

const (
	defaultAuditPage = 0
	defaultAuditSize = 50
)

// Page selects a page of a paginated listing. The zero value is page 0 of
// 50 entries.
type Page struct {
	Page int
	Size int
}

func (p Page) values() url.Values {
	page, size := p.Page, p.Size
	if page < 0 {
		page = defaultAuditPage
	}
	if size <= 0 {
		size = defaultAuditSize
	}
	return url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
}

func pathf(parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		switch v := p.(type) {
		case string:
			b.WriteString(url.PathEscape(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case int:
			b.WriteString(strconv.Itoa(v))
		}
	}
	return b.String()
}

func get(ctx context.Context, r Requester, path string, query url.Values) (json.RawMessage, error) {
	var out json.RawMessage
	if err := r.Get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func post(ctx context.Context, r Requester, path string, in any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := r.Post(ctx, path, nil, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func put(ctx context.Context, r Requester, path string, in any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := r.Put(ctx, path, nil, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}
