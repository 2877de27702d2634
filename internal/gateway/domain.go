package gateway

import (
	"context"
	"fmt"
)

// Source is a gateway-side pending payment intent tied to one checkout session.
type Source struct {
	ID          string
	Status      string
	Amount      int64
	Type        string
	CheckoutURL string
}

// Payment is a captured charge against a chargeable source.
type Payment struct {
	ID       string
	SourceID string
	Status   string
	Amount   int64
}

// Refund is money returned to the client for a payment.
type Refund struct {
	ID        string
	PaymentID string
	Status    string
	Amount    int64
	Reason    string
}

type CreateSourceRequest struct {
	Amount      int64
	Type        string
	Currency    string
	SuccessURL  string
	FailedURL   string
	BookingID   string
	UserID      string
	Description string
}

type CreateRefundRequest struct {
	PaymentID string
	Amount    int64
	Reason    string
	Notes     string
}

// Client is the outbound surface of the payment gateway.
type Client interface {
	CreateSource(ctx context.Context, req CreateSourceRequest) (Source, error)
	CreateCharge(ctx context.Context, sourceID string, amount int64) (Payment, error)
	CreateRefund(ctx context.Context, req CreateRefundRequest) (Refund, error)
}

// Error carries the upstream gateway failure detail. The caller decides
// whether to retry or mark the record for manual handling.
type Error struct {
	StatusCode int
	Code       string
	Detail     string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (%s)", e.Detail, e.Code)
	}
	return fmt.Sprintf("gateway: %s", e.Detail)
}

// Refund reasons accepted by the gateway. Free-text reasons are mapped
// onto this set and preserved separately as notes.
const (
	RefundReasonRequestedByCustomer = "requested_by_customer"
	RefundReasonDuplicate           = "duplicate"
	RefundReasonFraudulent          = "fraudulent"
	RefundReasonOthers              = "others"
)
