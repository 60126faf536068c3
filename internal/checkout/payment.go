package checkout

import (
	"context"

	"github.com/google/uuid"
)

// PaymentDetails is what the shopper submits with a confirmation.
type PaymentDetails struct {
	Method         string `json:"method"`
	CardholderName string `json:"cardholder_name,omitempty"`
	Buyer          Buyer  `json:"buyer"`
}

// Buyer identifies who is paying. Both fields are optional for guest checkout.
type Buyer struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

type ChargeRequest struct {
	SessionID string
	EventID   string
	Amount    int
	Details   PaymentDetails
}

// PaymentResult is the processor's verdict on a charge.
type PaymentResult struct {
	Approved  bool   `json:"approved"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// PaymentProcessor charges and refunds shoppers. A returned error means the
// processor could not be reached; a declined charge is a result, not an error.
type PaymentProcessor interface {
	Charge(ctx context.Context, req ChargeRequest) (PaymentResult, error)
	Refund(ctx context.Context, reference string, amount int) error
}

// ApproveAll is the default processor. It approves every charge.
type ApproveAll struct{}

func (ApproveAll) Charge(ctx context.Context, req ChargeRequest) (PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return PaymentResult{}, err
	}
	return PaymentResult{Approved: true, Reference: "stub_" + uuid.NewString()}, nil
}

func (ApproveAll) Refund(ctx context.Context, reference string, amount int) error {
	return ctx.Err()
}
